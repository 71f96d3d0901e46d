package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromFileWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":8080"
database:
  driver: mysql
  url: "user:pass@tcp(localhost:3306)/naimu?parseTime=true"
auth:
  jwt_secret: file-secret
  access_ttl_hours: 2
kafka:
  brokers: ["k1:9092"]
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092")
	t.Setenv("PORT", "9000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Address != ":9000" {
		t.Fatalf("expected :9000, got %q", cfg.Server.Address)
	}
	if cfg.Database.Driver != "mysql" {
		t.Fatalf("expected mysql driver, got %q", cfg.Database.Driver)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("expected env secret to win, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Auth.AccessTTLHours != 2 || cfg.Auth.RefreshTTLHours != defaultRefreshTTLHours {
		t.Fatalf("unexpected ttls %d/%d", cfg.Auth.AccessTTLHours, cfg.Auth.RefreshTTLHours)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Kafka.Topic != defaultKafkaTopic {
		t.Fatalf("expected default topic, got %q", cfg.Kafka.Topic)
	}
}

func TestLoadConfigMissingFileUsesEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("DATABASE_URL", "postgres://localhost/naimu")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Database.Driver != "pgx" {
		t.Fatalf("expected pgx default, got %q", cfg.Database.Driver)
	}
	if cfg.Server.Address != defaultAddress {
		t.Fatalf("expected default address, got %q", cfg.Server.Address)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing url", map[string]string{"JWT_SECRET": "s"}},
		{"missing secret", map[string]string{"DATABASE_URL": "postgres://x"}},
		{"bad driver", map[string]string{"DATABASE_URL": "x", "JWT_SECRET": "s", "DATABASE_DRIVER": "sqlite"}},
		{"bad ttl", map[string]string{"DATABASE_URL": "x", "JWT_SECRET": "s", "ACCESS_TOKEN_TTL_HOURS": "soon"}},
		{"negative ttl", map[string]string{"DATABASE_URL": "x", "JWT_SECRET": "s", "REFRESH_TOKEN_TTL_HOURS": "-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
			for _, key := range []string{"DATABASE_URL", "JWT_SECRET", "DATABASE_DRIVER", "ACCESS_TOKEN_TTL_HOURS", "REFRESH_TOKEN_TTL_HOURS"} {
				t.Setenv(key, "")
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
