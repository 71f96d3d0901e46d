package logging

import (
	"testing"

	"go.uber.org/zap"
)

func TestLevelFromEnv(t *testing.T) {
	cases := []struct {
		env, level string
		want       string
	}{
		{"", "", "info"},
		{"dev", "", "debug"},
		{"production", "WARN", "warn"},
		{"dev", "ERROR", "error"},
	}
	for _, tc := range cases {
		t.Setenv("ENV", tc.env)
		t.Setenv("LOG_LEVEL", tc.level)
		if got := levelFromEnv().String(); got != tc.want {
			t.Fatalf("ENV=%q LOG_LEVEL=%q: expected %s, got %s", tc.env, tc.level, tc.want, got)
		}
	}
}

func TestNewWithLevel(t *testing.T) {
	logger, err := NewWithLevel(zap.InfoLevel, "moderation")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer logger.Sync()
	if !logger.Core().Enabled(zap.InfoLevel) || logger.Core().Enabled(zap.DebugLevel) {
		t.Fatalf("expected info level logger")
	}
}
