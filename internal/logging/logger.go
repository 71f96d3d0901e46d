package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the narrow logging contract components depend on.
// *zap.SugaredLogger satisfies it.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// New builds the production logger named after the service, at the level
// taken from LOG_LEVEL or the ENV default.
func New(serviceName string) (*zap.Logger, error) {
	return NewWithLevel(levelFromEnv(), serviceName)
}

func NewWithLevel(level zapcore.Level, serviceName string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	logger = logger.Named(serviceName).With(zap.String("service", serviceName))
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// Nop returns a logger that discards everything, for tests.
func Nop() Logger {
	return zap.NewNop().Sugar()
}

func levelFromEnv() zapcore.Level {
	env := strings.ToLower(os.Getenv("ENV"))
	switch strings.ToUpper(os.Getenv("LOG_LEVEL")) {
	case "DEBUG":
		return zap.DebugLevel
	case "INFO":
		return zap.InfoLevel
	case "WARN":
		return zap.WarnLevel
	case "ERROR":
		return zap.ErrorLevel
	}
	if env == "development" || env == "dev" {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}
