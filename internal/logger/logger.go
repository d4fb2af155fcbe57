package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a new structured logger
func New(env string) (*zap.Logger, error) {
	return configFor(env).Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

func configFor(env string) zap.Config {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.Encoding = "json"
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.MessageKey = "message"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Always log to stdout for container compatibility
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	return config
}

// NewWithDefaults creates a logger with default settings
func NewWithDefaults() *zap.Logger {
	env := os.Getenv("SERVER_ENV")
	if env == "" {
		env = "development"
	}

	logger, err := New(env)
	if err != nil {
		// Fallback to basic logger
		logger, _ = zap.NewProduction()
	}

	return logger
}

// Component returns a child logger tagged with the component name
func Component(l *zap.Logger, name string) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.Named(name).With(zap.String("component", name))
}
