package app

import (
	"context"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/fantasy-contest/internal/config"
	"github.com/riskibarqy/fantasy-contest/internal/observability"
	"github.com/riskibarqy/fantasy-contest/internal/platform/logging"
)

// LoadConfig reads an optional .env file before parsing the environment.
// Variables already set in the process win over the file.
func LoadConfig() (config.Config, error) {
	_ = godotenv.Load()
	return config.Load()
}

// NewLogger builds the process logger and installs it as the default.
func NewLogger(cfg config.Config) *logging.Logger {
	logger := logging.NewJSON(cfg.LogLevel).With(
		"service", cfg.ServiceName,
		"version", cfg.ServiceVersion,
		"env", cfg.AppEnv,
	)
	logging.SetDefault(logger)
	return logger
}

// StartObservability starts tracing, profiling and pprof as configured. The
// returned func flushes and stops them.
func StartObservability(cfg config.Config, logger *logging.Logger) (func(), error) {
	stack, err := observability.Start(cfg, logger)
	if err != nil {
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stack.Shutdown(ctx); err != nil {
			logger.Warn("stop observability failed", "error", err)
		}
	}, nil
}
