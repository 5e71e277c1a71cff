// Package config holds runtime tunables sourced from the environment.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config carries the engine and CLI tunables. Workflow content never lives
// here; only pacing and logging knobs that operators may want to adjust
// without editing workflows.
type Config struct {
	// LogLevel is the zerolog level name.
	LogLevel string `env:"AUTOMATION_LOG_LEVEL, default=info"`
	// LogJSON disables the human-readable console writer.
	LogJSON bool `env:"AUTOMATION_LOG_JSON, default=false"`
	// PausePoll bounds how long a pause or stop request can go unnoticed
	// while a run is suspended.
	PausePoll time.Duration `env:"AUTOMATION_PAUSE_POLL, default=100ms"`
	// BatchDelay is the settle time between batch rows.
	BatchDelay time.Duration `env:"AUTOMATION_BATCH_DELAY, default=2s"`
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.PausePoll <= 0 {
		return nil, fmt.Errorf("pause poll interval must be positive, got %s", cfg.PausePoll)
	}
	if cfg.BatchDelay < 0 {
		return nil, fmt.Errorf("batch delay must not be negative, got %s", cfg.BatchDelay)
	}
	return &cfg, nil
}
