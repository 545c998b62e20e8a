// Package config defines process configuration and how it is loaded.
//
// Conventions:
// - New(ctx) returns a Config with defaults; Load(ctx) layers file and env.
// - All functions accept context.Context as the first parameter.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Persist modes accepted by PersistMode.
const (
	PersistSync  = "sync"
	PersistAsync = "async"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// StatePath is the JSON state file. Empty keeps the document in memory.
	StatePath string `koanf:"state_path"`

	// PersistMode is "sync" or "async".
	PersistMode string `koanf:"persist_mode"`

	// SaveQueueSize bounds pending async saves.
	SaveQueueSize int `koanf:"save_queue_size"`

	// DisagreementThreshold flags |overallCriteria - overallDims| at or above it.
	DisagreementThreshold float64 `koanf:"disagreement_threshold"`

	// MaxImportBytes caps POST /import bodies.
	MaxImportBytes int64 `koanf:"max_import_bytes"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		StatePath:             "atom-state.json",
		PersistMode:           PersistAsync,
		SaveQueueSize:         16,
		DisagreementThreshold: 0.75,
		MaxImportBytes:        5 << 20,
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate(_ context.Context) error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.PersistMode != PersistSync && c.PersistMode != PersistAsync:
		return fmt.Errorf("%w: persist_mode must be %q or %q, got %q", ErrInvalidConfig, PersistSync, PersistAsync, c.PersistMode)
	case c.SaveQueueSize < 1:
		return fmt.Errorf("%w: save_queue_size must be positive", ErrInvalidConfig)
	case !(c.DisagreementThreshold > 0) || math.IsInf(c.DisagreementThreshold, 0):
		return fmt.Errorf("%w: disagreement_threshold must be a positive number", ErrInvalidConfig)
	case c.MaxImportBytes < 1:
		return fmt.Errorf("%w: max_import_bytes must be positive", ErrInvalidConfig)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
