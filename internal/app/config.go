package app

import (
	"errors"
	"fmt"
)

// DefaultTaskFile is read when no task file is named.
const DefaultTaskFile = "Taskfile.hcl"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// TaskFiles are files or directories of .hcl task files.
	TaskFiles []string

	LogFormat string
	LogLevel  string
	Workers   int

	// Force disables the up-to-date check.
	Force bool
	// Variables override task file variable defaults.
	Variables map[string]string
	// MetricsFile, if set, receives Prometheus metrics of the runs.
	MetricsFile string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.TaskFiles) == 0 {
		cfg.TaskFiles = []string{DefaultTaskFile}
	}
	for _, f := range cfg.TaskFiles {
		if f == "" {
			return nil, errors.New("task file path cannot be empty")
		}
	}

	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}

	return &cfg, nil
}
