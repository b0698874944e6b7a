package app

import (
	"errors"
	"time"

	"github.com/specialistvlad/pioconf/internal/hook"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProjectDir string
	Env        string            // build profile; resolved from platformio.ini when empty
	Target     string            // build target whose pre-actions run
	Vars       map[string]string // extra BuildEnvironment entries

	LogFormat string
	LogLevel  string

	Watch    bool
	Debounce time.Duration
}

// NewConfig validates cfg and fills defaults for the unset optional fields.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProjectDir == "" {
		return nil, errors.New("ProjectDir is a required configuration field and cannot be empty")
	}
	if cfg.Target == "" {
		cfg.Target = hook.TargetProgram
	}
	if cfg.Debounce < 0 {
		return nil, errors.New("Debounce must not be negative")
	}
	return &cfg, nil
}
