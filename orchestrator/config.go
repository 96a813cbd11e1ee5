package orchestrator

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines tuning parameters for workflow processing.
type Config struct {
	// MaxIterations bounds the execute/check retry loop per session.
	MaxIterations int `yaml:"max_iterations"`

	// SatisfactionThreshold is the check score at or above which the
	// retry loop exits early.
	SatisfactionThreshold float64 `yaml:"satisfaction_threshold"`

	// MaxConcurrentSessions limits sessions processed simultaneously.
	// Zero means unlimited.
	MaxConcurrentSessions int `yaml:"max_concurrent_sessions"`
}

// DefaultConfig provides the defaults used when options leave Config unset:
// three loop rounds, 0.8 early-exit threshold, ten concurrent sessions.
var DefaultConfig = Config{
	MaxIterations:         3,
	SatisfactionThreshold: 0.8,
	MaxConcurrentSessions: 10,
}

// LoadConfig reads a YAML config file, applying defaults for absent keys.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be >= 1, got %d", c.MaxIterations)
	}
	if c.SatisfactionThreshold < 0 || c.SatisfactionThreshold > 1 {
		return fmt.Errorf("satisfaction_threshold must be in [0,1], got %v", c.SatisfactionThreshold)
	}
	if c.MaxConcurrentSessions < 0 {
		return fmt.Errorf("max_concurrent_sessions must be >= 0, got %d", c.MaxConcurrentSessions)
	}
	return nil
}

// Summary condenses one session's run for the caller and for reporting.
type Summary struct {
	SessionID  string        `json:"session_id"`
	Status     string        `json:"status"`
	Iterations int           `json:"total_iterations"`
	Elapsed    time.Duration `json:"elapsed"`
}
