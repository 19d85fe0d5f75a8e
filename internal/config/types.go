// Package config provides configuration loading for LeapChat from
// defaults, an optional leapchat.yaml file, LEAPCHAT_* environment
// variables, and CLI flags, in increasing order of precedence.
package config

import (
	"fmt"
	"time"
)

// ReasoningConfig holds reasoning service settings.
type ReasoningConfig struct {
	// APIKey is the Gemini credential. Falls back to GOOGLE_API_KEY.
	APIKey string `koanf:"api_key"`
	// Model is the Gemini model name.
	Model string `koanf:"model"`
	// TimeoutSeconds bounds each inference call.
	TimeoutSeconds int `koanf:"timeout_seconds"`
}

// SandboxConfig holds execution sandbox settings.
type SandboxConfig struct {
	// MaxSteps caps interpreter steps per execution (0 = package default).
	MaxSteps uint64 `koanf:"max_steps"`
}

// Config is the resolved application configuration.
type Config struct {
	// StatePath is the path to the SQLite audit database.
	StatePath string `koanf:"state_path"`
	// HTTPPort is the API server port.
	HTTPPort int `koanf:"http_port"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`

	Reasoning ReasoningConfig `koanf:"reasoning"`
	Sandbox   SandboxConfig   `koanf:"sandbox"`
}

// Timeout returns the reasoning call timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Reasoning.TimeoutSeconds) * time.Second
}

// RequireCredential verifies the reasoning credential is present. Commands
// that talk to the reasoning service call this at startup so a missing key
// fails fast instead of mid-turn.
func (c *Config) RequireCredential() error {
	if c.Reasoning.APIKey == "" {
		return fmt.Errorf("no reasoning credential configured: set GOOGLE_API_KEY, LEAPCHAT_API_KEY, or reasoning.api_key in leapchat.yaml")
	}
	return nil
}
