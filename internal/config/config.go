// Package config loads rdc-cli's optional ~/.rdc/config.yaml. Absence of
// the file is not an error — every field simply keeps its zero value and
// callers apply their own defaults, the same tolerance the teacher's
// LoadWingConfig shows for a missing wing.yaml.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds daemon and CLI defaults that are inconvenient to pass as
// flags on every invocation.
type Config struct {
	// IdleTimeoutSeconds overrides the daemon's idle-shutdown timer
	// (spec §4.9 default 1800).
	IdleTimeoutSeconds int `yaml:"idle_timeout_seconds,omitempty"`
	// LogLevel is one of debug/info/warn/error.
	LogLevel string `yaml:"log_level,omitempty"`
	// DefaultSession is the session name used when --session is omitted.
	DefaultSession string `yaml:"default_session,omitempty"`
	// FakeAdapter starts new sessions against the in-repo synthetic
	// capture adapter instead of requiring a real capture library.
	FakeAdapter bool `yaml:"fake_adapter,omitempty"`
}

const (
	DefaultIdleTimeoutSeconds = 1800
	DefaultLogLevel           = "info"
	DefaultSessionName        = "default"
)

// Dir returns $HOME/.rdc.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".rdc"), nil
}

// SessionsDir returns $HOME/.rdc/sessions.
func SessionsDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

// Load reads ~/.rdc/config.yaml, returning a zero-value Config if it
// doesn't exist.
func Load() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "config.yaml")

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config back to ~/.rdc/config.yaml, creating the
// directory (mode 0700) if needed.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0600)
}

// IdleTimeout returns the configured idle timeout or the spec default.
func (c *Config) IdleTimeout() int {
	if c == nil || c.IdleTimeoutSeconds <= 0 {
		return DefaultIdleTimeoutSeconds
	}
	return c.IdleTimeoutSeconds
}

// Level returns the configured log level or the default.
func (c *Config) Level() string {
	if c == nil || c.LogLevel == "" {
		return DefaultLogLevel
	}
	return c.LogLevel
}

// Session returns the configured default session name or "default".
func (c *Config) Session() string {
	if c == nil || c.DefaultSession == "" {
		return DefaultSessionName
	}
	return c.DefaultSession
}
