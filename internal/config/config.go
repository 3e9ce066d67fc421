// Package config loads and validates the parity tool configuration from
// files, environment variables and CLI flags via viper.
package config

import (
	"fmt"
	"strings"
)

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Verbose:  false,
		LogLevel: "info",
		Seed:     0,
		FailFast: false,
		Format:   "text",
		Bitmaps:  true,
	}
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

var validFormats = []string{"text", "json"}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level %q (valid: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}
	if !contains(validFormats, c.Format) {
		return fmt.Errorf("invalid report format %q (valid: %s)", c.Format, strings.Join(validFormats, ", "))
	}
	for _, name := range c.Cases {
		if name == "" {
			return fmt.Errorf("empty case name in case list")
		}
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
