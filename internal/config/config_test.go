package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.Format)
	assert.True(t, cfg.Bitmaps)
}

func TestValidateLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg.LogLevel = level
		assert.NoError(t, cfg.Validate(), level)
	}
	cfg.LogLevel = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "json"
	assert.NoError(t, cfg.Validate())
	cfg.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateCases(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cases = []string{"Resize", "Pad"}
	assert.NoError(t, cfg.Validate())
	cfg.Cases = []string{"Resize", ""}
	assert.Error(t, cfg.Validate())
}
