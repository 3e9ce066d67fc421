package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configName = "parity"
	envPrefix  = "AUGMENT"
)

// Loader wraps a viper instance with the tool's search paths, environment
// bindings and defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper so flag bindings made by
// the CLI are visible.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load reads the configuration from the default search locations.
func (l *Loader) Load() (*Config, error) {
	l.setDefaults()
	l.setupEnvironment()
	l.addConfigPaths()
	l.v.SetConfigName(configName)
	l.v.SetConfigType("yaml")

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No file anywhere is fine; defaults apply.
	}
	return l.unmarshal()
}

// LoadWithFile reads the configuration from an explicit file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	l.setDefaults()
	l.setupEnvironment()
	l.v.SetConfigFile(configFile)

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
	}
	return l.unmarshal()
}

func (l *Loader) unmarshal() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetViper exposes the underlying viper instance for flag binding.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// GetConfigFileUsed returns the path of the loaded config file, if any.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "augment"))
	}
	l.v.AddConfigPath("/etc/augment")
}

func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(envPrefix)
	l.v.AutomaticEnv()
}

func (l *Loader) setDefaults() {
	def := DefaultConfig()
	l.v.SetDefault("verbose", def.Verbose)
	l.v.SetDefault("log_level", def.LogLevel)
	l.v.SetDefault("seed", def.Seed)
	l.v.SetDefault("fail_fast", def.FailFast)
	l.v.SetDefault("format", def.Format)
	l.v.SetDefault("bitmaps", def.Bitmaps)
}

// GetConfigSearchPaths lists the locations Load considers, for help output.
func GetConfigSearchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home, filepath.Join(home, ".config", "augment"))
	}
	return append(paths, "/etc/augment")
}
