package config

// Config holds every setting of the parity tool. Values come from the
// config file, environment variables and CLI flags, in increasing order of
// precedence.
type Config struct {
	Verbose  bool   `mapstructure:"verbose"`
	LogLevel string `mapstructure:"log_level"`

	// Seed is the generator seed planted before every invocation pair.
	Seed int64 `mapstructure:"seed"`

	// Cases restricts the run to the named transform classes. Empty means
	// the full registry.
	Cases []string `mapstructure:"cases"`

	// FailFast stops the run at the first diverging case.
	FailFast bool `mapstructure:"fail_fast"`

	// Format selects the report output: text or json.
	Format string `mapstructure:"format"`

	// Bitmaps toggles the bitmap comparison path for cases that support it.
	Bitmaps bool `mapstructure:"bitmaps"`
}
