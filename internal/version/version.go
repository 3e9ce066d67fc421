package version

import "fmt"

// Build-time variables set by ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns version information
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}

// String formats the version information for CLI output.
func String(binary string) string {
	return fmt.Sprintf("%s version %s\nCommit: %s\nDate: %s\n", binary, Version, GitCommit, BuildDate)
}
