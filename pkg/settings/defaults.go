package settings

import (
	"os"
	"path/filepath"
)

// Default values for viewer settings.
const (
	DefaultMaxLines = 10000
	DefaultMinLevel = "V"
)

// DefaultBuffers are the logcat buffers selected out of the box.
var DefaultBuffers = []string{"main", "system", "crash"}

// EnvPrefix is the prefix for environment variable overrides
// (LOGSIFT_MIN_LEVEL, LOGSIFT_MAX_LINES, ...).
const EnvPrefix = "LOGSIFT"

// DefaultPath returns the default settings file location,
// ~/.logsift/settings.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "settings.yaml"
	}
	return filepath.Join(home, ".logsift", "settings.yaml")
}
