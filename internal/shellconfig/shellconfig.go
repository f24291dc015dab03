// Package shellconfig loads gosh's shell-wide settings, layering compiled
// defaults with an optional YAML rc file and CLI overrides, the same
// precedence Pebble's plan/layer loading applies (defaults, then layer
// YAML via gopkg.in/yaml.v3, then explicit overrides).
package shellconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the evaluator's process-wide tunables.
type Config struct {
	// MaxJobs is the job table's fixed capacity.
	MaxJobs int `yaml:"max_jobs"`
	// Interactive overrides auto-detection of terminal ownership; nil means
	// "detect from the controlling terminal".
	Interactive *bool `yaml:"interactive,omitempty"`
	// HistoryFile is passed through to the external line-editing
	// collaborator; gosh's evaluator never reads it itself.
	HistoryFile string `yaml:"history_file"`
	// DebugLog enables Debugf output on the default logger.
	DebugLog bool `yaml:"debug_log"`
}

// Default returns the compiled-in baseline configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		MaxJobs:     32,
		HistoryFile: filepath.Join(home, ".gosh_history"),
		DebugLog:    false,
	}
}

// Load reads path (typically ~/.goshrc) as YAML and merges it over
// Default(). A missing file is not an error; it simply yields the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = Default().MaxJobs
	}
	return cfg, nil
}

// DefaultRCPath returns ~/.goshrc for the current user, or "" if the home
// directory can't be determined.
func DefaultRCPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".goshrc")
}
