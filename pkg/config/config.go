package config

import (
	"fmt"
	"strings"
)

// Config is the merged configuration for one invocation.
type Config struct {
	Paths       PathsConfig       `koanf:"paths" toml:"paths"`
	Permissions PermissionsConfig `koanf:"permissions" toml:"permissions"`
	Output      OutputConfig      `koanf:"output" toml:"output"`
	Logging     LoggingConfig     `koanf:"logging" toml:"logging"`

	// Sources lists the files that contributed, in load order.
	Sources []string `koanf:"-" toml:"-"`
}

// PathsConfig overrides root discovery. Empty values mean "discover".
type PathsConfig struct {
	LiveRoot    string `koanf:"live_root" toml:"live_root"`
	ProjectRoot string `koanf:"project_root" toml:"project_root"`
}

// PermissionsConfig controls execute-bit restoration after a restore.
type PermissionsConfig struct {
	ScriptExtensions []string `koanf:"script_extensions" toml:"script_extensions"`
	ShebangScripts   bool     `koanf:"shebang_scripts" toml:"shebang_scripts"`
}

// OutputConfig selects how results are rendered.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"`
}

// LoggingConfig sets the base verbosity; -v flags add to it.
type LoggingConfig struct {
	Verbosity int `koanf:"verbosity" toml:"verbosity"`
}

var validFormats = []string{"auto", "term", "text", "json", "yaml"}

// Default returns the built-in configuration. It matches the embedded
// defaults.toml.
func Default() *Config {
	return &Config{
		Permissions: PermissionsConfig{
			ScriptExtensions: []string{".sh"},
			ShebangScripts:   true,
		},
		Output: OutputConfig{Format: "auto"},
	}
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	format := strings.ToLower(strings.TrimSpace(c.Output.Format))
	valid := false
	for _, f := range validFormats {
		if format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("output.format must be one of %s, got %q",
			strings.Join(validFormats, ", "), c.Output.Format)
	}
	if c.Logging.Verbosity < 0 {
		return fmt.Errorf("logging.verbosity must not be negative, got %d", c.Logging.Verbosity)
	}
	return nil
}
