package commands

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/claudesync/pkg/config"
	"github.com/arthur-debert/claudesync/pkg/errors"
	"github.com/arthur-debert/claudesync/pkg/logging"
)

// GenConfigOptions holds options for the genconfig command
type GenConfigOptions struct {
	// Effective prints this merged configuration instead of the commented
	// defaults.
	Effective *config.Config

	// Write saves the content to Path instead of only returning it.
	Write bool

	// Path defaults to the user config file.
	Path string

	// Force overwrites an existing file.
	Force bool
}

// GenConfigResult is the output of GenConfig.
type GenConfigResult struct {
	Content string `json:"content" yaml:"content"`

	// Written is the file written, empty when nothing was written.
	Written string `json:"written,omitempty" yaml:"written,omitempty"`

	// Skipped is set when Path already existed and Force was false.
	Skipped bool `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// GenConfig outputs or writes the default configuration
func GenConfig(opts GenConfigOptions) (*GenConfigResult, error) {
	logger := logging.GetLogger("commands.genconfig")

	result := &GenConfigResult{Content: config.GenerateConfigContent()}
	if opts.Effective != nil {
		data, err := config.Marshal(opts.Effective)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
		}
		result.Content = string(data)
	}

	if !opts.Write {
		logger.Debug().Msg("Outputting config to stdout")
		return result, nil
	}

	target := opts.Path
	if target == "" {
		target = config.UserConfigPath()
	}

	if _, err := os.Stat(target); err == nil && !opts.Force {
		logger.Warn().Str("path", target).Msg("Config file already exists, skipping")
		result.Skipped = true
		return result, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", filepath.Dir(target))
	}
	if err := os.WriteFile(target, []byte(result.Content), 0644); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "failed to write config to %s", target)
	}

	logger.Info().Str("path", target).Msg("Written config file")
	result.Written = target
	return result, nil
}
