package commands

import (
	"github.com/arthur-debert/claudesync/pkg/config"
	"github.com/arthur-debert/claudesync/pkg/errors"
	"github.com/arthur-debert/claudesync/pkg/logging"
	"github.com/arthur-debert/claudesync/pkg/manifest"
	"github.com/arthur-debert/claudesync/pkg/paths"
	"github.com/arthur-debert/claudesync/pkg/permissions"
	"github.com/arthur-debert/claudesync/pkg/sync"
	"github.com/arthur-debert/claudesync/pkg/types"
	"github.com/spf13/afero"
)

// PermissionNormalizer restores execute bits under a root.
type PermissionNormalizer interface {
	Normalize(root string) (*permissions.NormalizeResult, error)
}

// SyncOptions holds options for Backup and Restore.
type SyncOptions struct {
	// Paths are the resolved roots. Required.
	Paths *paths.Paths

	// Config supplies permission settings. Nil means config.Default().
	Config *config.Config

	DryRun bool

	// FileSystem defaults to the OS filesystem.
	FileSystem afero.Fs

	// Manifest defaults to manifest.Default().
	Manifest *manifest.Manifest

	// Normalizer replaces the one built from Config. Restore only.
	Normalizer PermissionNormalizer
}

// permissionsSupported is swapped in tests.
var permissionsSupported = permissions.Supported

// Backup copies the manifest from the live root into the mirror.
func Backup(opts SyncOptions) (*Result, error) {
	return run(types.DirectionCapture, opts)
}

// Restore copies the manifest from the mirror onto the live root, creating
// it if needed, then makes hook and skill scripts executable.
func Restore(opts SyncOptions) (*Result, error) {
	return run(types.DirectionApply, opts)
}

func run(direction types.Direction, opts SyncOptions) (*Result, error) {
	logger := logging.GetLogger("commands." + direction.Verb())

	if opts.Paths == nil {
		return nil, errors.New(errors.ErrInvalidInput, "paths are required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	m := opts.Manifest
	if m == nil {
		m = manifest.Default()
	}

	result := &Result{
		Command:      direction.Verb(),
		Direction:    direction,
		LiveRoot:     opts.Paths.LiveRoot(),
		MirrorRoot:   opts.Paths.MirrorRoot(),
		ProjectRoot:  opts.Paths.ProjectRoot(),
		UsedFallback: opts.Paths.UsedFallback(),
	}

	if result.UsedFallback {
		logger.Warn().
			Str("projectRoot", result.ProjectRoot).
			Msg("Not inside a git repository, using the current directory as project root")
	}

	engine := sync.NewEngine(opts.FileSystem, sync.Options{DryRun: opts.DryRun})
	report, err := engine.Run(direction, m, result.LiveRoot, result.MirrorRoot)
	if err != nil {
		return nil, err
	}
	result.Report = report

	if direction != types.DirectionApply || opts.DryRun {
		return result, nil
	}
	if !permissionsSupported() {
		logger.Debug().Msg("Platform has no execute bits, skipping permission restore")
		return result, nil
	}

	normalizer := opts.Normalizer
	if normalizer == nil {
		normalizer = permissions.NewNormalizer(opts.FileSystem, permissions.Options{
			ScriptExtensions: cfg.Permissions.ScriptExtensions,
			ShebangScripts:   cfg.Permissions.ShebangScripts,
		})
	}

	normalized, err := normalizer.Normalize(result.LiveRoot)
	if normalized != nil {
		result.Normalized = normalized.Changed
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Some scripts could not be made executable")
		result.NormalizeErr = err
	}

	return result, nil
}
