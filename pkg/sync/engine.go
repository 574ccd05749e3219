package sync

import (
	"path/filepath"

	"github.com/arthur-debert/claudesync/pkg/errors"
	"github.com/arthur-debert/claudesync/pkg/filesystem"
	"github.com/arthur-debert/claudesync/pkg/logging"
	"github.com/arthur-debert/claudesync/pkg/manifest"
	"github.com/arthur-debert/claudesync/pkg/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Options tune an Engine.
type Options struct {
	// DryRun reports what would be copied without writing anything.
	DryRun bool
}

// Engine runs manifest-driven copies between two roots.
type Engine struct {
	fs     afero.Fs
	opts   Options
	logger zerolog.Logger
}

// NewEngine creates an engine over fs. A nil fs means the OS filesystem.
func NewEngine(fs afero.Fs, opts Options) *Engine {
	if fs == nil {
		fs = filesystem.NewOS()
	}
	return &Engine{
		fs:     fs,
		opts:   opts,
		logger: logging.GetLogger("sync.engine"),
	}
}

// Run synchronizes every item of m in the given direction.
//
// A non-nil error means a precondition failed and no item was processed.
// Otherwise every item has exactly one Result in the returned Report, in
// manifest order.
func (e *Engine) Run(direction types.Direction, m *manifest.Manifest, liveRoot, mirrorRoot string) (*Report, error) {
	if err := direction.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid direction")
	}
	if m == nil {
		return nil, errors.New(errors.ErrInvalidInput, "manifest is nil")
	}
	if liveRoot == "" || mirrorRoot == "" {
		return nil, errors.New(errors.ErrConfiguration, "live root and mirror root must both be set")
	}

	source, destination := liveRoot, mirrorRoot
	if direction == types.DirectionApply {
		source, destination = mirrorRoot, liveRoot
	}

	logger := e.logger.With().
		Str("direction", direction.String()).
		Str("source", source).
		Str("destination", destination).
		Bool("dryRun", e.opts.DryRun).
		Logger()
	done := logging.LogOperationStart(logger, direction.Verb())
	defer done()

	if err := e.checkLiveRoot(direction, liveRoot); err != nil {
		logger.Error().Err(err).Msg("Precondition failed, nothing was synchronized")
		return nil, err
	}

	report := &Report{
		Direction:   direction,
		Source:      source,
		Destination: destination,
		DryRun:      e.opts.DryRun,
		Results:     make([]Result, 0, m.Len()),
	}

	for _, item := range m.Items() {
		result := e.syncItem(item, source, destination)
		report.Results = append(report.Results, result)

		event := logger.Debug()
		switch {
		case result.Status == types.StatusFailed:
			event = logger.Warn().Err(result.Err)
		case result.Status == types.StatusSkippedMissing && item.RequiredOnSource:
			event = logger.Warn()
		case result.Status == types.StatusSkippedMissing:
			event = logger.Info()
		}
		event.
			Str("item", item.RelativePath).
			Str("kind", item.Kind.String()).
			Str("status", result.Status.String()).
			Msg("Processed item")
	}

	logger.Info().
		Int("copied", report.Copied()).
		Int("skipped", report.Skipped()).
		Int("failed", report.Failed()).
		Int("planned", report.Planned()).
		Msg("Sync finished")

	return report, nil
}

// checkLiveRoot enforces the live root precondition. Capture needs an
// existing live root; apply creates one when it is absent.
func (e *Engine) checkLiveRoot(direction types.Direction, liveRoot string) error {
	info, exists, err := filesystem.Exists(e.fs, liveRoot)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfiguration, "cannot inspect live root %s", liveRoot).
			WithDetail("path", liveRoot)
	}

	if exists && !info.IsDir() {
		return errors.Newf(errors.ErrConfiguration, "live root %s is not a directory", liveRoot).
			WithDetail("path", liveRoot)
	}

	if exists {
		return nil
	}

	if direction == types.DirectionCapture {
		return errors.Newf(errors.ErrConfiguration, "live root %s does not exist, nothing to back up", liveRoot).
			WithDetail("path", liveRoot)
	}

	if e.opts.DryRun {
		return nil
	}

	if err := e.fs.MkdirAll(liveRoot, filesystem.DirPerm); err != nil {
		return errors.Wrapf(err, errors.ErrConfiguration, "cannot create live root %s", liveRoot).
			WithDetail("path", liveRoot)
	}
	e.logger.Info().Str("path", liveRoot).Msg("Created live root")
	return nil
}

func (e *Engine) syncItem(item types.SyncItem, source, destination string) Result {
	result := Result{
		Item:        item,
		Source:      filepath.Join(source, item.RelativePath),
		Destination: filepath.Join(destination, item.RelativePath),
	}

	info, exists, err := filesystem.Exists(e.fs, result.Source)
	if err != nil {
		return failed(result, err)
	}
	if !exists {
		result.Status = types.StatusSkippedMissing
		result.Detail = "not present in source"
		return result
	}

	switch {
	case item.Kind == types.KindDirectory && !info.IsDir():
		return failed(result, errors.Newf(errors.ErrKindMismatch,
			"%s should be a directory but is a file", result.Source))
	case item.Kind == types.KindFile && info.IsDir():
		return failed(result, errors.Newf(errors.ErrKindMismatch,
			"%s should be a file but is a directory", result.Source))
	}

	if err := filesystem.CheckOverlap(e.fs, result.Source, result.Destination); err != nil {
		return failed(result, err)
	}

	if e.opts.DryRun {
		result.Status = types.StatusPlanned
		if item.Kind == types.KindDirectory {
			result.Detail = "would replace directory"
		} else {
			result.Detail = "would overwrite file"
		}
		return result
	}

	if item.Kind == types.KindDirectory {
		err = filesystem.ReplaceTree(e.fs, result.Source, result.Destination)
		result.Detail = "directory replaced"
	} else {
		err = filesystem.CopyFile(e.fs, result.Source, result.Destination)
		result.Detail = "file copied"
	}
	if err != nil {
		return failed(result, err)
	}

	result.Status = types.StatusCopied
	return result
}

func failed(result Result, err error) Result {
	result.Status = types.StatusFailed
	result.Err = err
	result.Detail = string(errors.GetErrorCode(err))
	return result
}
