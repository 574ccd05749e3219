package permissions

import (
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/claudesync/pkg/errors"
	"github.com/arthur-debert/claudesync/pkg/filesystem"
	"github.com/arthur-debert/claudesync/pkg/logging"
	"github.com/arthur-debert/claudesync/pkg/manifest"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// ScriptsDirName is the directory inside a skill that holds helper scripts.
const ScriptsDirName = "scripts"

// DefaultScriptExtensions are the hook extensions made executable.
var DefaultScriptExtensions = []string{".sh"}

// shebang is the prefix that marks a skill helper as executable.
var shebang = []byte("#!")

// Options configure a Normalizer.
type Options struct {
	// ScriptExtensions lists hook file extensions to mark executable,
	// with or without the leading dot. Empty means DefaultScriptExtensions.
	ScriptExtensions []string

	// ShebangScripts enables marking skills/**/scripts/* files that start
	// with "#!".
	ShebangScripts bool
}

// NormalizeResult lists the files whose mode was changed, relative to the
// normalized root with forward slashes.
type NormalizeResult struct {
	Changed   []string
	Unchanged int
}

// Normalizer adds execute bits to scripts under a live root.
type Normalizer struct {
	fs         afero.Fs
	extensions map[string]bool
	shebang    bool
	logger     zerolog.Logger
}

// NewNormalizer creates a normalizer over fs. A nil fs means the OS filesystem.
func NewNormalizer(fs afero.Fs, opts Options) *Normalizer {
	if fs == nil {
		fs = filesystem.NewOS()
	}

	exts := opts.ScriptExtensions
	if len(exts) == 0 {
		exts = DefaultScriptExtensions
	}
	set := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}

	return &Normalizer{
		fs:         fs,
		extensions: set,
		shebang:    opts.ShebangScripts,
		logger:     logging.GetLogger("permissions"),
	}
}

// Normalize walks root/hooks and, when enabled, root/skills. Missing
// directories are skipped. Failures on individual files are collected and
// returned joined after the walk finishes; the result is always non-nil.
func (n *Normalizer) Normalize(root string) (*NormalizeResult, error) {
	done := logging.LogOperationStart(n.logger.With().Str("root", root).Logger(), "normalize")
	defer done()

	result := &NormalizeResult{}
	var errs []error

	errs = append(errs, n.walk(root, manifest.HooksDir, result, n.isHookScript)...)
	if n.shebang {
		errs = append(errs, n.walk(root, manifest.SkillsDir, result, n.isSkillScript)...)
	}

	n.logger.Info().
		Int("changed", len(result.Changed)).
		Int("unchanged", result.Unchanged).
		Int("errors", len(errs)).
		Msg("Normalized script permissions")

	return result, stderrors.Join(errs...)
}

type matchFunc func(path, rel string) (bool, error)

func (n *Normalizer) walk(root, dir string, result *NormalizeResult, match matchFunc) []error {
	base := filepath.Join(root, dir)

	info, exists, err := filesystem.Exists(n.fs, base)
	if err != nil {
		return []error{err}
	}
	if !exists || !info.IsDir() {
		n.logger.Debug().Str("dir", base).Msg("Nothing to normalize")
		return nil
	}

	var errs []error
	walkErr := afero.Walk(n.fs, base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			errs = append(errs, errors.Wrapf(err, errors.ErrFileAccess, "failed to walk %s", path))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, errors.ErrInternal, "failed to relativize %s", path))
			return nil
		}
		rel = filepath.ToSlash(rel)

		ok, err := match(path, rel)
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if !ok {
			return nil
		}

		changed, err := n.makeExecutable(path, info.Mode().Perm())
		if err != nil {
			errs = append(errs, err)
			return nil
		}
		if changed {
			result.Changed = append(result.Changed, rel)
		} else {
			result.Unchanged++
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, errors.Wrapf(walkErr, errors.ErrFileAccess, "failed to walk %s", base))
	}
	return errs
}

func (n *Normalizer) isHookScript(path, _ string) (bool, error) {
	return n.extensions[strings.ToLower(filepath.Ext(path))], nil
}

// isSkillScript matches files below a scripts directory inside skills whose
// first bytes are a shebang.
func (n *Normalizer) isSkillScript(path, rel string) (bool, error) {
	parts := strings.Split(rel, "/")
	// skills/<skill>/.../scripts/<file>
	inScripts := false
	for _, p := range parts[1 : len(parts)-1] {
		if p == ScriptsDirName {
			inScripts = true
			break
		}
	}
	if !inScripts {
		return false, nil
	}

	f, err := n.fs.Open(path)
	if err != nil {
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, len(shebang))
	if _, err := io.ReadFull(f, head); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", path)
	}
	return string(head) == string(shebang), nil
}

func (n *Normalizer) makeExecutable(path string, perm os.FileMode) (bool, error) {
	want := ExecutableMode(perm)
	if want == perm {
		return false, nil
	}
	if err := n.fs.Chmod(path, want); err != nil {
		return false, errors.Wrapf(err, errors.ErrPermission, "failed to chmod %s", path).
			WithDetail("path", path)
	}
	n.logger.Debug().
		Str("path", path).
		Str("from", perm.String()).
		Str("to", want.String()).
		Msg("Marked executable")
	return true, nil
}

// ExecutableMode returns perm with the owner execute bit set, plus an
// execute bit wherever the matching read bit is set.
func ExecutableMode(perm os.FileMode) os.FileMode {
	perm = perm.Perm()
	return perm | 0100 | (perm&0444)>>2
}
