// Package paths resolves the two roots claudesync synchronizes between.
//
// The live root is the user's CLI configuration directory under their home
// directory. The mirror root is a fixed "config" subdirectory of the
// version-controlled project. Both are resolved once, up front, and handed
// to the sync engine as plain values; nothing below this package looks at
// the environment to find them.
package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/claudesync/pkg/errors"
)

// Fixed directory names. These are part of the on-disk contract with the
// mirror repository and are not user-configurable.
const (
	// LiveDirName is the CLI configuration directory under the home directory.
	LiveDirName = ".claude"

	// MirrorDirName is the mirror subdirectory under the project base.
	MirrorDirName = "config"

	// ProjectConfigFile is the optional per-project configuration file.
	ProjectConfigFile = ".claudesync.toml"
)

// Options carries explicit overrides. Empty fields fall back to discovery.
type Options struct {
	// LiveRoot replaces <home>/.claude when set.
	LiveRoot string

	// ProjectRoot replaces git/cwd discovery of the project base when set.
	ProjectRoot string
}

// Paths holds the resolved roots for one invocation.
type Paths struct {
	liveRoot    string
	projectRoot string
	mirrorRoot  string

	// usedFallback indicates the project base fell back to the working directory
	usedFallback bool
}

// New resolves both roots. Failing to find the home directory is a
// CONFIGURATION error and nothing else should run after it.
func New(opts Options) (*Paths, error) {
	p := &Paths{}

	if opts.LiveRoot != "" {
		abs, err := absolute(expandHome(opts.LiveRoot))
		if err != nil {
			return nil, err
		}
		p.liveRoot = abs
	} else {
		live, err := ResolveLiveRoot()
		if err != nil {
			return nil, err
		}
		p.liveRoot = live
	}

	projectRoot := opts.ProjectRoot
	if projectRoot == "" {
		root, usedFallback, err := findProjectRoot()
		if err != nil {
			return nil, err
		}
		projectRoot = root
		p.usedFallback = usedFallback
	}

	mirror, err := ResolveMirrorRoot(expandHome(projectRoot))
	if err != nil {
		return nil, err
	}
	p.mirrorRoot = mirror
	p.projectRoot = filepath.Dir(mirror)

	return p, nil
}

// ResolveLiveRoot returns <home>/.claude using the platform home lookup.
func ResolveLiveRoot() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, LiveDirName), nil
}

// ResolveMirrorRoot returns projectBase/config as an absolute, clean path.
func ResolveMirrorRoot(projectBase string) (string, error) {
	if projectBase == "" {
		return "", errors.New(errors.ErrConfiguration, "project base is empty")
	}
	base, err := absolute(projectBase)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, MirrorDirName), nil
}

// Home directory lookups, in order. Tests replace them to simulate a
// machine where neither source knows the home directory.
var (
	UserHomeDir = os.UserHomeDir
	XDGHome     = func() string { return xdg.Home }
)

// HomeDir returns the invoking user's home directory. It asks the OS
// first, honouring HOME as it is at call time, and falls back to the XDG
// library, which also consults the user database when HOME is unset.
func HomeDir() (string, error) {
	home, err := UserHomeDir()
	if err == nil && home != "" {
		return home, nil
	}
	if home := XDGHome(); home != "" {
		return home, nil
	}
	if err == nil {
		return "", errors.New(errors.ErrConfiguration, "cannot determine the home directory")
	}
	return "", errors.Wrap(err, errors.ErrConfiguration, "cannot determine the home directory")
}

// LiveRoot returns the resolved live root
func (p *Paths) LiveRoot() string {
	return p.liveRoot
}

// MirrorRoot returns the resolved mirror root
func (p *Paths) MirrorRoot() string {
	return p.mirrorRoot
}

// ProjectRoot returns the project base the mirror root lives under
func (p *Paths) ProjectRoot() string {
	return p.projectRoot
}

// ProjectConfigPath returns the location of the optional project config file
func (p *Paths) ProjectConfigPath() string {
	return filepath.Join(p.projectRoot, ProjectConfigFile)
}

// UsedFallback reports whether the working directory was used as project base
func (p *Paths) UsedFallback() bool {
	return p.usedFallback
}

// findProjectRoot determines the project base:
// 1. the enclosing git repository root
// 2. the current working directory (fallback)
func findProjectRoot() (string, bool, error) {
	if gitRoot, err := findGitRoot(); err == nil && gitRoot != "" {
		return gitRoot, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrap(err, errors.ErrConfiguration, "failed to get current directory")
	}
	return cwd, true, nil
}

func findGitRoot() (string, error) {
	output, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}

	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrNotFound, "git root is empty")
	}
	return gitRoot, nil
}

func absolute(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfiguration, "failed to get absolute path for %s", path)
	}
	return abs, nil
}

// expandHome expands a leading ~ to the home directory.
// ~user forms are returned unchanged.
func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := HomeDir()
	if err != nil {
		return path
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
