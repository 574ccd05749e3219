// pkg/testutil/failing_fs.go
// DEPENDENCIES: afero
// PURPOSE: Inject I/O failures below chosen path prefixes

package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// Operation names accepted by FailingFs.FailOn.
const (
	OpOpen     = "open"
	OpOpenFile = "openfile"
	OpMkdir    = "mkdir"
	OpRemove   = "remove"
	OpChmod    = "chmod"
	OpStat     = "stat"
)

// FailingFs wraps an afero.Fs and returns permission errors for selected
// operations on paths at or below registered prefixes. Everything else is
// passed through.
type FailingFs struct {
	afero.Fs

	mu    sync.Mutex
	rules []failRule
}

type failRule struct {
	prefix string
	ops    map[string]bool
}

// NewFailingFs wraps base.
func NewFailingFs(base afero.Fs) *FailingFs {
	return &FailingFs{Fs: base}
}

// FailOn registers a failure for ops on paths under prefix. With no ops,
// every write-side operation fails (stat keeps working so the path is not
// reported as missing).
func (f *FailingFs) FailOn(prefix string, ops ...string) {
	if len(ops) == 0 {
		ops = []string{OpOpen, OpOpenFile, OpMkdir, OpRemove, OpChmod}
	}
	set := make(map[string]bool, len(ops))
	for _, op := range ops {
		set[op] = true
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, failRule{prefix: filepath.Clean(prefix), ops: set})
}

func (f *FailingFs) check(op, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	clean := filepath.Clean(name)
	for _, r := range f.rules {
		if !r.ops[op] {
			continue
		}
		if clean == r.prefix || strings.HasPrefix(clean, r.prefix+string(filepath.Separator)) {
			return &os.PathError{Op: op, Path: name, Err: os.ErrPermission}
		}
	}
	return nil
}

func (f *FailingFs) Name() string { return "FailingFs" }

// Unwrap returns the wrapped filesystem.
func (f *FailingFs) Unwrap() afero.Fs { return f.Fs }

func (f *FailingFs) Create(name string) (afero.File, error) {
	if err := f.check(OpOpenFile, name); err != nil {
		return nil, err
	}
	return f.Fs.Create(name)
}

func (f *FailingFs) Mkdir(name string, perm os.FileMode) error {
	if err := f.check(OpMkdir, name); err != nil {
		return err
	}
	return f.Fs.Mkdir(name, perm)
}

func (f *FailingFs) MkdirAll(path string, perm os.FileMode) error {
	if err := f.check(OpMkdir, path); err != nil {
		return err
	}
	return f.Fs.MkdirAll(path, perm)
}

func (f *FailingFs) Open(name string) (afero.File, error) {
	if err := f.check(OpOpen, name); err != nil {
		return nil, err
	}
	return f.Fs.Open(name)
}

func (f *FailingFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if err := f.check(OpOpenFile, name); err != nil {
		return nil, err
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func (f *FailingFs) Remove(name string) error {
	if err := f.check(OpRemove, name); err != nil {
		return err
	}
	return f.Fs.Remove(name)
}

func (f *FailingFs) RemoveAll(path string) error {
	if err := f.check(OpRemove, path); err != nil {
		return err
	}
	return f.Fs.RemoveAll(path)
}

func (f *FailingFs) Stat(name string) (os.FileInfo, error) {
	if err := f.check(OpStat, name); err != nil {
		return nil, err
	}
	return f.Fs.Stat(name)
}

func (f *FailingFs) Chmod(name string, mode os.FileMode) error {
	if err := f.check(OpChmod, name); err != nil {
		return err
	}
	return f.Fs.Chmod(name, mode)
}
