package filesystem

import (
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/arthur-debert/claudesync/pkg/errors"
	"github.com/arthur-debert/claudesync/pkg/logging"
	"github.com/spf13/afero"
)

// MaxTreeDepth bounds recursion while following links inside a tree.
// A tree deeper than this is almost certainly a symlink cycle.
const MaxTreeDepth = 128

// DirPerm is the mode used for destination parents that do not exist yet.
const DirPerm os.FileMode = 0755

// NewOS returns the OS-backed filesystem.
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// Exists stats path, following links. A missing path is not an error.
func Exists(fs afero.Fs, path string) (os.FileInfo, bool, error) {
	info, err := fs.Stat(path)
	if err == nil {
		return info, true, nil
	}
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	return nil, false, errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", path)
}

// EnsureParent creates the parent directory of path if needed.
func EnsureParent(fs afero.Fs, path string) error {
	parent := filepath.Dir(path)
	if err := fs.MkdirAll(parent, DirPerm); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", parent)
	}
	return nil
}

// CopyFile copies src to dst byte for byte, replacing dst's content and
// giving it src's permission bits.
func CopyFile(fs afero.Fs, src, dst string) error {
	srcInfo, err := fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat source %s", src)
	}
	if srcInfo.IsDir() {
		return errors.Newf(errors.ErrKindMismatch, "source %s is a directory", src)
	}

	if err := CheckOverlap(fs, src, dst); err != nil {
		return err
	}

	if err := EnsureParent(fs, dst); err != nil {
		return err
	}

	// A link at dst is replaced by a regular file rather than written through.
	if info, err := lstat(fs, dst); err == nil && info.Mode()&os.ModeSymlink != 0 {
		if err := fs.Remove(dst); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "failed to remove link %s", dst)
		}
	}

	if err := copyContent(fs, src, dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	logger := logging.GetLogger("filesystem")
	logger.Trace().
		Str("src", src).
		Str("dst", dst).
		Msg("copied file")
	return nil
}

// ReplaceTree makes dst an exact copy of the directory src. Anything at dst
// beforehand is removed first, so files deleted from src do not survive.
func ReplaceTree(fs afero.Fs, src, dst string) error {
	srcInfo, err := fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat source %s", src)
	}
	if !srcInfo.IsDir() {
		return errors.Newf(errors.ErrKindMismatch, "source %s is not a directory", src)
	}

	if err := CheckOverlap(fs, src, dst); err != nil {
		return err
	}

	if err := EnsureParent(fs, dst); err != nil {
		return err
	}

	if err := RemoveIfExists(fs, dst); err != nil {
		return err
	}

	if err := copyTree(fs, src, dst, srcInfo, 0); err != nil {
		return err
	}

	logger := logging.GetLogger("filesystem")
	logger.Trace().
		Str("src", src).
		Str("dst", dst).
		Msg("replaced tree")
	return nil
}

// RemoveIfExists removes path and everything under it. A missing path is
// not an error.
func RemoveIfExists(fs afero.Fs, path string) error {
	if _, err := lstat(fs, path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", path)
	}
	if err := fs.RemoveAll(path); err != nil {
		return errors.Wrapf(err, errors.ErrDirRemove, "failed to remove %s", path)
	}
	return nil
}

func copyTree(fs afero.Fs, src, dst string, srcInfo os.FileInfo, depth int) error {
	if depth > MaxTreeDepth {
		return errors.Newf(errors.ErrSymlinkLoop, "directory %s is nested too deeply, likely a symlink cycle", src)
	}

	// Owner bits are forced on so children can be written into read-only sources.
	if err := fs.MkdirAll(dst, srcInfo.Mode().Perm()|0700); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", dst)
	}

	entries, err := afero.ReadDir(fs, src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to read directory %s", src)
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		// Stat rather than the entry's own info so links are followed.
		info, err := fs.Stat(srcPath)
		if err != nil {
			if stderrors.Is(err, syscall.ELOOP) {
				return errors.Wrapf(err, errors.ErrSymlinkLoop, "too many levels of symbolic links at %s", srcPath)
			}
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to stat %s", srcPath)
		}

		if info.IsDir() {
			if err := copyTree(fs, srcPath, dstPath, info, depth+1); err != nil {
				return err
			}
			continue
		}

		if err := copyContent(fs, srcPath, dstPath, info.Mode().Perm()); err != nil {
			return err
		}
	}

	return nil
}

func copyContent(fs afero.Fs, src, dst string, perm os.FileMode) error {
	srcFile, err := fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "failed to open source %s", src)
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := fs.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil && os.IsPermission(err) {
		// A read-only destination from an earlier run is replaced, not edited.
		if rmErr := fs.Remove(dst); rmErr == nil {
			dstFile, err = fs.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
		}
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "failed to create destination %s", dst)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to copy content to %s", dst)
	}
	if err := dstFile.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to close %s", dst)
	}

	// An existing destination keeps its old mode through O_TRUNC.
	if err := fs.Chmod(dst, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to set mode on %s", dst)
	}
	return nil
}

func lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	if lstater, ok := fs.(afero.Lstater); ok {
		info, _, err := lstater.LstatIfPossible(path)
		return info, err
	}
	return fs.Stat(path)
}

// CheckOverlap fails with SAME_FILE when writing dst would destroy src:
// both resolve to the same location, one lies inside the other, or a link
// inside the src tree points into or above dst. It writes nothing.
func CheckOverlap(fs afero.Fs, src, dst string) error {
	if srcInfo, err := fs.Stat(src); err == nil {
		if dstInfo, err := fs.Stat(dst); err == nil && os.SameFile(srcInfo, dstInfo) {
			return sameFileError(src, dst)
		}
	}

	if !isOSBacked(fs) {
		if within(filepath.Clean(src), filepath.Clean(dst)) || within(filepath.Clean(dst), filepath.Clean(src)) {
			return sameFileError(src, dst)
		}
		return nil
	}

	realSrc, realDst := canonical(src), canonical(dst)
	if within(realSrc, realDst) || within(realDst, realSrc) {
		return sameFileError(src, dst)
	}

	info, err := os.Stat(realSrc)
	if err != nil || !info.IsDir() {
		return nil
	}
	return filepath.Walk(realSrc, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			return nil
		}
		target := canonical(path)
		if within(target, realDst) || within(realDst, target) {
			return errors.Newf(errors.ErrSameFile, "%s links into destination %s", path, dst).
				WithDetail("path", path)
		}
		return nil
	})
}

func sameFileError(src, dst string) error {
	return errors.Newf(errors.ErrSameFile, "%s and %s resolve to the same location", src, dst).
		WithDetail("source", src).
		WithDetail("destination", dst)
}

// within reports whether path equals root or lies below it.
func within(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// canonical resolves links in the longest existing prefix of path and
// appends the rest unchanged, so paths that do not exist yet still compare.
func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = filepath.Clean(path)
	}
	rest := ""
	for p := abs; ; {
		if resolved, err := filepath.EvalSymlinks(p); err == nil {
			return filepath.Join(resolved, rest)
		}
		parent := filepath.Dir(p)
		if parent == p {
			return abs
		}
		rest = filepath.Join(filepath.Base(p), rest)
		p = parent
	}
}

// isOSBacked reports whether fs, possibly behind wrappers, is the OS filesystem.
func isOSBacked(fs afero.Fs) bool {
	for {
		switch v := fs.(type) {
		case *afero.OsFs:
			return true
		case interface{ Unwrap() afero.Fs }:
			fs = v.Unwrap()
		default:
			return false
		}
	}
}
