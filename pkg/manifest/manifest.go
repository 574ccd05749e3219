// Package manifest declares which paths claudesync synchronizes.
//
// The manifest is a fixed allow-list compiled into the binary. Anything it
// does not name (credentials, history, caches, plugin state) is never read
// or written, in either direction.
package manifest

import (
	"path/filepath"
	"strings"

	"github.com/arthur-debert/claudesync/pkg/errors"
	"github.com/arthur-debert/claudesync/pkg/types"
)

const (
	// SettingsFile is the user settings file.
	SettingsFile = "settings.json"

	// HooksDir holds hook scripts.
	HooksDir = "hooks"

	// SkillsDir holds skill definitions and their helper scripts.
	SkillsDir = "skills"
)

// Manifest is an ordered, immutable list of sync items.
type Manifest struct {
	items []types.SyncItem
}

var defaultItems = []types.SyncItem{
	{RelativePath: SettingsFile, Kind: types.KindFile},
	{RelativePath: HooksDir, Kind: types.KindDirectory},
	{RelativePath: SkillsDir, Kind: types.KindDirectory},
}

// Default returns the built-in manifest shared by backup and restore.
func Default() *Manifest {
	m, err := New(defaultItems...)
	if err != nil {
		panic(err)
	}
	return m
}

// New builds a manifest from items after validating them.
func New(items ...types.SyncItem) (*Manifest, error) {
	if err := Validate(items); err != nil {
		return nil, err
	}
	copied := make([]types.SyncItem, len(items))
	copy(copied, items)
	return &Manifest{items: copied}, nil
}

// Items returns a copy of the manifest entries in order.
func (m *Manifest) Items() []types.SyncItem {
	out := make([]types.SyncItem, len(m.items))
	copy(out, m.items)
	return out
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.items)
}

// Lookup finds the entry for a relative path.
func (m *Manifest) Lookup(relPath string) (types.SyncItem, bool) {
	for _, item := range m.items {
		if item.RelativePath == relPath {
			return item, true
		}
	}
	return types.SyncItem{}, false
}

// Validate checks that every item has a known kind and a clean relative
// path that stays inside its root, and that no path is listed twice.
func Validate(items []types.SyncItem) error {
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		p := item.RelativePath
		switch {
		case p == "":
			return errors.Newf(errors.ErrInvalidInput, "manifest item %d has an empty path", i)
		case filepath.IsAbs(p) || strings.HasPrefix(p, "/"):
			return errors.Newf(errors.ErrInvalidInput, "manifest path %q must be relative", p)
		case filepath.Clean(p) != p:
			return errors.Newf(errors.ErrInvalidInput, "manifest path %q is not clean", p)
		case p == ".." || strings.HasPrefix(p, ".."+string(filepath.Separator)) || p == ".":
			return errors.Newf(errors.ErrInvalidInput, "manifest path %q escapes its root", p)
		}

		if item.Kind != types.KindFile && item.Kind != types.KindDirectory {
			return errors.Newf(errors.ErrInvalidInput, "manifest path %q has unknown kind %q", p, item.Kind)
		}

		if seen[p] {
			return errors.Newf(errors.ErrInvalidInput, "manifest path %q is listed twice", p)
		}
		seen[p] = true
	}
	return nil
}
