// pkg/testutil/environment.go
// DEPENDENCIES: afero
// PURPOSE: Build synthetic live and mirror roots for sync tests

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in a temp directory
)

// SyncEnv holds a live root and a project with its mirror root.
type SyncEnv struct {
	FS          afero.Fs
	Home        string
	LiveRoot    string
	ProjectRoot string
	MirrorRoot  string
	Type        EnvType

	t *testing.T
}

// NewSyncEnv creates an environment. Neither root is created; tests decide
// which side exists. EnvIsolated also points HOME at the temp directory.
func NewSyncEnv(t *testing.T, envType EnvType) *SyncEnv {
	t.Helper()

	env := &SyncEnv{t: t, Type: envType}

	switch envType {
	case EnvMemoryOnly:
		env.FS = afero.NewMemMapFs()
		env.Home = "/home/test"
	case EnvIsolated:
		env.FS = afero.NewOsFs()
		env.Home = filepath.Join(t.TempDir(), "home")
		require.NoError(t, os.MkdirAll(env.Home, 0755))
		t.Setenv("HOME", env.Home)
		t.Setenv("USERPROFILE", env.Home)
		t.Setenv("XDG_STATE_HOME", filepath.Join(env.Home, ".local", "state"))
		t.Setenv("XDG_CONFIG_HOME", filepath.Join(env.Home, ".config"))
	}

	env.LiveRoot = filepath.Join(env.Home, ".claude")
	env.ProjectRoot = filepath.Join(env.Home, "src", "dotclaude")
	env.MirrorRoot = filepath.Join(env.ProjectRoot, "config")

	return env
}

// Live returns an absolute path under the live root
func (e *SyncEnv) Live(rel ...string) string {
	return filepath.Join(append([]string{e.LiveRoot}, rel...)...)
}

// Mirror returns an absolute path under the mirror root
func (e *SyncEnv) Mirror(rel ...string) string {
	return filepath.Join(append([]string{e.MirrorRoot}, rel...)...)
}

// WriteFile writes content at path, creating parents.
func (e *SyncEnv) WriteFile(path, content string, perm os.FileMode) {
	e.t.Helper()
	require.NoError(e.t, e.FS.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(e.t, afero.WriteFile(e.FS, path, []byte(content), perm))
	// WriteFile does not change the mode of an existing file.
	require.NoError(e.t, e.FS.Chmod(path, perm))
}

// Mkdir creates a directory and its parents.
func (e *SyncEnv) Mkdir(path string) {
	e.t.Helper()
	require.NoError(e.t, e.FS.MkdirAll(path, 0755))
}

// ReadFile returns the content at path, failing the test if it is unreadable.
func (e *SyncEnv) ReadFile(path string) string {
	e.t.Helper()
	data, err := afero.ReadFile(e.FS, path)
	require.NoError(e.t, err)
	return string(data)
}

// Exists reports whether path exists.
func (e *SyncEnv) Exists(path string) bool {
	e.t.Helper()
	ok, err := afero.Exists(e.FS, path)
	require.NoError(e.t, err)
	return ok
}

// Mode returns the permission bits at path.
func (e *SyncEnv) Mode(path string) os.FileMode {
	e.t.Helper()
	info, err := e.FS.Stat(path)
	require.NoError(e.t, err)
	return info.Mode().Perm()
}

// Snapshot returns relative path -> content for every regular file under
// root. Directories appear with an empty-string value and a trailing slash.
func (e *SyncEnv) Snapshot(root string) map[string]string {
	e.t.Helper()
	out := make(map[string]string)
	exists, err := afero.DirExists(e.FS, root)
	require.NoError(e.t, err)
	if !exists {
		return out
	}
	err = afero.Walk(e.FS, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			out[rel+"/"] = ""
			return nil
		}
		data, err := afero.ReadFile(e.FS, path)
		if err != nil {
			return err
		}
		out[rel] = string(data)
		return nil
	})
	require.NoError(e.t, err)
	return out
}

// SeedLive writes a typical live configuration: settings, two hooks, one
// skill with a helper script, and files that must never be synced.
func (e *SyncEnv) SeedLive() {
	e.t.Helper()
	e.WriteFile(e.Live("settings.json"), `{"theme":"dark"}`, 0644)
	e.WriteFile(e.Live("hooks", "pre-tool.sh"), "#!/bin/sh\nexit 0\n", 0755)
	e.WriteFile(e.Live("hooks", "notify.sh"), "#!/bin/sh\necho done\n", 0755)
	e.WriteFile(e.Live("skills", "review", "SKILL.md"), "# Review\n", 0644)
	e.WriteFile(e.Live("skills", "review", "scripts", "fetch.py"), "#!/usr/bin/env python3\nprint('ok')\n", 0755)
	e.WriteFile(e.Live(".credentials.json"), `{"token":"secret"}`, 0600)
	e.WriteFile(e.Live("history.jsonl"), "{}\n", 0644)
}
