// pkg/permissions/normalizer_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero MemMapFs via testutil
// PURPOSE: Test execute-bit restoration for hooks and skill scripts

package permissions_test

import (
	"os"
	"testing"

	"github.com/arthur-debert/claudesync/pkg/errors"
	"github.com/arthur-debert/claudesync/pkg/permissions"
	"github.com/arthur-debert/claudesync/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutableMode(t *testing.T) {
	tests := []struct {
		in   os.FileMode
		want os.FileMode
	}{
		{0644, 0755},
		{0600, 0700},
		{0640, 0750},
		{0755, 0755},
		{0400, 0500},
		{0200, 0300},
		{0000, 0100},
		{0700, 0700},
	}

	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, permissions.ExecutableMode(tt.in))
		})
	}
}

func TestNormalize_Hooks(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Live("hooks", "pre-tool.sh"), "#!/bin/sh\n", 0644)
	env.WriteFile(env.Live("hooks", "nested", "post.sh"), "#!/bin/sh\n", 0600)
	env.WriteFile(env.Live("hooks", "already.sh"), "#!/bin/sh\n", 0755)
	env.WriteFile(env.Live("hooks", "README.md"), "docs", 0644)

	n := permissions.NewNormalizer(env.FS, permissions.Options{})
	result, err := n.Normalize(env.LiveRoot)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"hooks/pre-tool.sh", "hooks/nested/post.sh"}, result.Changed)
	assert.Equal(t, 1, result.Unchanged)
	assert.Equal(t, os.FileMode(0755), env.Mode(env.Live("hooks", "pre-tool.sh")))
	assert.Equal(t, os.FileMode(0700), env.Mode(env.Live("hooks", "nested", "post.sh")))
	assert.Equal(t, os.FileMode(0644), env.Mode(env.Live("hooks", "README.md")))
}

func TestNormalize_UnreadableHookGetsOwnerExecute(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Live("hooks", "write-only.sh"), "#!/bin/sh\n", 0200)
	env.WriteFile(env.Live("hooks", "no-bits.sh"), "#!/bin/sh\n", 0000)

	result, err := permissions.NewNormalizer(env.FS, permissions.Options{}).Normalize(env.LiveRoot)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"hooks/write-only.sh", "hooks/no-bits.sh"}, result.Changed)
	assert.Equal(t, os.FileMode(0300), env.Mode(env.Live("hooks", "write-only.sh")))
	assert.Equal(t, os.FileMode(0100), env.Mode(env.Live("hooks", "no-bits.sh")))
}

func TestNormalize_CustomExtensions(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Live("hooks", "a.sh"), "x", 0644)
	env.WriteFile(env.Live("hooks", "b.BASH"), "x", 0644)
	env.WriteFile(env.Live("hooks", "c.py"), "x", 0644)

	n := permissions.NewNormalizer(env.FS, permissions.Options{ScriptExtensions: []string{"bash", ".py", " "}})
	result, err := n.Normalize(env.LiveRoot)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"hooks/b.BASH", "hooks/c.py"}, result.Changed)
	assert.Equal(t, os.FileMode(0644), env.Mode(env.Live("hooks", "a.sh")))
}

func TestNormalize_SkillScripts(t *testing.T) {
	tests := []struct {
		name    string
		shebang bool
		want    []string
	}{
		{name: "enabled", shebang: true, want: []string{"skills/review/scripts/fetch.py", "skills/review/scripts/tools/run"}},
		{name: "disabled", shebang: false, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
			env.WriteFile(env.Live("skills", "review", "SKILL.md"), "#!not really", 0644)
			env.WriteFile(env.Live("skills", "review", "scripts", "fetch.py"), "#!/usr/bin/env python3\n", 0644)
			env.WriteFile(env.Live("skills", "review", "scripts", "tools", "run"), "#!/bin/sh\n", 0644)
			env.WriteFile(env.Live("skills", "review", "scripts", "data.json"), "{}", 0644)
			env.WriteFile(env.Live("skills", "review", "scripts", "empty"), "", 0644)
			env.WriteFile(env.Live("skills", "scripts"), "#!/bin/sh\n", 0644)

			n := permissions.NewNormalizer(env.FS, permissions.Options{ShebangScripts: tt.shebang})
			result, err := n.Normalize(env.LiveRoot)
			require.NoError(t, err)

			assert.ElementsMatch(t, tt.want, result.Changed)
			assert.Equal(t, os.FileMode(0644), env.Mode(env.Live("skills", "review", "SKILL.md")))
			assert.Equal(t, os.FileMode(0644), env.Mode(env.Live("skills", "review", "scripts", "data.json")))
			assert.Equal(t, os.FileMode(0644), env.Mode(env.Live("skills", "scripts")))
		})
	}
}

func TestNormalize_MissingDirectories(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.Mkdir(env.LiveRoot)

	n := permissions.NewNormalizer(env.FS, permissions.Options{ShebangScripts: true})
	result, err := n.Normalize(env.LiveRoot)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Empty(t, result.Changed)
}

func TestNormalize_ChmodFailureContinues(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Live("hooks", "a.sh"), "x", 0644)
	env.WriteFile(env.Live("hooks", "b.sh"), "x", 0644)
	env.WriteFile(env.Live("hooks", "c.sh"), "x", 0644)

	failing := testutil.NewFailingFs(env.FS)
	failing.FailOn(env.Live("hooks", "b.sh"), testutil.OpChmod)

	n := permissions.NewNormalizer(failing, permissions.Options{})
	result, err := n.Normalize(env.LiveRoot)

	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPermission))
	assert.Contains(t, err.Error(), "b.sh")
	assert.ElementsMatch(t, []string{"hooks/a.sh", "hooks/c.sh"}, result.Changed)
	assert.Equal(t, os.FileMode(0644), env.Mode(env.Live("hooks", "b.sh")))
}

func TestNormalize_RealFilesystem(t *testing.T) {
	if !permissions.Supported() {
		t.Skip("platform has no execute bits")
	}

	env := testutil.NewSyncEnv(t, testutil.EnvIsolated)
	env.WriteFile(env.Live("hooks", "notify.sh"), "#!/bin/sh\n", 0644)

	_, err := permissions.NewNormalizer(env.FS, permissions.Options{}).Normalize(env.LiveRoot)
	require.NoError(t, err)

	info, err := os.Stat(env.Live("hooks", "notify.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0100, "owner execute bit should be set")
}
