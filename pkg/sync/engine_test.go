// pkg/sync/engine_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: afero MemMapFs via testutil
// PURPOSE: Test capture/apply semantics, per-item isolation and preconditions

package sync_test

import (
	"bytes"
	"encoding/json"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/arthur-debert/claudesync/pkg/errors"
	"github.com/arthur-debert/claudesync/pkg/manifest"
	"github.com/arthur-debert/claudesync/pkg/sync"
	"github.com/arthur-debert/claudesync/pkg/testutil"
	"github.com/arthur-debert/claudesync/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statuses(report *sync.Report) map[string]types.SyncStatus {
	out := make(map[string]types.SyncStatus, len(report.Results))
	for _, r := range report.Results {
		out[r.Item.RelativePath] = r.Status
	}
	return out
}

func capture(t *testing.T, env *testutil.SyncEnv) *sync.Report {
	t.Helper()
	report, err := sync.NewEngine(env.FS, sync.Options{}).
		Run(types.DirectionCapture, manifest.Default(), env.LiveRoot, env.MirrorRoot)
	require.NoError(t, err)
	require.NotNil(t, report)
	return report
}

func apply(t *testing.T, env *testutil.SyncEnv) *sync.Report {
	t.Helper()
	report, err := sync.NewEngine(env.FS, sync.Options{}).
		Run(types.DirectionApply, manifest.Default(), env.LiveRoot, env.MirrorRoot)
	require.NoError(t, err)
	require.NotNil(t, report)
	return report
}

func TestCapture_SettingsOnly(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Live("settings.json"), `{"theme":"dark"}`, 0644)

	report := capture(t, env)

	assert.Equal(t, `{"theme":"dark"}`, env.ReadFile(env.Mirror("settings.json")))
	assert.Equal(t, map[string]types.SyncStatus{
		"settings.json": types.StatusCopied,
		"hooks":         types.StatusSkippedMissing,
		"skills":        types.StatusSkippedMissing,
	}, statuses(report))
	assert.False(t, report.HasFailures())
	assert.Equal(t, types.DirectionCapture, report.Direction)
	assert.Equal(t, env.LiveRoot, report.Source)
	assert.Equal(t, env.MirrorRoot, report.Destination)
}

func TestRun_ResultsFollowManifestOrder(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.SeedLive()

	report := capture(t, env)

	require.Len(t, report.Results, 3)
	assert.Equal(t, "settings.json", report.Results[0].Item.RelativePath)
	assert.Equal(t, "hooks", report.Results[1].Item.RelativePath)
	assert.Equal(t, "skills", report.Results[2].Item.RelativePath)
	assert.Equal(t, env.Live("hooks"), report.Results[1].Source)
	assert.Equal(t, env.Mirror("hooks"), report.Results[1].Destination)
}

func TestCapture_ReplacesDirectories(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Live("hooks", "new.sh"), "new", 0755)
	env.WriteFile(env.Mirror("hooks", "old.sh"), "old", 0755)
	env.WriteFile(env.Mirror("hooks", "new.sh"), "outdated", 0755)

	report := capture(t, env)

	res, ok := report.Find("hooks")
	require.True(t, ok)
	assert.Equal(t, types.StatusCopied, res.Status)
	assert.False(t, env.Exists(env.Mirror("hooks", "old.sh")), "stale hook must be removed from the mirror")
	assert.Equal(t, "new", env.ReadFile(env.Mirror("hooks", "new.sh")))
}

func TestCapture_PartialConfiguration(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Live("settings.json"), `{}`, 0644)
	env.WriteFile(env.Live("hooks", "a.sh"), "a", 0755)

	report := capture(t, env)

	assert.Equal(t, types.StatusCopied, statuses(report)["settings.json"])
	assert.Equal(t, types.StatusCopied, statuses(report)["hooks"])
	assert.Equal(t, types.StatusSkippedMissing, statuses(report)["skills"])
	assert.False(t, report.HasFailures())
	assert.Equal(t, 1, report.Skipped())
	assert.Equal(t, "a", env.ReadFile(env.Mirror("hooks", "a.sh")))
}

func TestCapture_MissingLiveRootIsFatal(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Mirror("settings.json"), `{"theme":"light"}`, 0644)
	env.WriteFile(env.Mirror("hooks", "old.sh"), "old", 0755)
	before := env.Snapshot(env.MirrorRoot)

	report, err := sync.NewEngine(env.FS, sync.Options{}).
		Run(types.DirectionCapture, manifest.Default(), env.LiveRoot, env.MirrorRoot)

	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration))
	assert.Equal(t, before, env.Snapshot(env.MirrorRoot), "mirror must be untouched")
}

func TestRun_LiveRootIsAFile(t *testing.T) {
	for _, direction := range []types.Direction{types.DirectionCapture, types.DirectionApply} {
		t.Run(direction.String(), func(t *testing.T) {
			env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
			env.WriteFile(env.LiveRoot, "oops", 0644)
			env.WriteFile(env.Mirror("settings.json"), `{}`, 0644)

			_, err := sync.NewEngine(env.FS, sync.Options{}).
				Run(direction, manifest.Default(), env.LiveRoot, env.MirrorRoot)

			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration))
		})
	}
}

func TestApply_CreatesLiveRoot(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Mirror("settings.json"), `{"theme":"dark"}`, 0644)
	env.WriteFile(env.Mirror("skills", "review", "SKILL.md"), "# Review", 0644)

	report := apply(t, env)

	assert.True(t, env.Exists(env.LiveRoot))
	assert.Equal(t, `{"theme":"dark"}`, env.ReadFile(env.Live("settings.json")))
	assert.Equal(t, "# Review", env.ReadFile(env.Live("skills", "review", "SKILL.md")))
	assert.Equal(t, types.StatusSkippedMissing, statuses(report)["hooks"])
	assert.Equal(t, env.MirrorRoot, report.Source)
	assert.Equal(t, env.LiveRoot, report.Destination)
}

func TestApply_MissingMirrorSkipsEverything(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)

	report := apply(t, env)

	assert.Equal(t, 3, report.Skipped())
	assert.False(t, report.HasFailures())
}

func TestApply_LeavesUnlistedLiveFilesAlone(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.SeedLive()
	env.WriteFile(env.Mirror("settings.json"), `{"theme":"light"}`, 0644)

	apply(t, env)

	assert.Equal(t, `{"theme":"light"}`, env.ReadFile(env.Live("settings.json")))
	assert.Equal(t, `{"token":"secret"}`, env.ReadFile(env.Live(".credentials.json")))
	assert.Equal(t, "{}\n", env.ReadFile(env.Live("history.jsonl")))
	// hooks and skills are absent from the mirror, so the live copies stay.
	assert.True(t, env.Exists(env.Live("hooks", "pre-tool.sh")))
	assert.True(t, env.Exists(env.Live("skills", "review", "SKILL.md")))
}

func TestCapture_NeverCopiesUnlistedFiles(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.SeedLive()

	capture(t, env)

	assert.False(t, env.Exists(env.Mirror(".credentials.json")))
	assert.False(t, env.Exists(env.Mirror("history.jsonl")))
}

func TestRoundTrip_Idempotent(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.SeedLive()
	liveBefore := env.Snapshot(env.LiveRoot)

	capture(t, env)
	mirrorAfterCapture := env.Snapshot(env.MirrorRoot)
	for rel, content := range mirrorAfterCapture {
		assert.Equal(t, liveBefore[rel], content, "mirror %s differs from live", rel)
	}

	apply(t, env)
	assert.Equal(t, liveBefore, env.Snapshot(env.LiveRoot), "apply after capture must not change live content")

	capture(t, env)
	assert.Equal(t, mirrorAfterCapture, env.Snapshot(env.MirrorRoot), "second capture must not change the mirror")
}

func TestCapture_ModesPreserved(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.SeedLive()

	capture(t, env)

	assert.Equal(t, env.Mode(env.Live("hooks", "pre-tool.sh")), env.Mode(env.Mirror("hooks", "pre-tool.sh")))
	assert.Equal(t, env.Mode(env.Live("settings.json")), env.Mode(env.Mirror("settings.json")))
}

func TestCapture_EmptyDirectoryIsCopied(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Live("settings.json"), `{}`, 0644)
	env.Mkdir(env.Live("skills"))
	env.WriteFile(env.Mirror("skills", "stale", "SKILL.md"), "gone", 0644)

	report := capture(t, env)

	assert.Equal(t, types.StatusCopied, statuses(report)["skills"])
	assert.True(t, env.Exists(env.Mirror("skills")))
	assert.Empty(t, env.Snapshot(env.Mirror("skills")))
}

func TestRun_KindMismatchFailsItemOnly(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Live("settings.json"), `{}`, 0644)
	env.WriteFile(env.Live("hooks"), "should have been a directory", 0644)
	env.WriteFile(env.Mirror("hooks", "keep.sh"), "keep", 0755)

	report := capture(t, env)

	res, ok := report.Find("hooks")
	require.True(t, ok)
	assert.Equal(t, types.StatusFailed, res.Status)
	assert.True(t, errors.IsErrorCode(res.Err, errors.ErrKindMismatch))
	assert.Equal(t, "keep", env.ReadFile(env.Mirror("hooks", "keep.sh")))
	assert.Equal(t, types.StatusCopied, statuses(report)["settings.json"])
}

func TestRun_FailureIsIsolated(t *testing.T) {
	tests := []struct {
		name      string
		failOn    func(env *testutil.SyncEnv, fs *testutil.FailingFs)
		wantCode  errors.ErrorCode
		direction types.Direction
	}{
		{
			name: "unreadable source skills on capture",
			failOn: func(env *testutil.SyncEnv, fs *testutil.FailingFs) {
				fs.FailOn(env.Live("skills"), testutil.OpOpen)
			},
			wantCode:  errors.ErrFileAccess,
			direction: types.DirectionCapture,
		},
		{
			name: "unwritable destination skills on capture",
			failOn: func(env *testutil.SyncEnv, fs *testutil.FailingFs) {
				fs.FailOn(env.Mirror("skills"))
			},
			wantCode:  errors.ErrDirRemove,
			direction: types.DirectionCapture,
		},
		{
			name: "unstattable source skills on apply",
			failOn: func(env *testutil.SyncEnv, fs *testutil.FailingFs) {
				fs.FailOn(env.Mirror("skills"), testutil.OpStat)
			},
			wantCode:  errors.ErrFileAccess,
			direction: types.DirectionApply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
			env.SeedLive()
			// Seed the mirror from the live side so apply has content too.
			capture(t, env)

			failing := testutil.NewFailingFs(env.FS)
			tt.failOn(env, failing)

			report, err := sync.NewEngine(failing, sync.Options{}).
				Run(tt.direction, manifest.Default(), env.LiveRoot, env.MirrorRoot)
			require.NoError(t, err)

			assert.Equal(t, types.StatusCopied, statuses(report)["settings.json"])
			assert.Equal(t, types.StatusCopied, statuses(report)["hooks"])

			res, ok := report.Find("skills")
			require.True(t, ok)
			assert.Equal(t, types.StatusFailed, res.Status)
			require.Error(t, res.Err)
			assert.True(t, errors.IsErrorCode(res.Err, tt.wantCode), "got %v", res.Err)
			assert.NotEmpty(t, res.ErrorMessage())
			assert.True(t, report.HasFailures())
			assert.Equal(t, 1, report.Failed())
		})
	}
}

func TestRun_DryRun(t *testing.T) {
	t.Run("capture writes nothing", func(t *testing.T) {
		env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
		env.WriteFile(env.Live("settings.json"), `{}`, 0644)
		env.WriteFile(env.Live("hooks", "a.sh"), "a", 0755)

		report, err := sync.NewEngine(env.FS, sync.Options{DryRun: true}).
			Run(types.DirectionCapture, manifest.Default(), env.LiveRoot, env.MirrorRoot)
		require.NoError(t, err)

		assert.True(t, report.DryRun)
		assert.Equal(t, 2, report.Planned())
		assert.Equal(t, 1, report.Skipped())
		assert.Equal(t, 0, report.Copied())
		assert.False(t, env.Exists(env.MirrorRoot))
	})

	t.Run("apply does not create the live root", func(t *testing.T) {
		env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
		env.WriteFile(env.Mirror("settings.json"), `{}`, 0644)

		report, err := sync.NewEngine(env.FS, sync.Options{DryRun: true}).
			Run(types.DirectionApply, manifest.Default(), env.LiveRoot, env.MirrorRoot)
		require.NoError(t, err)

		assert.Equal(t, types.StatusPlanned, statuses(report)["settings.json"])
		assert.False(t, env.Exists(env.LiveRoot))
	})
}

func TestRun_InvalidInput(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	engine := sync.NewEngine(env.FS, sync.Options{})

	_, err := engine.Run("sideways", manifest.Default(), env.LiveRoot, env.MirrorRoot)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = engine.Run(types.DirectionCapture, nil, env.LiveRoot, env.MirrorRoot)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = engine.Run(types.DirectionApply, manifest.Default(), "", env.MirrorRoot)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfiguration))
}

func TestReport_Warnings(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.Mkdir(env.LiveRoot)

	m, err := manifest.New(
		types.SyncItem{RelativePath: "settings.json", Kind: types.KindFile, RequiredOnSource: true},
		types.SyncItem{RelativePath: "hooks", Kind: types.KindDirectory},
	)
	require.NoError(t, err)

	report, err := sync.NewEngine(env.FS, sync.Options{}).
		Run(types.DirectionCapture, m, env.LiveRoot, env.MirrorRoot)
	require.NoError(t, err)

	warnings := report.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "settings.json", warnings[0].Item.RelativePath)
	assert.False(t, report.HasFailures(), "a missing required item is a warning, not a failure")
}

func TestCapture_LiveLinksIntoMirror(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	env := testutil.NewSyncEnv(t, testutil.EnvIsolated)
	env.WriteFile(env.Mirror("settings.json"), `{"theme":"dark"}`, 0644)
	env.WriteFile(env.Mirror("hooks", "a.sh"), "#!/bin/sh\n", 0755)
	env.Mkdir(env.LiveRoot)
	require.NoError(t, os.Symlink(env.Mirror("settings.json"), env.Live("settings.json")))
	require.NoError(t, os.Symlink(env.Mirror("hooks"), env.Live("hooks")))

	for _, dryRun := range []bool{true, false} {
		report, err := sync.NewEngine(env.FS, sync.Options{DryRun: dryRun}).
			Run(types.DirectionCapture, manifest.Default(), env.LiveRoot, env.MirrorRoot)
		require.NoError(t, err)

		assert.Equal(t, map[string]types.SyncStatus{
			"settings.json": types.StatusFailed,
			"hooks":         types.StatusFailed,
			"skills":        types.StatusSkippedMissing,
		}, statuses(report))
		for _, path := range []string{"settings.json", "hooks"} {
			res, ok := report.Find(path)
			require.True(t, ok)
			assert.True(t, errors.IsErrorCode(res.Err, errors.ErrSameFile), path)
		}
	}

	assert.Equal(t, `{"theme":"dark"}`, env.ReadFile(env.Mirror("settings.json")))
	assert.Equal(t, "#!/bin/sh\n", env.ReadFile(env.Mirror("hooks", "a.sh")))
}

func TestApply_LiveLinksIntoMirror(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	env := testutil.NewSyncEnv(t, testutil.EnvIsolated)
	env.WriteFile(env.Mirror("settings.json"), `{"theme":"dark"}`, 0644)
	env.WriteFile(env.Mirror("hooks", "a.sh"), "#!/bin/sh\n", 0755)
	env.Mkdir(env.LiveRoot)
	require.NoError(t, os.Symlink(env.Mirror("settings.json"), env.Live("settings.json")))
	require.NoError(t, os.Symlink(env.Mirror("hooks"), env.Live("hooks")))

	report := apply(t, env)

	assert.Equal(t, types.StatusFailed, statuses(report)["settings.json"])
	assert.Equal(t, types.StatusFailed, statuses(report)["hooks"])
	assert.Equal(t, `{"theme":"dark"}`, env.ReadFile(env.Mirror("settings.json")))
	assert.Equal(t, "#!/bin/sh\n", env.ReadFile(env.Mirror("hooks", "a.sh")))
}

func TestRun_LogLevels(t *testing.T) {
	env := testutil.NewSyncEnv(t, testutil.EnvMemoryOnly)
	env.WriteFile(env.Live("settings.json"), `{}`, 0644)

	m, err := manifest.New(
		types.SyncItem{RelativePath: "settings.json", Kind: types.KindFile},
		types.SyncItem{RelativePath: "hooks", Kind: types.KindDirectory},
		types.SyncItem{RelativePath: "skills", Kind: types.KindDirectory, RequiredOnSource: true},
	)
	require.NoError(t, err)

	var buf bytes.Buffer
	engine := sync.NewEngine(env.FS, sync.Options{})
	engine.SetLogger(zerolog.New(&buf))
	_, err = engine.Run(types.DirectionCapture, m, env.LiveRoot, env.MirrorRoot)
	require.NoError(t, err)

	levels := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &event))
		if item, ok := event["item"].(string); ok {
			levels[item] = event["level"].(string)
		}
	}

	assert.Equal(t, map[string]string{
		"settings.json": "debug",
		"hooks":         "info",
		"skills":        "warn",
	}, levels)
}
