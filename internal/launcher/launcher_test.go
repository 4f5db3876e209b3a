package launcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/strontium-cloud/strontium/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func writeRunner(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "runner.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755))
	return path
}

func testSchedule(opts datatypes.JSONMap) *models.Schedule {
	return &models.Schedule{
		ID:               uuid.New(),
		SuiteID:          "suite-42",
		SuiteName:        "checkout smoke",
		ExecutionOptions: opts,
	}
}

func TestRunSuccess(t *testing.T) {
	runner := writeRunner(t, `echo "42 passed"; echo "deprecation warning" >&2; exit 0`)
	l := NewProcessLauncher(runner, time.Minute, 4096, t.TempDir())

	result, err := l.Run(context.Background(), testSchedule(nil))
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusCompleted, result.Status)
	assert.Zero(t, result.ExitCode)
	assert.Contains(t, result.Stdout, "42 passed")
	assert.Contains(t, result.Stderr, "deprecation warning")
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
	assert.NotEmpty(t, result.ArtifactsPath)
}

func TestRunNonzeroExitIsFailure(t *testing.T) {
	runner := writeRunner(t, `echo "3 failed" >&2; exit 3`)
	l := NewProcessLauncher(runner, time.Minute, 4096, t.TempDir())

	result, err := l.Run(context.Background(), testSchedule(nil))
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusFailed, result.Status)
	assert.Equal(t, 3, result.ExitCode)
	assert.Contains(t, result.Stderr, "3 failed")
}

func TestRunTimeoutKillsProcessTree(t *testing.T) {
	runner := writeRunner(t, `sleep 30`)
	l := NewProcessLauncher(runner, 200*time.Millisecond, 4096, t.TempDir())

	start := time.Now()
	result, err := l.Run(context.Background(), testSchedule(nil))
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusTimeout, result.Status)
	assert.Equal(t, -1, result.ExitCode)
	// The kill is immediate, not "best effort eventually".
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRunPerScheduleTimeoutOverride(t *testing.T) {
	runner := writeRunner(t, `sleep 30`)
	l := NewProcessLauncher(runner, time.Hour, 4096, t.TempDir())

	result, err := l.Run(context.Background(), testSchedule(datatypes.JSONMap{
		"timeout_ms": float64(200),
	}))
	require.NoError(t, err)
	assert.Equal(t, models.RunStatusTimeout, result.Status)
}

func TestRunContextCancellation(t *testing.T) {
	runner := writeRunner(t, `sleep 30`)
	l := NewProcessLauncher(runner, time.Hour, 4096, t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	_, err := l.Run(ctx, testSchedule(nil))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunOutputExcerptIsBounded(t *testing.T) {
	runner := writeRunner(t, `i=0; while [ $i -lt 1000 ]; do echo "0123456789012345678901234567890123456789"; i=$((i+1)); done`)
	l := NewProcessLauncher(runner, time.Minute, 512, t.TempDir())

	result, err := l.Run(context.Background(), testSchedule(nil))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.Stdout), 512+len(truncationMarker))
	assert.True(t, strings.HasSuffix(result.Stdout, truncationMarker))
}

func TestRunSpawnFailure(t *testing.T) {
	l := NewProcessLauncher("/definitely/not/a/runner", time.Minute, 4096, t.TempDir())

	_, err := l.Run(context.Background(), testSchedule(nil))
	require.Error(t, err)
}

func TestArgsAreStable(t *testing.T) {
	l := NewProcessLauncher("runner", time.Minute, 4096, "artifacts")
	sched := testSchedule(datatypes.JSONMap{
		"mode":    "headless",
		"browser": "chromium",
		"retries": float64(2),
	})

	want := []string{
		"--suite", "suite-42",
		"--artifacts", "artifacts/x",
		"--opt", "browser=chromium",
		"--opt", "mode=headless",
		"--opt", "retries=2",
	}

	if diff := cmp.Diff(want, l.args(sched, "artifacts/x")); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}
}
