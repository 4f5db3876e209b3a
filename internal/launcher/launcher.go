// Package launcher spawns the external test-runner for a claimed
// schedule. The runner is an opaque child process: strontium only
// passes through execution options, enforces the wall-clock timeout,
// and interprets the exit code.
package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/strontium-cloud/strontium/internal/models"
	"github.com/strontium-cloud/strontium/pkg/jsonmap"
	"github.com/strontium-cloud/strontium/pkg/log"
)

// Result captures one finished (or killed) runner invocation.
type Result struct {
	Status        models.RunStatus
	ExitCode      int
	Stdout        string
	Stderr        string
	StartedAt     time.Time
	FinishedAt    time.Time
	ArtifactsPath string
}

// Launcher is the injectable spawn-with-timeout capability, so the
// worker can be exercised in tests without running a real suite.
type Launcher interface {
	Run(ctx context.Context, sched *models.Schedule) (*Result, error)
}

// ProcessLauncher runs the configured runner command as a child
// process in its own process group.
type ProcessLauncher struct {
	command      string
	timeout      time.Duration
	excerptBytes int
	artifactsDir string
}

func NewProcessLauncher(command string, timeout time.Duration, excerptBytes int, artifactsDir string) *ProcessLauncher {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	if excerptBytes <= 0 {
		excerptBytes = 4096
	}

	return &ProcessLauncher{
		command:      command,
		timeout:      timeout,
		excerptBytes: excerptBytes,
		artifactsDir: artifactsDir,
	}
}

// Run executes the runner for one schedule. A run that outlives its
// timeout is force-killed (SIGKILL on the whole process group, never
// a graceful signal) and reported with the distinct timeout status so
// hung suites are never conflated with broken ones. Context
// cancellation also kills the process group and returns the context
// error.
func (l *ProcessLauncher) Run(ctx context.Context, sched *models.Schedule) (*Result, error) {
	var (
		stdout = newExcerptWriter(l.excerptBytes)
		stderr = newExcerptWriter(l.excerptBytes)
	)

	started := time.Now().UTC()
	artifacts := filepath.Join(
		l.artifactsDir,
		sched.ID.String(),
		started.Format("20060102T150405Z"),
	)

	cmd := exec.Command(l.command, l.args(sched, artifacts)...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	// Own process group, so a timeout kill reaps every descendant
	// the runner forked, not just the direct child.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to spawn runner %q: %w", l.command, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	timer := time.NewTimer(l.timeoutFor(sched))
	defer timer.Stop()

	result := &Result{
		StartedAt:     started,
		ArtifactsPath: artifacts,
	}

	select {
	case err := <-done:
		result.FinishedAt = time.Now().UTC()
		result.ExitCode = exitCode(err)
		if result.ExitCode == 0 {
			result.Status = models.RunStatusCompleted
		} else {
			result.Status = models.RunStatusFailed
		}

	case <-timer.C:
		killGroup(cmd)
		<-done
		result.FinishedAt = time.Now().UTC()
		result.Status = models.RunStatusTimeout
		result.ExitCode = -1
		log.Warn("runner timed out",
			"schedule_id", sched.ID,
			"suite_id", sched.SuiteID,
			"timeout", l.timeoutFor(sched),
		)

	case <-ctx.Done():
		killGroup(cmd)
		<-done
		return nil, ctx.Err()
	}

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	return result, nil
}

// args flattens the schedule's opaque execution options into stable
// runner flags.
func (l *ProcessLauncher) args(sched *models.Schedule, artifacts string) []string {
	args := []string{
		"--suite", sched.SuiteID,
		"--artifacts", artifacts,
	}

	opts := jsonmap.ToStringMap(sched.ExecutionOptions)
	keys := make([]string, 0, len(opts))
	for key := range opts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		args = append(args, "--opt", key+"="+opts[key])
	}

	return args
}

// timeoutFor honors a per-schedule timeout_ms execution option over
// the configured default.
func (l *ProcessLauncher) timeoutFor(sched *models.Schedule) time.Duration {
	ms, ok := jsonmap.Int64(sched.ExecutionOptions, "timeout_ms")
	if !ok || ms <= 0 {
		return l.timeout
	}
	return time.Duration(ms) * time.Millisecond
}

func killGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL); err != nil {
		// Fall back to the direct child if the group is already gone.
		_ = cmd.Process.Kill()
	}
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
