// Package blender runs one unit of work in a headless Blender subprocess and
// normalizes whatever it produces into a result.Result.
package blender

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/meshkit/blendctl/internal/assets"
	"github.com/meshkit/blendctl/internal/config"
	"github.com/meshkit/blendctl/internal/log"
	"github.com/meshkit/blendctl/internal/result"
)

const (
	// maxStderrBytes caps the amount of stderr captured from a Blender run.
	maxStderrBytes = 64 * 1024

	// terminationGracePeriod is the time we wait after SIGTERM before SIGKILL.
	terminationGracePeriod = 5 * time.Second
)

// Runner executes one headless Blender invocation per Run call. The zero value
// probes the standard candidate paths with the default timeout.
type Runner struct {
	// Candidates overrides the executable probe list. When nil, the
	// standard list ($BLENDER_PATH plus conventional install locations)
	// is resolved fresh on every Run.
	Candidates []string

	// Timeout bounds the subprocess wall clock. Zero means the default.
	Timeout time.Duration

	// GracePeriod is the SIGTERM-to-SIGKILL window. Zero means the default.
	GracePeriod time.Duration

	// Materialize resolves a script identifier to an on-disk path.
	// Defaults to assets.Materialize.
	Materialize func(name string) (string, error)
}

// NewRunner builds a Runner from configuration.
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{
		Candidates: Candidates(cfg.CandidatePaths()...),
		Timeout:    cfg.Blender.Timeout,
	}
}

// Run resolves the Blender executable, launches it in background mode against
// the named script, and classifies the outcome. Exactly one child process is
// spawned and awaited synchronously; no retry is attempted at this layer.
func (r *Runner) Run(ctx context.Context, script string, args []string) result.Result {
	runID := uuid.NewString()
	logger := log.WithRun(runID).With("component", "blender", "script", script)

	candidates := r.Candidates
	if candidates == nil {
		candidates = Candidates()
	}
	exe, err := Locate(candidates)
	if err != nil {
		logger.Error("executable resolution failed", "error", err)
		return result.Fail("%s", err)
	}

	materialize := r.Materialize
	if materialize == nil {
		materialize = assets.Materialize
	}
	scriptPath, err := materialize(script)
	if err != nil {
		logger.Error("script materialization failed", "error", err)
		return result.Fail("failed to prepare script %s: %v", script, err)
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	grace := r.GracePeriod
	if grace <= 0 {
		grace = terminationGracePeriod
	}

	// Arguments after the explicit separator belong to the script, not to
	// Blender's own argument parser.
	cmdArgs := append([]string{"--background", "--python", scriptPath, "--"}, args...)
	cmd := exec.Command(exe, cmdArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Blender can leave child processes holding the output pipes; don't let
	// them stall Wait past the grace window once blender itself has exited.
	cmd.WaitDelay = grace

	logger.Debug("spawning blender", "exe", exe, "args", args, "timeout", timeout)

	if err := cmd.Start(); err != nil {
		logger.Error("failed to start blender", "error", err)
		return result.Fail("failed to start Blender: %v", err)
	}

	timeoutTimer := time.NewTimer(timeout)
	defer timeoutTimer.Stop()

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		logger.Warn("run cancelled, killing blender")
		r.terminate(cmd, waitErr, grace, logger)
		return attachStderr(result.Fail("Blender run cancelled: %v", ctx.Err()), &stderr)

	case <-timeoutTimer.C:
		logger.Warn("blender run timed out, sending SIGTERM", "timeout", timeout)
		r.terminate(cmd, waitErr, grace, logger)
		// No partial stdout is salvaged after a timeout.
		return attachStderr(result.Fail("Blender operation timed out (%s)", formatTimeout(timeout)), &stderr)

	case err := <-waitErr:
		exitCode := 0
		if err != nil {
			exitErr, ok := err.(*exec.ExitError)
			if !ok {
				logger.Error("failed to wait for blender", "error", err)
				return attachStderr(result.Fail("Blender execution failed: %v", err), &stderr)
			}
			exitCode = exitErr.ExitCode()
			logger.Warn("blender exited with non-zero status", "exit_code", exitCode)
		}

		res := result.Result{Success: exitCode == 0}
		if data, ok := result.ParseStdout(stdout.String()); ok {
			res.Data = data
		} else {
			res.Stdout = stdout.String()
		}
		logger.Info("blender run finished", "exit_code", exitCode, "structured", res.Data != nil)
		return attachStderr(res, &stderr)
	}
}

// terminate enforces the SIGTERM, grace period, SIGKILL ladder and waits for
// the child to die.
func (r *Runner) terminate(cmd *exec.Cmd, waitErr <-chan error, grace time.Duration, logger *slog.Logger) {
	if cmd.Process != nil {
		if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
			logger.Error("failed to send SIGTERM", "error", err)
		}
	}

	graceTimer := time.NewTimer(grace)
	defer graceTimer.Stop()

	select {
	case <-waitErr:
		// Exited within the grace period.
	case <-graceTimer.C:
		logger.Warn("blender did not exit after SIGTERM, sending SIGKILL")
		if cmd.Process != nil {
			if err := cmd.Process.Kill(); err != nil {
				logger.Error("failed to send SIGKILL", "error", err)
			}
		}
		<-waitErr
	}
}

func attachStderr(res result.Result, stderr *bytes.Buffer) result.Result {
	s := stderr.String()
	if len(s) > maxStderrBytes {
		s = s[:maxStderrBytes]
	}
	res.Stderr = s
	return res
}

// formatTimeout renders whole-minute timeouts the way operators read them.
func formatTimeout(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	}
	return d.String()
}
