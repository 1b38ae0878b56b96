// Package deploy runs the external configuration and certificate tools
// against provisioned instances.
//
// Both tools are Ansible playbooks launched as subprocesses. Their output is
// streamed to the operator log; the only structured result is the process
// exit code, which the deployers translate into a status transition on the
// server record.
package deploy

import (
	"context"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
)

// CommandRunner abstracts subprocess execution so deployers can be tested
// without a real ansible install.
type CommandRunner interface {
	// Run executes the command and blocks until it exits or ctx is done.
	// When ctx expires the process is killed and the context error is
	// returned.
	Run(ctx context.Context, name string, args ...string) error
}

// ExecRunner runs commands with os/exec, streaming combined output to the
// operator log.
type ExecRunner struct {
	log *zap.Logger
}

// NewExecRunner returns an ExecRunner logging through log.
func NewExecRunner(log *zap.Logger) *ExecRunner {
	return &ExecRunner{log: log}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)

	out := &zapio.Writer{Log: r.log.With(zap.String("cmd", name)), Level: zap.InfoLevel}
	defer out.Close()
	cmd.Stdout = out
	cmd.Stderr = out

	if err := cmd.Run(); err != nil {
		// The watchdog firing surfaces as the context error, not as the
		// killed process's exit status.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s exited: %w", name, err)
	}
	return nil
}
