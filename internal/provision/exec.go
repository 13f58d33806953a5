// exec.go defines the command execution boundary of the provisioner.
//
// Every host mutation goes through the CommandRunner interface so tests
// can simulate a failure at an arbitrary step and assert that no later
// step runs. The production implementation is a thin exec.CommandContext
// wrapper capturing combined output for error messages.

package provision

import (
	"context"
	"os/exec"
	"strings"
)

// CommandRunner executes a host command and returns its combined output.
// A non-nil error means the command could not run or exited non-zero.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner is the production CommandRunner backed by os/exec.
type ExecRunner struct{}

// Run executes the command, blocking until it completes. Both stdout and
// stderr are captured into the returned string — package manager errors
// land on stderr and are the part worth showing the operator.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(output)), err
}
