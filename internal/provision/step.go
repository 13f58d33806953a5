// step.go defines the provisioning step machine.
//
// The provisioner is a strictly sequential, single-threaded sequence of
// named steps. Each step declares its criticality up front: a fatal step's
// failure aborts the run and marks every remaining step skipped, while an
// advisory step's failure is recorded and the run continues. The sequence
// produces a structured result per step rather than relying on the process
// exit code alone, which is what makes the mixed fatal/advisory policy
// auditable.

package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/omersajid9/spill/internal/model"
)

// StepFunc performs one provisioning step. On success it returns the
// resulting status (StepOK for a mutation, StepSatisfied for an
// already-met precondition) and an optional detail message. A non-nil
// error marks the step failed; the message may still carry command output.
type StepFunc func(ctx context.Context) (model.StepStatus, string, error)

// Step is one named state in the provisioning sequence.
type Step struct {
	// Name identifies the step in results and error messages.
	Name string

	// Criticality is the step's declared failure policy.
	Criticality model.Criticality

	// Run executes the step.
	Run StepFunc
}

// RunSequence executes steps strictly in order and returns a result for
// every step. No step starts before the previous one completed — later
// steps assume the binaries installed by earlier ones exist.
//
// On a fatal step failure the remaining steps are recorded as skipped and
// the returned error is a CLIError naming the failed step. Advisory
// failures never produce an error; their results carry the diagnostic.
// Context cancellation is treated as a fatal failure of the step it
// interrupted (there is no rollback — partial state is the operator's to
// undo, as the result list documents exactly how far the run got).
func RunSequence(ctx context.Context, steps []Step) ([]model.StepResult, error) {
	results := make([]model.StepResult, 0, len(steps))
	var fatalErr error

	for _, step := range steps {
		if fatalErr != nil {
			results = append(results, model.StepResult{
				Step:        step.Name,
				Status:      model.StepSkipped,
				Criticality: step.Criticality,
				Message:     "skipped: earlier fatal step failed",
			})
			continue
		}

		status, message, err := step.Run(ctx)
		if err != nil {
			if message == "" {
				message = err.Error()
			} else {
				message = fmt.Sprintf("%s: %v", message, err)
			}
			results = append(results, model.StepResult{
				Step:        step.Name,
				Status:      model.StepFailed,
				Criticality: step.Criticality,
				Message:     message,
			})

			if step.Criticality == model.CriticalityFatal {
				fatalErr = fatalStepError(step.Name, err)
			}
			continue
		}

		results = append(results, model.StepResult{
			Step:        step.Name,
			Status:      status,
			Criticality: step.Criticality,
			Message:     message,
		})
	}

	return results, fatalErr
}

// fatalStepError wraps a fatal step failure in a CLIError naming the step.
// An unsupported-platform failure keeps its dedicated exit code so scripts
// can distinguish "wrong host" from "command failed".
func fatalStepError(stepName string, err error) error {
	code := model.ExitProvisionFailed
	if errors.Is(err, ErrUnsupportedPlatform) {
		code = model.ExitUnsupportedPlatform
	}
	return model.WrapCLIError(code, fmt.Sprintf("provisioning step %q failed", stepName), err)
}

// StateFromResults derives the HostState summary from a run's results.
// A step counts as established when it ran (ok) or was already satisfied.
func StateFromResults(results []model.StepResult) model.HostState {
	established := func(name string) bool {
		for _, r := range results {
			if r.Step == name {
				return r.Status == model.StepOK || r.Status == model.StepSatisfied
			}
		}
		return false
	}

	return model.HostState{
		RuntimeInstalled:    established(StepInstallDocker),
		OrchestratorPresent: established(StepInstallCompose),
		GPUBridgeInstalled:  established(StepInstallToolkit),
		GPUVerified:         established(StepGPUSmokeTest),
	}
}
