// provision.go implements the "spillctl provision" command.
//
// The command runs the fixed host provisioning sequence: container
// runtime, compose orchestrator, NVIDIA container toolkit, GPU smoke test.
// It prints a structured per-step report and exits non-zero only when a
// fatal step failed; an advisory failure (the GPU smoke test on a
// GPU-less host) is reported but does not change the exit code.

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omersajid9/spill/internal/model"
	"github.com/omersajid9/spill/internal/provision"
)

// NewProvisionCommand creates the "provision" cobra command.
func NewProvisionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Install the container runtime, orchestrator and GPU bridge on this host",
		Long: `Provision this host to run GPU-enabled containers.

The sequence, in required order:
  1. refresh the package index
  2. install the docker runtime package
  3. add the invoking user to the docker group (takes effect next login)
  4. install the docker-compose binary for this OS/architecture
  5. smoke-test the compose binary (advisory)
  6. register the NVIDIA container toolkit repository for this distribution
  7. install the toolkit and restart the docker service
  8. run a GPU-enabled diagnostic container (advisory)

Fatal step failures abort the sequence with a non-zero exit. The GPU
smoke test is advisory: a host without a GPU still provisions
successfully for CPU-only work.

Running provision twice is safe — steps whose precondition is already
met report "satisfied" and mutate nothing.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runProvision(cmd)
		},
	}

	return cmd
}

// runProvision executes the sequence and reports results. The error
// returned to cobra (and thus the exit code) comes from the sequence
// runner, which only fails on fatal steps.
func runProvision(cmd *cobra.Command) error {
	p := provision.New(
		provision.ExecRunner{},
		provision.NewHTTPDownloader(),
		provision.DockerGPUProber{},
		provision.Options{},
	)

	VerboseLog("Starting host provisioning sequence (%d steps)", len(p.Steps()))

	results, runErr := p.Run(cmd.Context())

	printProvisionResults(results)

	// runErr is nil when only advisory steps failed; the results above
	// already carry their diagnostics.
	return runErr
}

// printProvisionResults outputs the per-step report in text or JSON.
func printProvisionResults(results []model.StepResult) {
	if IsJSONOutput() {
		printProvisionResultsJSON(results)
		return
	}

	for _, r := range results {
		marker := " ok "
		switch r.Status {
		case model.StepSatisfied:
			marker = "sat "
		case model.StepFailed:
			marker = "FAIL"
			if r.Criticality == model.CriticalityAdvisory {
				marker = "warn"
			}
		case model.StepSkipped:
			marker = "skip"
		}

		if r.Message != "" {
			fmt.Printf("[%s] %-22s %s\n", marker, r.Step, r.Message)
		} else {
			fmt.Printf("[%s] %s\n", marker, r.Step)
		}
	}

	state := provision.StateFromResults(results)
	fmt.Println()
	if state.RuntimeInstalled && state.OrchestratorPresent && state.GPUBridgeInstalled {
		if state.GPUVerified {
			fmt.Println("Host provisioned; GPU access verified.")
		} else {
			fmt.Println("Host provisioned for CPU-only work; GPU access not verified.")
		}
	}
}

// printProvisionResultsJSON outputs the step results and derived host
// state as structured JSON.
func printProvisionResultsJSON(results []model.StepResult) {
	payload := struct {
		Steps []model.StepResult `json:"steps"`
		State model.HostState    `json:"state"`
	}{
		Steps: results,
		State: provision.StateFromResults(results),
	}

	data, _ := json.MarshalIndent(payload, "", "  ")
	fmt.Println(string(data))
}
