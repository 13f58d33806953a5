package model

import (
	"fmt"
	"strings"
)

// Criticality classifies how a provisioning step's failure affects the
// overall sequence.
//
// The provisioner distinguishes two failure policies:
//   - Fatal: the step's failure aborts the entire sequence. Package
//     installation and repository registration fall in this class because
//     every later step assumes the earlier binaries exist.
//   - Advisory: the step's failure is reported but the sequence continues
//     and the process still exits zero. Only verification probes (the GPU
//     smoke test, the compose version check) are advisory — a host without
//     a GPU must still be provisionable for CPU-only work.
type Criticality string

const (
	// CriticalityFatal marks a step whose failure aborts the sequence.
	CriticalityFatal Criticality = "fatal"

	// CriticalityAdvisory marks a step whose failure is warn-and-continue.
	CriticalityAdvisory Criticality = "advisory"
)

// String returns the string representation of Criticality.
func (c Criticality) String() string {
	return string(c)
}

// StepStatus represents the outcome of a single provisioning step.
//
// The state transitions for a step are:
//
//	[Pending] → OK | Satisfied | Failed
//	[Pending] → Skipped (when an earlier fatal step failed)
type StepStatus string

const (
	// StepOK indicates the step mutated the host successfully.
	StepOK StepStatus = "ok"

	// StepSatisfied indicates the step's precondition was already met
	// and no mutation was attempted. Repeated provisioning runs on a
	// fully installed host report every installation step as satisfied.
	StepSatisfied StepStatus = "satisfied"

	// StepFailed indicates the step's command returned an error.
	// Whether this aborts the sequence depends on the step's Criticality.
	StepFailed StepStatus = "failed"

	// StepSkipped indicates the step never ran because an earlier
	// fatal step failed.
	StepSkipped StepStatus = "skipped"
)

// String returns the string representation of StepStatus.
func (s StepStatus) String() string {
	return string(s)
}

// IsValid checks whether the StepStatus value is one of the
// predefined valid states.
func (s StepStatus) IsValid() bool {
	switch s {
	case StepOK, StepSatisfied, StepFailed, StepSkipped:
		return true
	default:
		return false
	}
}

// StepResult is the structured outcome of one provisioning step. The
// provisioner returns a result per step rather than relying on the process
// exit code alone, so callers (and the --json output mode) can tell exactly
// which step failed and under which policy.
type StepResult struct {
	// Step is the machine-readable step name (e.g., "install-docker").
	Step string `json:"step"`

	// Status is the step outcome.
	Status StepStatus `json:"status"`

	// Criticality is the step's declared failure policy.
	Criticality Criticality `json:"criticality"`

	// Message carries human-readable detail: command output on failure,
	// the already-satisfied note, or the deferred-effect caveat.
	Message string `json:"message,omitempty"`
}

// String returns a single-line human-readable rendering of the result,
// e.g. "install-docker: satisfied (docker.io already installed)".
func (r StepResult) String() string {
	if r.Message == "" {
		return fmt.Sprintf("%s: %s", r.Step, r.Status)
	}
	return fmt.Sprintf("%s: %s (%s)", r.Step, r.Status, r.Message)
}

// HostState summarizes what the provisioner has established on the host.
// It is derived from the step results of a provisioning run; there is no
// persistent state file — the installed packages ARE the state.
type HostState struct {
	// RuntimeInstalled reports whether the container runtime package
	// is present.
	RuntimeInstalled bool `json:"runtimeInstalled"`

	// OrchestratorPresent reports whether the compose binary is on disk.
	// The version probe is advisory and does not affect this flag.
	OrchestratorPresent bool `json:"orchestratorPresent"`

	// GPUBridgeInstalled reports whether the NVIDIA container toolkit
	// is present.
	GPUBridgeInstalled bool `json:"gpuBridgeInstalled"`

	// GPUVerified reports whether the GPU smoke test passed. False does
	// not imply a broken installation — the host may simply have no GPU.
	GPUVerified bool `json:"gpuVerified"`
}

// ContainerInfo holds runtime information about a Docker container.
// This data is fetched dynamically from the Docker API, not persisted.
type ContainerInfo struct {
	// ContainerID is the unique Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// ServiceName is the Docker Compose service name, if applicable.
	ServiceName string `json:"serviceName,omitempty"`

	// Status is the Docker container status (e.g., "running", "exited").
	Status string `json:"status"`

	// Labels is the full set of Docker labels on the container,
	// including the spill.* management labels.
	Labels map[string]string `json:"labels,omitempty"`
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully. Note that
	// an advisory step failure (GPU smoke test) still yields ExitSuccess —
	// that is the warn-don't-fail contract of the provisioner.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitDescriptorInvalid indicates the service descriptor failed
	// validation (missing GPU reservation, bad port binding, etc.).
	ExitDescriptorInvalid ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitProvisionFailed indicates a fatal provisioning step failed
	// and the sequence was aborted.
	ExitProvisionFailed ExitCode = 4

	// ExitUnsupportedPlatform indicates the host's OS/architecture or
	// distribution could not be resolved to known download targets.
	ExitUnsupportedPlatform ExitCode = 5
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// ValidateEnvKey checks that an environment variable name is usable in a
// compose environment block: non-empty, no "=" and no whitespace.
func ValidateEnvKey(key string) error {
	if key == "" {
		return fmt.Errorf("environment variable name must not be empty")
	}
	if strings.ContainsAny(key, "= \t\n") {
		return fmt.Errorf("invalid environment variable name %q", key)
	}
	return nil
}
