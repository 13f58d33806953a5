package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omersajid9/spill/internal/model"
)

// requireDescriptorError asserts err is a CLIError with the descriptor
// exit code — validation failures must map to their own exit code.
func requireDescriptorError(t *testing.T, err error) *model.CLIError {
	t.Helper()
	require.Error(t, err)
	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitDescriptorInvalid, cliErr.Code)
	return cliErr
}

// TestDefaultSpec_Validates verifies the shipped descriptor honors every
// invariant it is supposed to enforce on others.
func TestDefaultSpec_Validates(t *testing.T) {
	spec := DefaultSpec()
	require.NoError(t, spec.Validate())

	// The launch contract constants.
	require.Len(t, spec.Ports, 1)
	assert.Equal(t, 7860, spec.Ports[0].Host)
	assert.Equal(t, 7860, spec.Ports[0].Container)
	assert.Equal(t, "0.0.0.0", spec.Environment["GRADIO_SERVER_NAME"])
	assert.Equal(t, "all", spec.Environment["NVIDIA_VISIBLE_DEVICES"])
	assert.Equal(t, RestartUnlessStopped, spec.Restart)
	assert.Equal(t, "docker/Dockerfile", spec.Build.Dockerfile)

	// Broad mount before narrow mount: order is the precedence.
	require.Len(t, spec.Volumes, 2)
	assert.Equal(t, "/app", spec.Volumes[0].Target)
	assert.Equal(t, "/app/clipping", spec.Volumes[1].Target)
}

// TestValidate_GPUReservation covers the exactly-one capability contract.
func TestValidate_GPUReservation(t *testing.T) {
	t.Run("missing reservation", func(t *testing.T) {
		spec := DefaultSpec()
		spec.GPU = nil
		err := requireDescriptorError(t, spec.Validate())
		assert.Contains(t, err.Message, "GPU reservation")
	})

	t.Run("no gpu capability", func(t *testing.T) {
		spec := DefaultSpec()
		spec.GPU.Capabilities = []string{"compute"}
		requireDescriptorError(t, spec.Validate())
	})

	t.Run("duplicate gpu capability", func(t *testing.T) {
		spec := DefaultSpec()
		spec.GPU.Capabilities = []string{"gpu", "gpu"}
		requireDescriptorError(t, spec.Validate())
	})

	t.Run("capped device count", func(t *testing.T) {
		// No sharing policy exists, so a capped count must be rejected
		// rather than silently honored.
		spec := DefaultSpec()
		spec.GPU.Count = 1
		requireDescriptorError(t, spec.Validate())
	})

	t.Run("missing driver", func(t *testing.T) {
		spec := DefaultSpec()
		spec.GPU.Driver = ""
		requireDescriptorError(t, spec.Validate())
	})
}

// TestValidate_Ports verifies the single-entry-point invariant.
func TestValidate_Ports(t *testing.T) {
	spec := DefaultSpec()
	spec.Ports = append(spec.Ports, PortBinding{Host: 8080, Container: 8080})
	err := requireDescriptorError(t, spec.Validate())
	assert.Contains(t, err.Message, "exactly one port binding")

	spec.Ports = nil
	requireDescriptorError(t, spec.Validate())

	spec.Ports = []PortBinding{{Host: 0, Container: 7860}}
	requireDescriptorError(t, spec.Validate())

	spec.Ports = []PortBinding{{Host: 7860, Container: 70000}}
	requireDescriptorError(t, spec.Validate())
}

// TestValidate_Mounts verifies mount targets must be absolute container
// paths and sources non-empty.
func TestValidate_Mounts(t *testing.T) {
	spec := DefaultSpec()
	spec.Volumes = []Mount{{Source: ".", Target: "app"}}
	requireDescriptorError(t, spec.Validate())

	spec.Volumes = []Mount{{Source: "", Target: "/app"}}
	requireDescriptorError(t, spec.Validate())
}

// TestValidate_RestartAndEnv covers the remaining field checks.
func TestValidate_RestartAndEnv(t *testing.T) {
	spec := DefaultSpec()
	spec.Restart = "sometimes"
	requireDescriptorError(t, spec.Validate())

	spec = DefaultSpec()
	spec.Environment["BAD KEY"] = "x"
	requireDescriptorError(t, spec.Validate())

	spec = DefaultSpec()
	spec.Name = "Spill App"
	requireDescriptorError(t, spec.Validate())
}

// TestEntryPort returns the container side of the single binding.
func TestEntryPort(t *testing.T) {
	assert.Equal(t, 7860, DefaultSpec().EntryPort())
	assert.Equal(t, 0, (&Spec{}).EntryPort())
}
