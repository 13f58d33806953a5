package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepStatus_IsValid(t *testing.T) {
	for _, s := range []StepStatus{StepOK, StepSatisfied, StepFailed, StepSkipped} {
		assert.True(t, s.IsValid(), "expected %q to be valid", s)
	}
	assert.False(t, StepStatus("pending").IsValid())
	assert.False(t, StepStatus("").IsValid())
}

func TestStepResult_String(t *testing.T) {
	r := StepResult{Step: "install-docker", Status: StepSatisfied}
	assert.Equal(t, "install-docker: satisfied", r.String())

	r.Message = "docker.io already installed"
	assert.Equal(t, "install-docker: satisfied (docker.io already installed)", r.String())
}

func TestCLIError_Error(t *testing.T) {
	plain := NewCLIError(ExitProvisionFailed, "step apt-update failed")
	assert.Equal(t, "step apt-update failed", plain.Error())
	assert.Equal(t, ExitProvisionFailed, plain.Code)
	assert.NoError(t, plain.Unwrap())

	inner := errors.New("exit status 100")
	wrapped := WrapCLIError(ExitProvisionFailed, "step apt-update failed", inner)
	assert.Equal(t, "step apt-update failed: exit status 100", wrapped.Error())
	assert.Equal(t, inner, wrapped.Unwrap())
}

// TestCLIError_ErrorsAs verifies the error can be recovered through a
// wrapping chain, which is how Execute extracts the exit code.
func TestCLIError_ErrorsAs(t *testing.T) {
	err := fmt.Errorf("provision: %w",
		WrapCLIError(ExitUnsupportedPlatform, "no compose asset", errors.New("linux/riscv64")))

	var cliErr *CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, ExitUnsupportedPlatform, cliErr.Code)
}

func TestValidateEnvKey(t *testing.T) {
	assert.NoError(t, ValidateEnvKey("NVIDIA_VISIBLE_DEVICES"))
	assert.NoError(t, ValidateEnvKey("GRADIO_SERVER_NAME"))

	for _, key := range []string{"", "FOO=BAR", "FOO BAR", "FOO\tBAR"} {
		assert.Error(t, ValidateEnvKey(key), "expected %q to be rejected", key)
	}
}
