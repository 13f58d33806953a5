package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omersajid9/spill/internal/service"
)

// TestFormatUpSummary verifies the launch summary names the host-side
// URL, the container entry port, the non-default build file, the restart
// policy, and the GPU reservation.
func TestFormatUpSummary(t *testing.T) {
	got := formatUpSummary(service.DefaultSpec())

	assert.Contains(t, got, `Started service "spill"`)
	assert.Contains(t, got, "http://localhost:7860")
	assert.Contains(t, got, "container port 7860")
	assert.Contains(t, got, "docker/Dockerfile")
	assert.Contains(t, got, "unless-stopped")
	assert.Contains(t, got, `capability "gpu"`)
}

// TestFormatUpSummary_OverriddenHostPort verifies the summary follows the
// descriptor when the host port differs from the container port.
func TestFormatUpSummary_OverriddenHostPort(t *testing.T) {
	spec := service.DefaultSpec()
	spec.Ports = []service.PortBinding{{Host: 17860, Container: 7860}}

	got := formatUpSummary(spec)

	assert.Contains(t, got, "http://localhost:17860")
	assert.Contains(t, got, "container port 7860")
}
