// status_test.go contains unit tests for the pure formatting functions
// used by the status command output.
//
// These tests verify data transformation logic without requiring a Docker
// daemon or any external dependencies.

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omersajid9/spill/internal/docker"
	"github.com/omersajid9/spill/internal/model"
)

// TestFormatStatusEntry verifies one container renders as a text block
// with the short ID, name, state, and the management-label details.
func TestFormatStatusEntry(t *testing.T) {
	tests := []struct {
		name      string
		container model.ContainerInfo
		contains  []string
		excludes  []string
	}{
		{
			name: "fully labeled container",
			container: model.ContainerInfo{
				ContainerID:   "abcdef0123456789abcdef",
				ContainerName: "spill-spill-1",
				Status:        "running",
				Labels: map[string]string{
					docker.LabelService:    "spill",
					docker.LabelLaunchedAt: "2026-08-29T10:00:00Z",
				},
			},
			contains: []string{
				"abcdef012345", // 12-char short ID
				"spill-spill-1",
				"running",
				"service: spill",
				"launched: 2026-08-29T10:00:00Z",
			},
			excludes: []string{"abcdef0123456789abcdef"},
		},
		{
			name: "compose label fallback for service name",
			container: model.ContainerInfo{
				ContainerID:   "deadbeefdeadbeef",
				ContainerName: "spill-spill-1",
				ServiceName:   "spill",
				Status:        "exited",
			},
			contains: []string{"exited", "service: spill"},
		},
		{
			name: "bare container omits detail lines",
			container: model.ContainerInfo{
				ContainerID:   "cafecafecafe",
				ContainerName: "orphan",
				Status:        "created",
			},
			contains: []string{"cafecafecafe", "orphan", "created"},
			excludes: []string{"service:", "launched:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatStatusEntry(tt.container)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, got, s)
			}
		})
	}
}

// TestShortID verifies container IDs truncate to the 12-character form
// docker itself displays, and shorter IDs pass through unchanged.
func TestShortID(t *testing.T) {
	assert.Equal(t, "abcdef012345", shortID("abcdef0123456789"))
	assert.Equal(t, "short", shortID("short"))
	assert.Equal(t, "", shortID(""))
}
