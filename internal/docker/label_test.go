package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildLabels verifies the management label set written into the
// rendered compose file: discovery key, service name, and a UTC RFC3339
// launch timestamp.
func TestBuildLabels(t *testing.T) {
	launched := time.Date(2026, 3, 14, 9, 30, 0, 0, time.FixedZone("JST", 9*3600))

	labels := BuildLabels("spill", launched)

	assert.Equal(t, ManagedByValue, labels[LabelManagedBy])
	assert.Equal(t, "spill", labels[LabelService])

	// Timestamps are normalized to UTC regardless of host timezone.
	assert.Equal(t, "2026-03-14T00:30:00Z", labels[LabelLaunchedAt])

	parsed, err := time.Parse(time.RFC3339, labels[LabelLaunchedAt])
	require.NoError(t, err)
	assert.True(t, parsed.Equal(launched))
}

// TestLabelKeysArePrefixed verifies every management label shares the
// spill. namespace so filters cannot collide with other tools' labels.
func TestLabelKeysArePrefixed(t *testing.T) {
	labels := BuildLabels("spill", time.Now())
	for key := range labels {
		assert.Contains(t, key, LabelPrefix)
	}
}
