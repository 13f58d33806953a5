package docker

import (
	"time"
)

// Label key constants define the Docker label keys applied to the spill
// service container. Labels are the discovery mechanism for `spillctl
// status` — there is no external state file.
//
// All keys share the "spill." prefix to namespace them and avoid
// collisions with labels set by other tools (Docker Compose, etc.).
const (
	// LabelPrefix is the common prefix for all spillctl labels.
	LabelPrefix = "spill."

	// LabelManagedBy identifies containers managed by spillctl.
	// This is the primary label used for filtering and discovery.
	// Key: "spill.managed-by", Value: always "spillctl".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelService stores the compose service name.
	// Key: "spill.service", Value: service name (e.g., "spill").
	LabelService = LabelPrefix + "service"

	// LabelLaunchedAt stores the RFC3339 timestamp of the last `up`.
	LabelLaunchedAt = LabelPrefix + "launched-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
// All containers launched by this CLI are tagged with this value,
// enabling discovery via Docker API label filters.
const ManagedByValue = "spillctl"

// BuildLabels constructs the Docker label map written into the rendered
// compose file for the service. The launch timestamp is normalized to
// UTC before formatting.
func BuildLabels(serviceName string, launchedAt time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy:  ManagedByValue,
		LabelService:    serviceName,
		LabelLaunchedAt: launchedAt.UTC().Format(time.RFC3339),
	}
}
