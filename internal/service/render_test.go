package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// renderedService unmarshals the generated YAML back into a generic map
// and returns the single service definition.
func renderedService(t *testing.T, data []byte, name string) map[string]interface{} {
	t.Helper()

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &doc))

	services, ok := doc["services"].(map[string]interface{})
	require.True(t, ok, "document must have a services map")
	require.Len(t, services, 1, "exactly one service is rendered")

	svc, ok := services[name].(map[string]interface{})
	require.True(t, ok, "service %q must be present", name)
	return svc
}

// TestRender_ComposeContract verifies the rendered file carries every
// field the orchestrator contract requires: the named build file, the
// single port binding, the ordered volumes, environment, restart policy,
// and the GPU device reservation.
func TestRender_ComposeContract(t *testing.T) {
	spec := DefaultSpec()
	labels := map[string]string{"spill.managed-by": "spillctl"}

	data, err := Render(spec, labels)
	require.NoError(t, err)

	svc := renderedService(t, data, "spill")

	// The orchestrator must use the named build file, not a default
	// root-level Dockerfile.
	build := svc["build"].(map[string]interface{})
	assert.Equal(t, ".", build["context"])
	assert.Equal(t, "docker/Dockerfile", build["dockerfile"])

	assert.Equal(t, []interface{}{"7860:7860"}, svc["ports"])

	// Volume order is the precedence order and must survive rendering.
	assert.Equal(t, []interface{}{".:/app", "./clipping:/app/clipping"}, svc["volumes"])

	env := svc["environment"].([]interface{})
	assert.Contains(t, env, "GRADIO_SERVER_NAME=0.0.0.0")
	assert.Contains(t, env, "NVIDIA_VISIBLE_DEVICES=all")

	assert.Equal(t, "unless-stopped", svc["restart"])

	renderedLabels := svc["labels"].(map[string]interface{})
	assert.Equal(t, "spillctl", renderedLabels["spill.managed-by"])
}

// TestRender_GPUReservation verifies exactly one device reservation with
// the uncapped count and the gpu capability.
func TestRender_GPUReservation(t *testing.T) {
	data, err := Render(DefaultSpec(), nil)
	require.NoError(t, err)

	svc := renderedService(t, data, "spill")

	deploy := svc["deploy"].(map[string]interface{})
	resources := deploy["resources"].(map[string]interface{})
	reservations := resources["reservations"].(map[string]interface{})
	devices := reservations["devices"].([]interface{})
	require.Len(t, devices, 1, "exactly one GPU capability reservation")

	device := devices[0].(map[string]interface{})
	assert.Equal(t, "nvidia", device["driver"])
	assert.Equal(t, "all", device["count"], "reservation must have no device-count cap")
	assert.Equal(t, []interface{}{"gpu"}, device["capabilities"])
}

// TestRender_Header verifies the generated-file warning so an operator
// does not hand-edit a file the next up will overwrite.
func TestRender_Header(t *testing.T) {
	data, err := Render(DefaultSpec(), nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), "# Auto-generated by spillctl"))
	assert.Contains(t, string(data), "DO NOT EDIT")
}

// TestRender_Deterministic verifies two renders of the same spec are
// byte-identical (environment keys are sorted).
func TestRender_Deterministic(t *testing.T) {
	spec := DefaultSpec()
	spec.Environment["AAA"] = "1"
	spec.Environment["ZZZ"] = "2"

	first, err := Render(spec, nil)
	require.NoError(t, err)
	second, err := Render(spec, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// TestDeviceCount maps the sentinel to the compose literal.
func TestDeviceCount(t *testing.T) {
	assert.Equal(t, "all", deviceCount(AllGPUs))
	assert.Equal(t, "2", deviceCount(2))
}
