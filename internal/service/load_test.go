package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDescriptor writes a descriptor override file into a temp dir and
// returns its path.
func writeDescriptor(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultDescriptorFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad_MissingFileYieldsDefaults verifies the absence of an override
// file is not an error — the defaults are the complete contract.
func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	spec, err := Load(filepath.Join(t.TempDir(), DefaultDescriptorFile))
	require.NoError(t, err)
	assert.Equal(t, DefaultSpec(), spec)
}

// TestLoad_JSONCComments verifies comments and trailing commas are
// accepted — the file format exists so operators can annotate overrides.
func TestLoad_JSONCComments(t *testing.T) {
	path := writeDescriptor(t, `{
  // expose on a high port; 7860 is taken by another deployment here
  "ports": [{"host": 17860, "container": 7860}],
}`)

	spec, err := Load(path)
	require.NoError(t, err)

	require.Len(t, spec.Ports, 1)
	assert.Equal(t, 17860, spec.Ports[0].Host)
	assert.Equal(t, 7860, spec.Ports[0].Container, "container port keeps the contract value")

	// Untouched fields keep their defaults.
	assert.Equal(t, "spill", spec.Name)
	assert.Equal(t, RestartUnlessStopped, spec.Restart)
	require.NoError(t, spec.Validate())
}

// TestLoad_EnvironmentMergesKeywise verifies environment overrides add to
// the defaults instead of replacing them wholesale.
func TestLoad_EnvironmentMergesKeywise(t *testing.T) {
	path := writeDescriptor(t, `{"environment": {"HF_HOME": "/data/hf"}}`)

	spec, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/hf", spec.Environment["HF_HOME"])
	assert.Equal(t, "0.0.0.0", spec.Environment["GRADIO_SERVER_NAME"], "default env must survive the merge")
	assert.Equal(t, "all", spec.Environment["NVIDIA_VISIBLE_DEVICES"])
}

// TestLoad_VolumesReplaceWholesale verifies ordered fields replace rather
// than merge — partial merges of an ordered mount list are ambiguous.
func TestLoad_VolumesReplaceWholesale(t *testing.T) {
	path := writeDescriptor(t, `{"volumes": [{"source": "/srv/spill", "target": "/app"}]}`)

	spec, err := Load(path)
	require.NoError(t, err)

	require.Len(t, spec.Volumes, 1)
	assert.Equal(t, "/srv/spill", spec.Volumes[0].Source)
}

// TestLoad_UnknownFieldRejected verifies a typo fails loudly instead of
// being silently ignored.
func TestLoad_UnknownFieldRejected(t *testing.T) {
	path := writeDescriptor(t, `{"prots": []}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse descriptor")
}

// TestLoad_MalformedRejected verifies syntactically broken files are an
// error — falling back to defaults would mask an operator mistake.
func TestLoad_MalformedRejected(t *testing.T) {
	path := writeDescriptor(t, `{"ports": [`)

	_, err := Load(path)
	require.Error(t, err)
}
