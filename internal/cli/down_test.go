package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omersajid9/spill/internal/model"
)

// TestRequireComposeFile verifies the precheck shared by stop and down:
// a missing generated compose file is an error pointing the operator at
// up, a present one resolves to its path.
func TestRequireComposeFile(t *testing.T) {
	dir := t.TempDir()

	_, err := requireComposeFile(dir)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "was the service started with up?")

	composePath := filepath.Join(dir, ComposeFileName)
	require.NoError(t, os.WriteFile(composePath, []byte("services: {}\n"), 0o644))

	got, err := requireComposeFile(dir)
	require.NoError(t, err)
	assert.Equal(t, composePath, got)
}
