package provision

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComposeDownloadURL_SupportedPairs verifies that every supported
// OS/architecture pair resolves to a well-formed URL matching the vendor's
// release-asset naming pattern (docker-compose-<os>-<uname arch>).
func TestComposeDownloadURL_SupportedPairs(t *testing.T) {
	pairs := []struct {
		goos, goarch string
		wantAsset    string
	}{
		{"linux", "amd64", "docker-compose-linux-x86_64"},
		{"linux", "arm64", "docker-compose-linux-aarch64"},
		{"darwin", "amd64", "docker-compose-darwin-x86_64"},
		{"darwin", "arm64", "docker-compose-darwin-aarch64"},
	}

	for _, p := range pairs {
		got, err := ComposeDownloadURL(p.goos, p.goarch)
		require.NoError(t, err, "%s/%s should be supported", p.goos, p.goarch)

		parsed, err := url.Parse(got)
		require.NoError(t, err, "URL must be well-formed")
		assert.Equal(t, "https", parsed.Scheme)
		assert.Equal(t, "github.com", parsed.Host)
		assert.True(t, strings.HasSuffix(got, p.wantAsset), "URL %q should end with asset %q", got, p.wantAsset)
		assert.Contains(t, got, ComposeVersion, "URL should pin the compose release version")
	}
}

// TestComposeDownloadURL_Unsupported verifies that an unknown pair yields
// the named unsupported-platform error rather than a generic one.
func TestComposeDownloadURL_Unsupported(t *testing.T) {
	_, err := ComposeDownloadURL("linux", "riscv64")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)

	_, err = ComposeDownloadURL("windows", "amd64")
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
}

// TestNvidiaRepoTargets_Supported verifies the repository URLs are scoped
// to the exact distribution string for every supported distribution.
func TestNvidiaRepoTargets_Supported(t *testing.T) {
	distros := []Distro{
		{ID: "ubuntu", VersionID: "18.04"},
		{ID: "ubuntu", VersionID: "20.04"},
		{ID: "ubuntu", VersionID: "22.04"},
		{ID: "ubuntu", VersionID: "24.04"},
		{ID: "debian", VersionID: "10"},
		{ID: "debian", VersionID: "11"},
		{ID: "debian", VersionID: "12"},
	}

	for _, d := range distros {
		keyURL, listURL, err := NvidiaRepoTargets(d)
		require.NoError(t, err, "%s should be supported", d)

		for _, u := range []string{keyURL, listURL} {
			parsed, err := url.Parse(u)
			require.NoError(t, err)
			assert.Equal(t, "nvidia.github.io", parsed.Host)
		}
		assert.Contains(t, listURL, "/"+d.String()+"/", "list URL must embed the exact distribution string")
	}
}

// TestNvidiaRepoTargets_Unsupported verifies an unknown distribution is a
// named error, not a silently skipped step or a downstream fetch failure.
func TestNvidiaRepoTargets_Unsupported(t *testing.T) {
	_, _, err := NvidiaRepoTargets(Distro{ID: "alpine", VersionID: "3.19"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	assert.Contains(t, err.Error(), "alpine3.19")
}

// TestParseOSRelease covers quoted values, comments, and the missing-field
// error.
func TestParseOSRelease(t *testing.T) {
	d, err := ParseOSRelease([]byte(`
# os-release sample
NAME="Ubuntu"
ID=ubuntu
VERSION_ID="22.04"
PRETTY_NAME="Ubuntu 22.04.3 LTS"
`))
	require.NoError(t, err)
	assert.Equal(t, "ubuntu", d.ID)
	assert.Equal(t, "22.04", d.VersionID)
	assert.Equal(t, "ubuntu22.04", d.String())

	_, err = ParseOSRelease([]byte(`NAME="Something"`))
	assert.Error(t, err, "missing ID/VERSION_ID must be rejected")
}
