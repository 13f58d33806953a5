// platform.go maps the host environment to validated download targets.
//
// The compose binary and the NVIDIA container toolkit repository are both
// published per-platform, so the provisioner resolves (OS, architecture)
// and (distribution, version) through explicit lookup tables BEFORE any
// network fetch. An unknown platform fails with the named
// ErrUnsupportedPlatform instead of surfacing later as a generic download
// error for a URL that never existed.

package provision

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedPlatform indicates the host's OS/architecture pair or
// distribution string has no entry in the download tables. It maps to
// ExitUnsupportedPlatform at the CLI boundary.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// ComposeVersion is the pinned docker-compose release the provisioner
// installs when the docker package does not ship the compose plugin.
const ComposeVersion = "v2.24.6"

// composeReleaseBase is the vendor's release-asset URL prefix.
const composeReleaseBase = "https://github.com/docker/compose/releases/download"

// composeAssets maps "GOOS/GOARCH" to the release asset name published by
// the compose project. The asset names use uname-style architecture
// identifiers (x86_64, aarch64), not Go's.
var composeAssets = map[string]string{
	"linux/amd64":  "docker-compose-linux-x86_64",
	"linux/arm64":  "docker-compose-linux-aarch64",
	"darwin/amd64": "docker-compose-darwin-x86_64",
	"darwin/arm64": "docker-compose-darwin-aarch64",
}

// ComposeDownloadURL resolves the compose binary download URL for an
// OS/architecture pair. Unknown pairs yield ErrUnsupportedPlatform.
func ComposeDownloadURL(goos, goarch string) (string, error) {
	asset, ok := composeAssets[goos+"/"+goarch]
	if !ok {
		return "", fmt.Errorf("%w: no compose release asset for %s/%s", ErrUnsupportedPlatform, goos, goarch)
	}
	return fmt.Sprintf("%s/%s/%s", composeReleaseBase, ComposeVersion, asset), nil
}

// Distro identifies a Linux distribution release as reported by
// /etc/os-release.
type Distro struct {
	// ID is the distribution identifier, e.g. "ubuntu".
	ID string

	// VersionID is the release version, e.g. "22.04".
	VersionID string
}

// String returns the vendor's repository path form of the distribution,
// e.g. "ubuntu22.04". The NVIDIA repository is scoped to this exact
// string.
func (d Distro) String() string {
	return d.ID + d.VersionID
}

// supportedDistros lists the distribution strings the NVIDIA container
// toolkit repository publishes package lists for.
var supportedDistros = map[string]struct{}{
	"ubuntu18.04": {},
	"ubuntu20.04": {},
	"ubuntu22.04": {},
	"ubuntu24.04": {},
	"debian10":    {},
	"debian11":    {},
	"debian12":    {},
}

// nvidiaRepoBase is the NVIDIA container toolkit repository root.
const nvidiaRepoBase = "https://nvidia.github.io/libnvidia-container"

// NvidiaRepoTargets resolves the GPG key and apt source list URLs for a
// distribution. Distributions without a published repository yield
// ErrUnsupportedPlatform — this must be surfaced, not silently skipped,
// because the later toolkit install would fail anyway with a far less
// helpful apt error.
func NvidiaRepoTargets(d Distro) (keyURL, listURL string, err error) {
	if _, ok := supportedDistros[d.String()]; !ok {
		return "", "", fmt.Errorf("%w: NVIDIA container toolkit has no repository for %q", ErrUnsupportedPlatform, d.String())
	}
	return nvidiaRepoBase + "/gpgkey",
		fmt.Sprintf("%s/%s/libnvidia-container.list", nvidiaRepoBase, d.String()),
		nil
}

// ParseOSRelease extracts the distribution identity from the contents of
// /etc/os-release. The file is a sequence of KEY=VALUE lines where values
// may be double-quoted.
//
// Returns an error when ID or VERSION_ID is missing — without both, the
// repository URL cannot be scoped to the exact distribution string.
func ParseOSRelease(data []byte) (Distro, error) {
	var d Distro

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"`)

		switch key {
		case "ID":
			d.ID = value
		case "VERSION_ID":
			d.VersionID = value
		}
	}

	if d.ID == "" || d.VersionID == "" {
		return Distro{}, fmt.Errorf("os-release is missing ID or VERSION_ID")
	}
	return d, nil
}
