// effective.go computes the effective container configuration implied by a
// descriptor: the resolved view a reviewer or test cares about, rather than
// the compose syntax.
//
// The interesting part is mount precedence. Compose applies bind mounts in
// order and a later mount whose target sits under (or at) an earlier one
// shadows that subtree. ResolveMount answers "which host path backs this
// container path" under those rules, which is how the narrow ./clipping
// mount wins over the broad project mount for /app/clipping.

package service

import (
	"path"
	"strings"
)

// EffectiveConfig is the resolved launch configuration for the service.
type EffectiveConfig struct {
	// Service is the compose service name.
	Service string `json:"service"`

	// Ports is the single host-to-container binding.
	Ports []PortBinding `json:"ports"`

	// Mounts are the bind mounts in application order.
	Mounts []Mount `json:"mounts"`

	// Environment is the injected environment.
	Environment map[string]string `json:"environment"`

	// Restart is the restart policy.
	Restart RestartPolicy `json:"restart"`

	// GPU is the single capability reservation.
	GPU GPUReservation `json:"gpu"`

	// BindAddress is the address the served application listens on,
	// taken from the GRADIO_SERVER_NAME override. It must be the
	// all-interfaces value for the port mapping to work.
	BindAddress string `json:"bindAddress"`
}

// bindAddressEnv is the environment variable the spill front end reads to
// decide its listen address.
const bindAddressEnv = "GRADIO_SERVER_NAME"

// Effective builds the EffectiveConfig for a validated spec.
func Effective(spec *Spec) *EffectiveConfig {
	cfg := &EffectiveConfig{
		Service:     spec.Name,
		Ports:       append([]PortBinding(nil), spec.Ports...),
		Mounts:      append([]Mount(nil), spec.Volumes...),
		Environment: make(map[string]string, len(spec.Environment)),
		Restart:     spec.Restart,
		BindAddress: spec.Environment[bindAddressEnv],
	}
	for k, v := range spec.Environment {
		cfg.Environment[k] = v
	}
	if spec.GPU != nil {
		cfg.GPU = *spec.GPU
	}
	return cfg
}

// ResolveMount returns the host path that backs containerPath under the
// configured mounts, honoring shadowing: among all mounts whose target is
// a prefix of containerPath, the one with the longest target wins, and on
// a tie the later mount wins (compose application order).
//
// The second return value is false when no mount covers the path (the
// path is backed by the image filesystem).
func (e *EffectiveConfig) ResolveMount(containerPath string) (string, bool) {
	containerPath = path.Clean(containerPath)

	bestLen := -1
	bestHost := ""
	found := false

	for _, m := range e.Mounts {
		target := path.Clean(m.Target)
		if !pathHasPrefix(containerPath, target) {
			continue
		}
		// >= so that a later mount with an equally specific target
		// overrides an earlier one.
		if len(target) >= bestLen {
			bestLen = len(target)
			rel := strings.TrimPrefix(containerPath, target)
			rel = strings.TrimPrefix(rel, "/")
			if rel == "" {
				bestHost = m.Source
			} else {
				bestHost = path.Join(m.Source, rel)
			}
			found = true
		}
	}

	return bestHost, found
}

// pathHasPrefix reports whether p is target itself or lies under target as
// a path component boundary ("/app/clip" is NOT under "/app/clipping").
func pathHasPrefix(p, target string) bool {
	if p == target {
		return true
	}
	if target == "/" {
		return strings.HasPrefix(p, "/")
	}
	return strings.HasPrefix(p, target+"/")
}
