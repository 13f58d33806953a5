// spec.go defines the service descriptor model and its validation.
//
// The descriptor is the single source of truth for how the service is built
// and launched: build context and Dockerfile path, the one exposed port,
// the volume mounts, environment injection, restart policy, and the GPU
// capability reservation. It is validated before any rendering happens so
// a broken descriptor never reaches `docker compose`.

package service

import (
	"fmt"
	"path"
	"strings"

	"github.com/omersajid9/spill/internal/model"
)

// AllGPUs is the sentinel device count requesting every GPU on the host.
// It renders as `count: all` in the compose device reservation.
const AllGPUs = -1

// GPUCapability is the capability class requested from the container
// runtime for GPU access.
const GPUCapability = "gpu"

// RestartPolicy is the container restart behavior handed to the
// orchestrator.
type RestartPolicy string

const (
	// RestartNo disables automatic restarts.
	RestartNo RestartPolicy = "no"

	// RestartAlways restarts the container unconditionally.
	RestartAlways RestartPolicy = "always"

	// RestartOnFailure restarts only when the container exits non-zero.
	RestartOnFailure RestartPolicy = "on-failure"

	// RestartUnlessStopped restarts on failure and host reboot, except
	// when an operator explicitly stopped the container. This is the
	// policy the spill service ships with.
	RestartUnlessStopped RestartPolicy = "unless-stopped"
)

// IsValid checks whether the RestartPolicy is one of the values Docker
// Compose accepts.
func (p RestartPolicy) IsValid() bool {
	switch p {
	case RestartNo, RestartAlways, RestartOnFailure, RestartUnlessStopped:
		return true
	default:
		return false
	}
}

// BuildConfig describes how the service image is built.
type BuildConfig struct {
	// Context is the build context directory, relative to the project root.
	Context string `json:"context"`

	// Dockerfile is the build file path relative to the context. The spill
	// image is described by docker/Dockerfile, NOT a root-level Dockerfile,
	// so the orchestrator must be told the named file explicitly.
	Dockerfile string `json:"dockerfile"`
}

// PortBinding maps one fixed host port to one fixed container port.
// The bound host port is the service's sole network entry point.
type PortBinding struct {
	// Host is the port bound on the host machine. Whether it is free at
	// launch time is the caller's responsibility — no check is performed.
	Host int `json:"host"`

	// Container is the port the application listens on inside the
	// container.
	Container int `json:"container"`
}

// String returns the compose "host:container" rendering of the binding.
func (b PortBinding) String() string {
	return fmt.Sprintf("%d:%d", b.Host, b.Container)
}

// Validate checks the binding's port ranges.
func (b PortBinding) Validate() error {
	if b.Host < 1 || b.Host > 65535 {
		return fmt.Errorf("port binding: host port %d out of range (1-65535)", b.Host)
	}
	if b.Container < 1 || b.Container > 65535 {
		return fmt.Errorf("port binding: container port %d out of range (1-65535)", b.Container)
	}
	return nil
}

// Mount is a bind mount from a host path into the container.
//
// Order matters: mounts are applied in sequence and a later, narrower mount
// shadows the corresponding subtree of an earlier broad mount. The spill
// descriptor relies on this to overlay ./clipping on top of the whole-project
// mount at /app.
type Mount struct {
	// Source is the host path, relative to the project root or absolute.
	Source string `json:"source"`

	// Target is the absolute path inside the container.
	Target string `json:"target"`
}

// String returns the compose "source:target" rendering of the mount.
func (m Mount) String() string {
	return m.Source + ":" + m.Target
}

// Validate checks that the mount has a source and an absolute target.
func (m Mount) Validate() error {
	if m.Source == "" {
		return fmt.Errorf("volume mount: source must not be empty")
	}
	if !strings.HasPrefix(m.Target, "/") {
		return fmt.Errorf("volume mount: target %q must be an absolute container path", m.Target)
	}
	return nil
}

// GPUReservation is a declarative request that the container be granted
// access to the host's GPU device class.
type GPUReservation struct {
	// Driver is the device driver the reservation targets.
	Driver string `json:"driver"`

	// Count is the number of devices requested. AllGPUs (-1) reserves
	// every GPU on the host with no cap.
	Count int `json:"count"`

	// Capabilities lists the requested capability classes. Exactly one
	// "gpu" entry must be present.
	Capabilities []string `json:"capabilities"`
}

// Spec is the service descriptor: a reproducible build-and-run description
// for exactly one containerized service.
type Spec struct {
	// Name is the compose service name.
	Name string `json:"name"`

	// Build describes the image build.
	Build BuildConfig `json:"build"`

	// Ports holds the service's port bindings. Exactly one binding is
	// allowed — the service has a single network entry point.
	Ports []PortBinding `json:"ports"`

	// Volumes are the bind mounts, in application order. The default
	// descriptor mounts the whole project at /app (live-edit convenience;
	// it re-overlays code copied at image build time with host-side
	// source, a documented drift hazard) and then ./clipping on top.
	Volumes []Mount `json:"volumes"`

	// Environment is injected into the container. The default descriptor
	// sets NVIDIA_VISIBLE_DEVICES=all (expose every GPU device) and
	// GRADIO_SERVER_NAME=0.0.0.0 (bind all interfaces, required for the
	// port mapping to reach the app from outside the container's
	// network namespace).
	Environment map[string]string `json:"environment"`

	// Restart is the restart policy.
	Restart RestartPolicy `json:"restart"`

	// GPU is the capability reservation. Exactly one reservation exists
	// per service and it must request the "gpu" capability uncapped.
	GPU *GPUReservation `json:"gpu"`
}

// validServiceName checks the compose service name character set:
// lowercase alphanumerics, hyphens and underscores.
func validServiceName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_'
		if !ok {
			return false
		}
	}
	return true
}

// Validate checks every descriptor invariant. It returns a CLIError with
// ExitDescriptorInvalid so the CLI layer maps a broken descriptor to a
// distinct exit code.
//
// Enforced invariants:
//   - service name is a valid compose identifier
//   - build context and Dockerfile path are set
//   - exactly one port binding, in range
//   - every mount has a source and an absolute target
//   - environment keys are well-formed
//   - restart policy is one of the compose enum values
//   - exactly one GPU reservation requesting the "gpu" capability with
//     no device-count cap
func (s *Spec) Validate() error {
	if !validServiceName(s.Name) {
		return model.NewCLIError(model.ExitDescriptorInvalid,
			fmt.Sprintf("invalid service name %q: must be lowercase alphanumerics, hyphens or underscores", s.Name))
	}

	if s.Build.Context == "" {
		return model.NewCLIError(model.ExitDescriptorInvalid, "build context must not be empty")
	}
	if s.Build.Dockerfile == "" {
		return model.NewCLIError(model.ExitDescriptorInvalid, "build dockerfile path must not be empty")
	}

	// The service exposes a single network entry point. More than one
	// binding means the descriptor drifted from the launch contract.
	if len(s.Ports) != 1 {
		return model.NewCLIError(model.ExitDescriptorInvalid,
			fmt.Sprintf("exactly one port binding is required, got %d", len(s.Ports)))
	}
	if err := s.Ports[0].Validate(); err != nil {
		return model.WrapCLIError(model.ExitDescriptorInvalid, "invalid port binding", err)
	}

	for _, m := range s.Volumes {
		if err := m.Validate(); err != nil {
			return model.WrapCLIError(model.ExitDescriptorInvalid, "invalid volume mount", err)
		}
	}

	for key := range s.Environment {
		if err := model.ValidateEnvKey(key); err != nil {
			return model.WrapCLIError(model.ExitDescriptorInvalid, "invalid environment entry", err)
		}
	}

	if !s.Restart.IsValid() {
		return model.NewCLIError(model.ExitDescriptorInvalid,
			fmt.Sprintf("invalid restart policy %q (valid: no, always, on-failure, unless-stopped)", s.Restart))
	}

	return s.validateGPU()
}

// validateGPU enforces the capability-reservation contract: exactly one
// reservation, requesting the "gpu" capability exactly once, with the
// device count uncapped. No sharing policy across multiple GPU-consuming
// services is defined, so a capped count is rejected rather than silently
// honored.
func (s *Spec) validateGPU() error {
	if s.GPU == nil {
		return model.NewCLIError(model.ExitDescriptorInvalid, "missing GPU reservation: the service requires one capability request")
	}

	gpuCount := 0
	for _, c := range s.GPU.Capabilities {
		if c == GPUCapability {
			gpuCount++
		}
	}
	if gpuCount != 1 {
		return model.NewCLIError(model.ExitDescriptorInvalid,
			fmt.Sprintf("GPU reservation must request the %q capability exactly once, got %d", GPUCapability, gpuCount))
	}

	if s.GPU.Count != AllGPUs {
		return model.NewCLIError(model.ExitDescriptorInvalid,
			fmt.Sprintf("GPU reservation must be uncapped (count %d), got %d", AllGPUs, s.GPU.Count))
	}

	if s.GPU.Driver == "" {
		return model.NewCLIError(model.ExitDescriptorInvalid, "GPU reservation driver must not be empty")
	}

	return nil
}

// EntryPort returns the container-side port of the service's single
// binding. Callers must Validate first; on an unvalidated spec with no
// bindings this returns 0.
func (s *Spec) EntryPort() int {
	if len(s.Ports) == 0 {
		return 0
	}
	return s.Ports[0].Container
}

// DockerfilePath returns the build file path joined onto the build
// context, for display purposes.
func (s *Spec) DockerfilePath() string {
	return path.Join(s.Build.Context, s.Build.Dockerfile)
}

// DefaultSpec returns the descriptor for the spill clipping service.
//
// The values mirror the service's launch contract: the image is built from
// docker/Dockerfile (CUDA runtime base, pinned Python), the gradio front
// end listens on 7860 inside the container and the same port is bound on
// the host, the whole project plus the clipping subdirectory are mounted
// for live editing, and all GPUs are reserved.
func DefaultSpec() *Spec {
	return &Spec{
		Name: "spill",
		Build: BuildConfig{
			Context:    ".",
			Dockerfile: "docker/Dockerfile",
		},
		Ports: []PortBinding{
			{Host: 7860, Container: 7860},
		},
		Volumes: []Mount{
			// Broad mount first: live-edit the whole project tree.
			{Source: ".", Target: "/app"},
			// Narrow mount second: shadows /app/clipping with the host's
			// clipping directory, taking precedence over the broad mount.
			{Source: "./clipping", Target: "/app/clipping"},
		},
		Environment: map[string]string{
			"NVIDIA_VISIBLE_DEVICES": "all",
			"GRADIO_SERVER_NAME":     "0.0.0.0",
		},
		Restart: RestartUnlessStopped,
		GPU: &GPUReservation{
			Driver:       "nvidia",
			Count:        AllGPUs,
			Capabilities: []string{GPUCapability},
		},
	}
}
