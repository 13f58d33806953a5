package provision

import (
	"context"

	"github.com/omersajid9/spill/internal/docker"
)

// DockerGPUProber is the production GPUProber: it connects to the local
// Docker daemon and runs the CUDA diagnostic container through the SDK.
//
// The client is created per probe rather than held, because the probe runs
// right after the provisioner restarted the docker service — a connection
// from before the restart would be stale.
type DockerGPUProber struct{}

// Probe runs the GPU smoke test and returns the nvidia-smi output.
func (DockerGPUProber) Probe(ctx context.Context) (string, error) {
	cli, err := docker.NewClient()
	if err != nil {
		return "", err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return "", err
	}

	return docker.RunGPUProbe(ctx, cli)
}
