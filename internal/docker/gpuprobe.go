// gpuprobe.go runs the GPU-enabled container smoke test: a minimal CUDA
// diagnostic image executing nvidia-smi with every GPU requested.
//
// The probe exercises the whole chain the provisioner just installed —
// runtime, GPU bridge, driver — end to end. It is the only place the CLI
// creates a container through the SDK directly; the service itself is
// always launched through compose.

package docker

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/stdcopy"
)

// gpuProbeImage is the diagnostic image. A CUDA base image is used because
// it carries nvidia-smi without pulling a full framework stack.
const gpuProbeImage = "nvidia/cuda:12.3.1-base-ubuntu22.04"

// gpuProbeTimeout bounds the whole probe including the image pull. The
// image is ~80MB, so a slow link needs real headroom.
const gpuProbeTimeout = 5 * time.Minute

// RunGPUProbe pulls the diagnostic image and runs nvidia-smi in a
// container with an uncapped "gpu" capability reservation. It returns the
// command output on success and an error describing which part of the
// chain failed otherwise.
//
// Callers decide the failure policy; for the provisioner this probe is
// advisory — a host without a GPU must still provision successfully.
func RunGPUProbe(ctx context.Context, cli *Client) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, gpuProbeTimeout)
	defer cancel()

	// Pull the image. The reader must be drained for the pull to
	// actually complete — the SDK streams progress JSON through it.
	reader, err := cli.Inner().ImagePull(ctx, gpuProbeImage, image.PullOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to pull diagnostic image %s: %w", gpuProbeImage, err)
	}
	_, _ = io.Copy(io.Discard, reader)
	_ = reader.Close()

	// Request every GPU: driver nvidia, count -1 (no cap), capability
	// class "gpu". This mirrors the service descriptor's reservation so
	// the probe verifies exactly what the service will ask for.
	hostConfig := &container.HostConfig{
		Resources: container.Resources{
			DeviceRequests: []container.DeviceRequest{
				{
					Driver:       "nvidia",
					Count:        -1,
					Capabilities: [][]string{{"gpu"}},
				},
			},
		},
	}

	created, err := cli.Inner().ContainerCreate(ctx,
		&container.Config{
			Image: gpuProbeImage,
			Cmd:   []string{"nvidia-smi"},
		},
		hostConfig, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create diagnostic container: %w", err)
	}

	// Remove the container whatever happens below. Force handles the
	// still-running case when the wait timed out.
	defer func() {
		removeCtx, removeCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer removeCancel()
		_ = cli.Inner().ContainerRemove(removeCtx, created.ID, container.RemoveOptions{Force: true})
	}()

	if err := cli.Inner().ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start diagnostic container: %w", err)
	}

	// Wait for the container to exit. WaitConditionNotRunning fires when
	// the main process terminates, which for nvidia-smi is near-instant.
	statusCh, errCh := cli.Inner().ContainerWait(ctx, created.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return "", fmt.Errorf("failed waiting for diagnostic container: %w", err)
	case status := <-statusCh:
		output := probeLogs(ctx, cli, created.ID)
		if status.StatusCode != 0 {
			return output, fmt.Errorf("nvidia-smi exited with status %d", status.StatusCode)
		}
		return output, nil
	}
}

// probeLogs fetches the container's combined output. Log retrieval failure
// is swallowed: the exit code already decided the probe outcome and the
// logs are only diagnostic garnish.
func probeLogs(ctx context.Context, cli *Client, containerID string) string {
	logs, err := cli.Inner().ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return ""
	}
	defer logs.Close()

	// Docker multiplexes stdout/stderr into one stream; stdcopy
	// demultiplexes it.
	var sb strings.Builder
	_, _ = stdcopy.StdCopy(&sb, &sb, logs)
	return strings.TrimSpace(sb.String())
}
