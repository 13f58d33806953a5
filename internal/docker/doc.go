// Package docker wraps the Docker Engine SDK and the docker compose CLI
// for the spillctl tool.
//
// It provides:
//   - Client: SDK client with automatic socket detection and a Ping probe
//     the provisioner uses to verify the runtime after installation
//   - Compose lifecycle helpers (up/stop/down) that shell out to the
//     external orchestrator
//   - Label-based discovery of the managed service container
//   - RunGPUProbe: the GPU-enabled smoke test container run
package docker
