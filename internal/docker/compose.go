// compose.go implements the orchestrator invocation and container
// discovery for the spill service.
//
// The compose lifecycle (up/stop/down) shells out to `docker compose`
// because compose is the external orchestrator that interprets the
// descriptor; reimplementing its build-and-merge semantics on the SDK
// would duplicate the tool the provisioner just installed. Discovery
// (`spillctl status`) uses the Docker SDK with label filters.

package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/omersajid9/spill/internal/model"
)

// ListManagedContainers queries the Docker daemon for all containers that
// have the "spill.managed-by=spillctl" label, including stopped ones —
// a stopped service container still needs to show up in `status`.
//
// Filtering happens server-side via the Docker API, which is cheaper than
// listing all containers and filtering in Go.
func ListManagedContainers(ctx context.Context, cli *Client) ([]model.ContainerInfo, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	// Convert Docker API types.Container structs to our domain model
	// ContainerInfo structs. This decouples the rest of the application
	// from the Docker SDK types.
	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c))
	}

	return result, nil
}

// containerToInfo converts a Docker API Container struct to our domain
// model ContainerInfo. This is a pure mapping function with no side effects.
//
// The Docker API returns container names with a leading "/" prefix
// (e.g., "/spill-spill-1"), which we strip for cleaner display.
func containerToInfo(c types.Container) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		// The leading "/" is an artifact of the API, not meaningful
		// to users.
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	// Docker Compose adds a "com.docker.compose.service" label to each
	// container it creates, which tells us which service definition in
	// the YAML this container belongs to.
	serviceName := c.Labels["com.docker.compose.service"]

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		ServiceName:   serviceName,
		Status:        c.State,
		Labels:        c.Labels,
	}
}

// ComposeUp starts the service using docker compose. It executes
// "docker compose -f <file> up -d --build" in the project directory.
//
// The -d flag runs containers in detached mode so the CLI doesn't block.
// The --build flag makes compose rebuild the image when the build context
// changed, so `up` after editing the Dockerfile does what the operator
// expects.
//
// The envVars parameter allows passing environment variables to the
// docker compose process (e.g., COMPOSE_PROJECT_NAME).
//
// Returns a CLIError with ExitDockerNotRunning if the command fails,
// since compose failures most commonly stem from Docker daemon issues.
func ComposeUp(ctx context.Context, projectDir string, composeFiles []string, envVars map[string]string) error {
	args := buildComposeArgs(composeFiles)
	args = append(args, "up", "-d", "--build")

	return runCompose(ctx, projectDir, args, envVars)
}

// ComposeStop stops the service containers without removing them,
// preserving container state and data for a later ComposeUp.
func ComposeStop(ctx context.Context, projectDir string, composeFiles []string) error {
	args := buildComposeArgs(composeFiles)
	args = append(args, "stop")

	return runCompose(ctx, projectDir, args, nil)
}

// ComposeDown stops and removes the service containers and networks.
//
// When removeVolumes is true, the -v flag also removes named volumes
// declared in the compose file and anonymous volumes attached to
// containers, ensuring complete cleanup with no leftover data.
func ComposeDown(ctx context.Context, projectDir string, composeFiles []string, removeVolumes bool) error {
	args := buildComposeArgs(composeFiles)
	args = append(args, "down")

	if removeVolumes {
		args = append(args, "-v")
	}

	return runCompose(ctx, projectDir, args, nil)
}

// buildComposeArgs constructs the common arguments for docker compose
// commands. Each compose file is specified with a -f flag; compose merges
// multiple files in order, later files taking precedence.
func buildComposeArgs(composeFiles []string) []string {
	args := make([]string, 0, len(composeFiles)*2+2)
	// "compose" is the subcommand for "docker compose" (plugin-style
	// invocation).
	args = append(args, "compose")
	for _, f := range composeFiles {
		args = append(args, "-f", f)
	}
	return args
}

// runCompose executes a docker compose command as a child process.
// It runs "docker" with the given arguments in the specified working
// directory, optionally injecting extra environment variables.
//
// "docker compose" (plugin) is used rather than the legacy standalone
// "docker-compose" binary when available; the provisioner installs the
// standalone binary as a fallback for hosts whose docker package predates
// the plugin.
func runCompose(ctx context.Context, projectDir string, args []string, envVars map[string]string) error {
	cmd := exec.CommandContext(ctx, "docker", args...)

	// docker compose resolves relative paths in YAML files relative to
	// this directory, so it must be the project root.
	cmd.Dir = projectDir

	// os.Environ() returns a copy, so modifications don't affect this
	// process.
	cmd.Env = os.Environ()
	for k, v := range envVars {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("docker compose failed: %s", strings.TrimSpace(string(output))),
			err,
		)
	}

	return nil
}
