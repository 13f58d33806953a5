// up.go implements the "spillctl up" command.
//
// Orchestration steps:
//  1. Load the service descriptor (defaults + optional spill.jsonc)
//  2. Validate every descriptor invariant
//  3. Render the compose YAML with management labels
//  4. Write it into the project directory
//  5. Hand control to docker compose (build + detached start)

package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/omersajid9/spill/internal/docker"
	"github.com/omersajid9/spill/internal/model"
	"github.com/omersajid9/spill/internal/service"
)

// ComposeFileName is the generated compose file written into the project
// directory. A distinct name keeps it from clobbering a hand-written
// docker-compose.yml.
const ComposeFileName = "docker-compose.spill.yml"

// upFlags holds the flag values for the up command.
type upFlags struct {
	dir        string // --dir: project directory
	descriptor string // --descriptor: descriptor override file path
}

// NewUpCommand creates the "up" cobra command.
func NewUpCommand() *cobra.Command {
	flags := &upFlags{}

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Build and start the spill service with GPU access",
		Long: `Render the service descriptor to a Docker Compose file and start the
service through the orchestrator.

The descriptor reserves every host GPU for the service, binds port
7860 on the host to the gradio front end, and mounts the project tree
into the container for live editing.

Note: the project mount overlays the application code copied into the
image at build time with the host-side source; keep the two in sync or
rebuild to avoid drift. The host port is not checked for availability —
freeing it before up is the caller's responsibility.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Project directory containing the build context")
	cmd.Flags().StringVar(&flags.descriptor, "descriptor", "", "Descriptor override file (default: <dir>/"+service.DefaultDescriptorFile+")")

	return cmd
}

// runUp is the main orchestration function for the up command.
func runUp(ctx context.Context, flags *upFlags) error {
	projectDir, err := filepath.Abs(flags.dir)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project directory", err)
	}
	VerboseLog("Project directory: %s", projectDir)

	spec, err := loadSpec(projectDir, flags.descriptor)
	if err != nil {
		return err
	}

	labels := docker.BuildLabels(spec.Name, time.Now())

	composePath, err := writeCompose(spec, labels, projectDir)
	if err != nil {
		return err
	}

	VerboseLog("Running docker compose up with %s", composePath)
	if err := docker.ComposeUp(ctx, projectDir, []string{ComposeFileName}, nil); err != nil {
		return err
	}

	printUpResult(spec)
	return nil
}

// loadSpec loads and validates the descriptor for a project directory.
// Shared by up, down, and render.
func loadSpec(projectDir, descriptorPath string) (*service.Spec, error) {
	if descriptorPath == "" {
		descriptorPath = filepath.Join(projectDir, service.DefaultDescriptorFile)
	}

	spec, err := service.Load(descriptorPath)
	if err != nil {
		return nil, err
	}
	VerboseLog("Descriptor loaded (service %q)", spec.Name)

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// writeCompose renders the descriptor and writes the compose file into
// the project directory, returning its absolute path.
func writeCompose(spec *service.Spec, labels map[string]string, projectDir string) (string, error) {
	data, err := service.Render(spec, labels)
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError, "failed to render compose file", err)
	}

	composePath := filepath.Join(projectDir, ComposeFileName)
	if err := service.WriteComposeFile(composePath, data); err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError, "failed to write compose file", err)
	}
	VerboseLog("Compose file written to: %s", composePath)
	return composePath, nil
}

// printUpResult outputs the started service summary.
func printUpResult(spec *service.Spec) {
	if IsJSONOutput() {
		printSpecJSON(spec)
		return
	}
	fmt.Print(formatUpSummary(spec))
}

// formatUpSummary renders the human-readable launch summary for a
// validated spec: the host-side URL, the container entry port, the named
// build file, restart policy, and the GPU reservation.
func formatUpSummary(spec *service.Spec) string {
	binding := spec.Ports[0]
	var sb strings.Builder
	fmt.Fprintf(&sb, "Started service %q\n", spec.Name)
	fmt.Fprintf(&sb, "  UI:       http://localhost:%d (container port %d)\n", binding.Host, spec.EntryPort())
	fmt.Fprintf(&sb, "  Build:    %s\n", spec.DockerfilePath())
	fmt.Fprintf(&sb, "  Restart:  %s\n", spec.Restart)
	fmt.Fprintf(&sb, "  GPUs:     all (capability %q)\n", service.GPUCapability)
	return sb.String()
}
