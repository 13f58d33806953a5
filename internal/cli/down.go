// down.go implements the "spillctl down" command: stop and remove the
// service stack through the orchestrator.

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/omersajid9/spill/internal/docker"
	"github.com/omersajid9/spill/internal/model"
)

// downFlags holds the flag values for the down command.
type downFlags struct {
	dir     string // --dir: project directory
	volumes bool   // --volumes: also remove volumes
}

// NewDownCommand creates the "down" cobra command.
func NewDownCommand() *cobra.Command {
	flags := &downFlags{}

	cmd := &cobra.Command{
		Use:   "down",
		Short: "Stop and remove the spill service",
		Long: `Stop the spill service and remove its containers and networks.

With --volumes, named and anonymous volumes are removed as well,
leaving no service data behind.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDown(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Project directory containing the compose file")
	cmd.Flags().BoolVar(&flags.volumes, "volumes", false, "Also remove volumes")

	return cmd
}

// runDown tears the service down via the compose file written by up.
func runDown(ctx context.Context, flags *downFlags) error {
	projectDir, err := filepath.Abs(flags.dir)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project directory", err)
	}

	if _, err := requireComposeFile(projectDir); err != nil {
		return err
	}

	VerboseLog("Running docker compose down in %s", projectDir)
	if err := docker.ComposeDown(ctx, projectDir, []string{ComposeFileName}, flags.volumes); err != nil {
		return err
	}

	if !IsJSONOutput() {
		fmt.Println("Service stopped and removed.")
	}
	return nil
}

// requireComposeFile returns the compose file path for a project
// directory, erroring when up has not written one yet. Shared by stop
// and down, which both operate on the generated file.
func requireComposeFile(projectDir string) (string, error) {
	composePath := filepath.Join(projectDir, ComposeFileName)
	if _, err := os.Stat(composePath); err != nil {
		return "", model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("compose file %s not found — was the service started with up?", composePath))
	}
	return composePath, nil
}
