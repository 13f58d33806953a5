// stop.go implements the "spillctl stop" command.
//
// stop halts the service containers without removing them: container
// state and anonymous volumes survive, so a later up resumes from where
// the service left off without rebuilding. down is the destructive
// counterpart.

package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/omersajid9/spill/internal/docker"
	"github.com/omersajid9/spill/internal/model"
)

// stopFlags holds the flag values for the stop command.
type stopFlags struct {
	dir string // --dir: project directory
}

// NewStopCommand creates the "stop" cobra command.
func NewStopCommand() *cobra.Command {
	flags := &stopFlags{}

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the spill service without removing it",
		Long: `Gracefully stop the spill service containers.

Containers are stopped but not removed; their state and data are
preserved. Run up to start the service again, or down to remove it.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Project directory containing the compose file")

	return cmd
}

// runStop stops the service via the compose file written by up.
func runStop(ctx context.Context, flags *stopFlags) error {
	projectDir, err := filepath.Abs(flags.dir)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project directory", err)
	}

	if _, err := requireComposeFile(projectDir); err != nil {
		return err
	}

	VerboseLog("Running docker compose stop in %s", projectDir)
	if err := docker.ComposeStop(ctx, projectDir, []string{ComposeFileName}); err != nil {
		return err
	}

	if !IsJSONOutput() {
		fmt.Println("Service stopped. Run up to start it again.")
	}
	return nil
}
