// status.go implements the "spillctl status" command.
//
// Discovery is label-based: every container launched by up carries the
// spill.managed-by label, so status reconstructs the service state from
// Docker API queries alone — there is no state file to go stale.

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/omersajid9/spill/internal/docker"
	"github.com/omersajid9/spill/internal/model"
)

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the managed spill service container",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context())
		},
	}

	return cmd
}

// runStatus lists managed containers and prints their state.
func runStatus(ctx context.Context) error {
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		return err
	}

	printStatus(containers)
	return nil
}

// printStatus outputs the container list in text or JSON format.
func printStatus(containers []model.ContainerInfo) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(containers, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(containers) == 0 {
		fmt.Println("No managed service container found.")
		return
	}

	for _, c := range containers {
		fmt.Print(formatStatusEntry(c))
	}
}

// formatStatusEntry renders one container as a text block: the familiar
// short ID, name and state on the first line, then the service name and
// launch timestamp from the management labels when present.
func formatStatusEntry(c model.ContainerInfo) string {
	svc := c.Labels[docker.LabelService]
	if svc == "" {
		svc = c.ServiceName
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s %-20s %s\n", shortID(c.ContainerID), c.ContainerName, c.Status)
	if svc != "" {
		fmt.Fprintf(&sb, "             service: %s\n", svc)
	}
	if launched := c.Labels[docker.LabelLaunchedAt]; launched != "" {
		fmt.Fprintf(&sb, "             launched: %s\n", launched)
	}
	return sb.String()
}

// shortID truncates a container ID to the familiar 12-character form
// docker itself displays.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
