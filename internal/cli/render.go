// render.go implements the "spillctl render" command.
//
// render prints what up WOULD hand to the orchestrator, without touching
// Docker: the compose YAML by default, or — with --effective — the
// resolved container configuration (the single port binding, the mounts
// with their precedence intact, the injected environment, the GPU
// reservation). The effective view is the one to eyeball when auditing
// the launch contract.

package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/omersajid9/spill/internal/docker"
	"github.com/omersajid9/spill/internal/model"
	"github.com/omersajid9/spill/internal/service"
)

// renderFlags holds the flag values for the render command.
type renderFlags struct {
	dir        string // --dir: project directory
	descriptor string // --descriptor: descriptor override file path
	effective  bool   // --effective: resolved config instead of YAML
}

// NewRenderCommand creates the "render" cobra command.
func NewRenderCommand() *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the compose file or effective configuration without starting anything",

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(flags)
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "Project directory")
	cmd.Flags().StringVar(&flags.descriptor, "descriptor", "", "Descriptor override file (default: <dir>/"+service.DefaultDescriptorFile+")")
	cmd.Flags().BoolVar(&flags.effective, "effective", false, "Print the resolved container configuration as JSON")

	return cmd
}

// runRender loads the descriptor and prints the requested view.
func runRender(flags *renderFlags) error {
	projectDir, err := filepath.Abs(flags.dir)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to resolve project directory", err)
	}

	spec, err := loadSpec(projectDir, flags.descriptor)
	if err != nil {
		return err
	}

	if flags.effective {
		cfg := service.Effective(spec)
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to serialize effective configuration", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if IsJSONOutput() {
		printSpecJSON(spec)
		return nil
	}

	labels := docker.BuildLabels(spec.Name, time.Now())
	data, err := service.Render(spec, labels)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to render compose file", err)
	}
	fmt.Print(string(data))
	return nil
}

// printSpecJSON outputs the descriptor itself as JSON. Shared with up.
func printSpecJSON(spec *service.Spec) {
	data, _ := json.MarshalIndent(spec, "", "  ")
	fmt.Println(string(data))
}
