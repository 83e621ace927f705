package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kilometers.ai/bdv-viewer/internal/application/services"
	"kilometers.ai/bdv-viewer/internal/core/domain/solution"
)

// NewRunCommand creates the run command. Its argument flags are generated
// from the solution's declared arguments.
func NewRunCommand(container *CLIContainer) *cobra.Command {
	var checkExit bool
	sol := container.Solution

	cmd := &cobra.Command{
		Use:   "run [url]",
		Short: "Open an OME-ZARR URL in the installed viewer",
		Long: `Start the installed viewer through the Gradle wrapper's run task.

The URL can be given with --ome_zarr_url or as the only positional
argument. The viewer's exit status is logged; use --check-exit to make a
non-zero exit fail the command.

Examples:
  bdv run https://example.com/data.zarr
  bdv run --ome_zarr_url https://example.com/data.zarr --check-exit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := collectArgs(cmd, sol, args)
			if err != nil {
				return err
			}
			parsed, err := sol.ParseArgs(values)
			if err != nil {
				return err
			}

			hc := solution.HostContext{
				PackagePath: container.Config.PackagePath,
				AppPath:     container.Config.AppPath,
				Args:        parsed,
			}
			_, err = container.LaunchService.Run(cmd.Context(), hc, services.LaunchOptions{
				CheckExit:  checkExit,
				GradleOpts: container.Config.GradleOpts,
			})
			return err
		},
	}

	for _, spec := range sol.Args {
		cmd.Flags().String(spec.Name, "", argUsage(spec))
	}
	cmd.Flags().BoolVar(&checkExit, "check-exit", false, "Fail when the viewer exits with a non-zero status")

	return cmd
}

// collectArgs gathers explicitly set argument flags. A positional value
// fills the first required argument.
func collectArgs(cmd *cobra.Command, sol solution.Solution, positional []string) (map[string]string, error) {
	values := make(map[string]string)
	for _, spec := range sol.Args {
		if !cmd.Flags().Changed(spec.Name) {
			continue
		}
		v, err := cmd.Flags().GetString(spec.Name)
		if err != nil {
			return nil, err
		}
		values[spec.Name] = v
	}

	if len(positional) == 0 {
		return values, nil
	}
	required := sol.RequiredArgs()
	if len(required) == 0 {
		return nil, fmt.Errorf("unexpected argument %q", positional[0])
	}
	name := required[0]
	if _, set := values[name]; set {
		return nil, fmt.Errorf("%s given both as flag and as argument", name)
	}
	values[name] = positional[0]
	return values, nil
}

func argUsage(spec solution.ArgSpec) string {
	usage := spec.Description
	if spec.Required {
		usage += " (required)"
	}
	if spec.Default != "" {
		usage += fmt.Sprintf(" (default %q)", spec.Default)
	}
	return usage
}
