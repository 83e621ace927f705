package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// HostAPIVersion is the solution API version this runner implements.
const HostAPIVersion = "0.5.5"

// NewVersionCommand creates the version command
func NewVersionCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Args:        cobra.NoArgs,
		Annotations: manifestOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion(container)
		},
	}
}

func runVersion(container *CLIContainer) error {
	sol := container.Solution
	compatible, err := sol.RequiresAPI(HostAPIVersion)
	if err != nil {
		return err
	}

	out := container.Stdout
	fmt.Fprintf(out, "bdv %s\n", Version)
	fmt.Fprintf(out, "Solution: %s\n", sol.Coordinates())
	fmt.Fprintf(out, "Solution API: %s (runner %s)\n", sol.AlbumAPIVersion, HostAPIVersion)
	fmt.Fprintf(out, "Build time: %s\n", BuildTime)
	fmt.Fprintf(out, "Go version: %s\n", goVersion())
	fmt.Fprintf(out, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)

	if !compatible {
		fmt.Fprintf(container.Stderr, "Warning: solution needs a newer runner API (%s > %s)\n",
			sol.AlbumAPIVersion, HostAPIVersion)
	}
	return nil
}

// goVersion returns the Go version used to build the binary
func goVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.GoVersion
	}
	return "unknown"
}
