package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kilometers.ai/bdv-viewer/internal/application/services"
	"kilometers.ai/bdv-viewer/internal/core/domain/install"
	"kilometers.ai/bdv-viewer/internal/core/domain/solution"
)

// InstallFlags holds command-line flags for the install command
type InstallFlags struct {
	Force         bool
	Progress      bool
	SocketTimeout int
}

// NewInstallCommand creates the install command
func NewInstallCommand(container *CLIContainer) *cobra.Command {
	flags := &InstallFlags{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Copy the viewer build into the app directory and build it",
		Long: `Copy build.gradle, the Gradle wrapper scripts, src/ and gradle/ from the
package directory into the app directory, then run the wrapper's build task
there.

An app directory left over from an earlier install is refused unless
--force is given, in which case the copied directories are replaced.

Examples:
  bdv install --package ./viewer
  bdv install --app /data/apps/bdv --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, container, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.Force, "force", false, "Replace directories left by an earlier install")
	cmd.Flags().BoolVar(&flags.Progress, "progress", IsTerminal(container.Stdout), "Show a spinner instead of the build output")
	cmd.Flags().IntVar(&flags.SocketTimeout, "socket-timeout", 0, "Gradle HTTP socket timeout in milliseconds (default from config)")

	return cmd
}

func runInstall(cmd *cobra.Command, container *CLIContainer, flags *InstallFlags) error {
	cfg := container.Config
	hc := solution.HostContext{PackagePath: cfg.PackagePath, AppPath: cfg.AppPath}

	opts := services.InstallOptions{
		SocketTimeoutMillis: cfg.SocketTimeoutMillis,
		Conflict:            cfg.Conflict(),
		GradleOpts:          cfg.GradleOpts,
	}
	if flags.SocketTimeout > 0 {
		opts.SocketTimeoutMillis = flags.SocketTimeout
	}
	if flags.Force {
		opts.Conflict = install.ConflictReplace
	}

	container.Logger.Debug().
		Str("package", hc.PackagePath).
		Str("app", hc.AppPath).
		Str("conflict", string(opts.Conflict)).
		Msg("install")

	var receipt install.Receipt
	if flags.Progress {
		var buildOutput bytes.Buffer
		svc := container.InstallServiceFor(&buildOutput)
		err := runWithProgress(container.Stdout, "Installing "+container.Solution.Name, func(progress func(string)) error {
			opts.Progress = progress
			var err error
			receipt, err = svc.Install(cmd.Context(), hc, container.Solution, opts)
			return err
		})
		if err != nil {
			if tail := lastLines(buildOutput.String(), 40); tail != "" {
				fmt.Fprintln(container.Stderr, tail)
			}
			return err
		}
	} else {
		var err error
		receipt, err = container.InstallService.Install(cmd.Context(), hc, container.Solution, opts)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(container.Stdout, "Installed %s into %s\n", receipt.Solution, hc.AppPath)
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
