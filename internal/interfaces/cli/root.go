package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"kilometers.ai/bdv-viewer/internal/application/services"
	"kilometers.ai/bdv-viewer/internal/config"
	"kilometers.ai/bdv-viewer/internal/core/domain/install"
	"kilometers.ai/bdv-viewer/internal/core/domain/solution"
	"kilometers.ai/bdv-viewer/internal/core/ports"
)

var (
	Version   = "dev"     // Overridden by ldflags
	BuildTime = "unknown" // Overridden by ldflags
)

// ConfigureOptions carries the global flags into the container.
type ConfigureOptions struct {
	ConfigPath string
	// Overrides maps config field names to flag values.
	Overrides map[string]string
}

// Configurator loads configuration and wires the services the commands use.
type Configurator interface {
	Configure(opts ConfigureOptions) error
}

// CLIContainer holds all the dependencies for CLI commands. Everything but
// Solution, the streams and Configurator is filled in by Configure before a
// command runs.
type CLIContainer struct {
	Solution     solution.Solution
	Stdout       io.Writer
	Stderr       io.Writer
	Configurator Configurator

	Config         *config.Config
	ConfigPath     string
	Logger         *zerolog.Logger
	Receipts       ports.ReceiptStore
	InstallService *services.InstallService
	LaunchService  *services.LaunchService

	// InstallServiceFor returns an install service whose build output goes
	// to w instead of the terminal.
	InstallServiceFor func(w io.Writer) *services.InstallService
}

// manifestOnly marks commands that only read the embedded manifest. They
// run without loading configuration, so a broken config file cannot stop
// them.
var manifestOnly = map[string]string{"bdv/config": "skip"}

func needsConfig(cmd *cobra.Command) bool {
	return cmd.Annotations["bdv/config"] != "skip"
}

// NewRootCommand represents the base command when called without any subcommands
func NewRootCommand(container *CLIContainer) *cobra.Command {
	sol := container.Solution
	rootCmd := &cobra.Command{
		Use:   "bdv",
		Short: sol.Title,
		Long: fmt.Sprintf(`%s

%s

The install command copies the viewer's Gradle build into the app directory
and builds it; run opens an OME-ZARR URL in the built viewer.`, sol.Title, sol.Description),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsConfig(cmd) {
				return nil
			}
			opts, err := configureOptions(cmd)
			if err != nil {
				return err
			}
			if err := container.Configurator.Configure(opts); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return nil
		},
	}

	rootCmd.SetOut(container.Stdout)
	rootCmd.SetErr(container.Stderr)
	rootCmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} version {{.Version}}\nSolution: %s\nBuild time: %s\nGo version: %s\nPlatform: %s/%s\n",
		sol.Coordinates(), BuildTime, goVersion(), runtime.GOOS, runtime.GOARCH))

	rootCmd.PersistentFlags().String("config", "", "Config file path (default is $HOME/.bdv/config.yml)")
	rootCmd.PersistentFlags().String("package", "", "Package directory holding the viewer build files")
	rootCmd.PersistentFlags().String("app", "", "App directory the viewer is installed into")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-file", "", "Also write logs to this file")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(NewInstallCommand(container))
	rootCmd.AddCommand(NewRunCommand(container))
	rootCmd.AddCommand(NewStatusCommand(container))
	rootCmd.AddCommand(NewInfoCommand(container))
	rootCmd.AddCommand(NewEnvCommand(container))
	rootCmd.AddCommand(NewConfigCommand(container))
	rootCmd.AddCommand(NewVersionCommand(container))

	return rootCmd
}

// configureOptions collects the persistent flags that were set explicitly.
func configureOptions(cmd *cobra.Command) (ConfigureOptions, error) {
	opts := ConfigureOptions{Overrides: make(map[string]string)}
	flags := cmd.Flags()

	configPath, err := flags.GetString("config")
	if err != nil {
		return opts, err
	}
	opts.ConfigPath = configPath

	flagFields := map[string]string{
		"package":   "package_path",
		"app":       "app_path",
		"log-level": "log_level",
		"log-file":  "log_file",
	}
	for flag, field := range flagFields {
		if !flags.Changed(flag) {
			continue
		}
		v, err := flags.GetString(flag)
		if err != nil {
			return opts, err
		}
		opts.Overrides[field] = v
	}

	if debugOn, _ := flags.GetBool("debug"); debugOn {
		opts.Overrides["log_level"] = "debug"
	}
	return opts, nil
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Execute runs the root command on args and returns the process exit code.
// Build and viewer failures exit with the child's own code.
func Execute(ctx context.Context, container *CLIContainer, args []string) int {
	rootCmd := NewRootCommand(container)
	rootCmd.SetArgs(args)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(container.Stderr, "Error: %v\n", err)
		if code, ok := install.ExitCode(err); ok && code > 0 {
			return code
		}
		return 1
	}
	return 0
}
