package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"kilometers.ai/bdv-viewer/internal/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand(container *CLIContainer) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `View and change the settings used by install and run.

Values are taken from defaults, the config file, BDV_* environment
variables and flags, in increasing order of precedence.`,
	}

	configCmd.AddCommand(NewConfigShowCommand(container))
	configCmd.AddCommand(NewConfigSetCommand(container))
	configCmd.AddCommand(NewConfigPathCommand(container))

	return configCmd
}

// NewConfigShowCommand creates the show subcommand
func NewConfigShowCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printConfig(container.Stdout, container.Config)
			return nil
		},
	}
}

// NewConfigSetCommand creates the set subcommand
func NewConfigSetCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Store a setting in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SetInFile(container.ConfigPath, args[0], args[1], container.Solution); err != nil {
				return err
			}
			fmt.Fprintf(container.Stdout, "Set %s in %s\n", args[0], container.ConfigPath)
			return nil
		},
	}
}

// NewConfigPathCommand creates the path subcommand
func NewConfigPathCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(container.Stdout, container.ConfigPath)
			return nil
		},
	}
}

func printConfig(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Current Configuration:")
	for _, field := range config.Fields() {
		value, _ := cfg.Get(field)
		if value == "" {
			value = "(not set)"
		}
		fmt.Fprintf(w, "%-18s %-50s [%s]\n", field+":", value, cfg.Sources[field])
	}
}
