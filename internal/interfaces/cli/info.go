package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"kilometers.ai/bdv-viewer/internal/core/domain/install"
	"kilometers.ai/bdv-viewer/internal/core/domain/solution"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// NewInfoCommand creates the info command
func NewInfoCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:         "info",
		Short:       "Show the solution's metadata",
		Args:        cobra.NoArgs,
		Annotations: manifestOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(container.Stdout, renderInfo(container.Solution))
			return nil
		},
	}
}

func renderInfo(sol solution.Solution) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(sol.Title))
	b.WriteString("\n")
	b.WriteString(sol.Description)
	b.WriteString("\n\n")

	row := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(labelStyle.Render(label))
		b.WriteString(value)
		b.WriteString("\n")
	}
	row("Solution", sol.Coordinates())
	row("Creators", strings.Join(sol.SolutionCreators, ", "))
	row("Tags", strings.Join(sol.Tags, ", "))
	row("Album API", ">= "+sol.AlbumAPIVersion)

	if len(sol.Args) > 0 {
		b.WriteString("\nArguments:\n")
		for _, arg := range sol.Args {
			req := ""
			if arg.Required {
				req = ", required"
			}
			fmt.Fprintf(&b, "  --%s (%s%s)  %s\n", arg.Name, arg.Type, req, arg.Description)
		}
	}

	if len(sol.Cite) > 0 {
		b.WriteString("\nPlease cite:\n")
		for _, c := range sol.Cite {
			fmt.Fprintf(&b, "  %s\n", c.Text)
			if c.DOI != "" {
				fmt.Fprintf(&b, "  https://doi.org/%s\n", c.DOI)
			}
		}
	}

	return boxStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// NewEnvCommand creates the env command
func NewEnvCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:         "env",
		Short:       "Print the conda environment file the host provisions",
		Args:        cobra.NoArgs,
		Annotations: manifestOnly,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := container.Solution.EnvironmentFile()
			if err != nil {
				return err
			}
			_, err = container.Stdout.Write(data)
			return err
		},
	}
}

// NewStatusCommand creates the status command
func NewStatusCommand(container *CLIContainer) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the viewer is installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			appPath := container.Config.AppPath
			receipt, err := container.Receipts.Load(appPath)
			if errors.Is(err, install.ErrNotInstalled) {
				fmt.Fprintf(container.Stdout, "%s is not installed in %s\n", container.Solution.Coordinates(), appPath)
				return nil
			}
			if err != nil {
				return err
			}

			var b strings.Builder
			b.WriteString(labelStyle.Render("Solution") + receipt.Solution + "\n")
			b.WriteString(labelStyle.Render("App dir") + appPath + "\n")
			b.WriteString(labelStyle.Render("Package") + receipt.PackagePath + "\n")
			b.WriteString(labelStyle.Render("Executable") + receipt.Executable + "\n")
			b.WriteString(labelStyle.Render("Installed") + receipt.InstalledAt.Local().Format("2006-01-02 15:04:05") + "\n")
			b.WriteString(labelStyle.Render("Build time") + receipt.BuildDuration.Round(time.Second).String())
			fmt.Fprintln(container.Stdout, b.String())
			return nil
		},
	}
}
