package di

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"kilometers.ai/bdv-viewer/internal/application/services"
	"kilometers.ai/bdv-viewer/internal/config"
	"kilometers.ai/bdv-viewer/internal/core/domain/solution"
	"kilometers.ai/bdv-viewer/internal/infrastructure/filesystem"
	"kilometers.ai/bdv-viewer/internal/infrastructure/process"
	"kilometers.ai/bdv-viewer/internal/interfaces/cli"
	"kilometers.ai/bdv-viewer/internal/logging"
)

// Container holds all application dependencies
type Container struct {
	Solution solution.Solution
	Config   *config.Config
	Logger   *zerolog.Logger

	// Infrastructure
	Copier   *filesystem.Copier
	Receipts *filesystem.ReceiptStore
	Executor *process.Executor

	// Application services
	InstallService *services.InstallService
	LaunchService  *services.LaunchService

	// CLI
	CLIContainer *cli.CLIContainer

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewContainer creates a container attached to the process's standard streams
func NewContainer() (*Container, error) {
	return NewContainerWithIO(os.Stdin, os.Stdout, os.Stderr)
}

// NewContainerWithIO creates a container with custom streams. Services are
// wired later by Configure, once the global flags are known.
func NewContainerWithIO(stdin io.Reader, stdout, stderr io.Writer) (*Container, error) {
	sol, err := solution.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load solution manifest: %w", err)
	}

	c := &Container{
		Solution: sol,
		Copier:   filesystem.NewCopier(),
		Receipts: filesystem.NewReceiptStore(),
		stdin:    stdin,
		stdout:   stdout,
		stderr:   stderr,
	}
	c.CLIContainer = &cli.CLIContainer{
		Solution:     sol,
		Stdout:       stdout,
		Stderr:       stderr,
		Configurator: c,
	}
	return c, nil
}

// Configure loads configuration, applies flag overrides and wires the
// logger and services into the CLI container.
func (c *Container) Configure(opts cli.ConfigureOptions) error {
	cfg, err := config.Load(opts.ConfigPath, c.Solution)
	if err != nil {
		return err
	}
	for field, value := range opts.Overrides {
		if err := cfg.Set(field, value, config.SourceFlag); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.Config = cfg
	c.Logger = logging.NewLogger(logging.Config{
		Level:   cfg.LogLevel,
		LogFile: cfg.LogFile,
		NoColor: !cli.IsTerminal(c.stderr),
		Out:     c.stderr,
	})
	c.Executor = process.NewExecutorWithOptions(c.Logger, c.stdin, c.stdout, c.stderr, nil)
	c.InstallService = services.NewInstallService(c.Copier, c.Executor, c.Receipts, c.Logger)
	c.LaunchService = services.NewLaunchService(c.Executor, c.Receipts, c.Logger)

	c.CLIContainer.Config = cfg
	c.CLIContainer.ConfigPath = config.ResolvePath(opts.ConfigPath)
	c.CLIContainer.Logger = c.Logger
	c.CLIContainer.Receipts = c.Receipts
	c.CLIContainer.InstallService = c.InstallService
	c.CLIContainer.LaunchService = c.LaunchService
	c.CLIContainer.InstallServiceFor = c.installServiceWithOutput

	c.Logger.Debug().Str("solution", c.Solution.Coordinates()).Msg("container configured")
	return nil
}

// installServiceWithOutput wires an install service whose build output is
// captured in w.
func (c *Container) installServiceWithOutput(w io.Writer) *services.InstallService {
	executor := process.NewExecutorWithOptions(c.Logger, nil, w, w, nil)
	return services.NewInstallService(c.Copier, executor, c.Receipts, c.Logger)
}
