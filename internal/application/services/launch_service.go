package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"kilometers.ai/bdv-viewer/internal/core/domain/install"
	"kilometers.ai/bdv-viewer/internal/core/domain/platform"
	"kilometers.ai/bdv-viewer/internal/core/domain/process"
	"kilometers.ai/bdv-viewer/internal/core/domain/solution"
	"kilometers.ai/bdv-viewer/internal/core/ports"
)

// URLArg is the argument carrying the OME-ZARR location.
const URLArg = "ome_zarr_url"

// LaunchOptions tunes a single launch.
type LaunchOptions struct {
	// CheckExit turns a non-zero viewer exit into an *install.LaunchError.
	// Off by default: the viewer is interactive and its exit status is
	// only logged.
	CheckExit bool
	// GradleOpts is exported to the wrapper as GRADLE_OPTS when set.
	GradleOpts string
}

// LaunchService starts the built viewer.
type LaunchService struct {
	executor ports.ProcessExecutor
	receipts ports.ReceiptStore
	platform platform.Platform
	logger   *zerolog.Logger
}

// NewLaunchService creates a launch service for the current platform.
func NewLaunchService(executor ports.ProcessExecutor, receipts ports.ReceiptStore, logger *zerolog.Logger) *LaunchService {
	return &LaunchService{
		executor: executor,
		receipts: receipts,
		platform: platform.Current(),
		logger:   logger,
	}
}

// WithPlatform returns a copy of the service resolving wrappers for p.
func (s *LaunchService) WithPlatform(p platform.Platform) *LaunchService {
	clone := *s
	clone.platform = p
	return &clone
}

// Run is the host's run entry point: it checks the app directory was
// installed, resolves the wrapper and launches the viewer on the URL
// argument.
func (s *LaunchService) Run(ctx context.Context, hc solution.HostContext, opts LaunchOptions) (process.Result, error) {
	url, ok := hc.Args.Get(URLArg)
	if !ok || url == "" {
		return process.Result{}, fmt.Errorf("run: %w: %s", solution.ErrMissingArgument, URLArg)
	}
	if _, err := s.receipts.Load(hc.AppPath); err != nil {
		return process.Result{}, fmt.Errorf("run: %w", err)
	}
	executable, err := platform.ResolveExecutable(s.platform, hc.AppPath)
	if err != nil {
		return process.Result{}, fmt.Errorf("run: %w", err)
	}
	return s.Launch(ctx, executable, hc.AppPath, url, opts)
}

// Launch runs `<executable> run -q --args="<url>"` in appDir.
func (s *LaunchService) Launch(ctx context.Context, executable, appDir, url string, opts LaunchOptions) (process.Result, error) {
	cmd, err := process.NewCommand(executable, install.RunArgs(url), appDir)
	if err != nil {
		return process.Result{}, fmt.Errorf("run: %w", err)
	}
	cmd = install.WithGradleOpts(cmd, opts.GradleOpts)

	s.logger.Info().Str("url", url).Msg("launching viewer")
	result, err := s.executor.Run(ctx, cmd)
	if err != nil {
		return result, fmt.Errorf("run: %w", err)
	}

	if !result.Success() {
		if opts.CheckExit {
			return result, fmt.Errorf("run: %w", &install.LaunchError{ExitCode: result.ExitCode})
		}
		s.logger.Warn().Int("exit_code", result.ExitCode).Msg("viewer exited with non-zero status")
	}
	return result, nil
}
