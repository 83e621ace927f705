package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"kilometers.ai/bdv-viewer/internal/core/domain/install"
	"kilometers.ai/bdv-viewer/internal/core/domain/platform"
	"kilometers.ai/bdv-viewer/internal/core/domain/process"
	"kilometers.ai/bdv-viewer/internal/core/domain/solution"
	"kilometers.ai/bdv-viewer/internal/core/ports"
)

// Install stages reported to InstallOptions.Progress.
const (
	StagePrepare = "preparing app directory"
	StageCopy    = "copying build files"
	StageBuild   = "building viewer"
	StageDone    = "done"
)

// InstallOptions tunes a single install.
type InstallOptions struct {
	SocketTimeoutMillis int
	Conflict            install.ConflictPolicy
	GradleOpts          string
	// Progress, when set, is called as the install enters each stage.
	Progress func(stage string)
}

// InstallService copies the package layout into the app directory and
// builds the viewer there.
type InstallService struct {
	copier   ports.FileCopier
	executor ports.ProcessExecutor
	receipts ports.ReceiptStore
	layout   install.Layout
	platform platform.Platform
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewInstallService creates an install service for the current platform.
func NewInstallService(
	copier ports.FileCopier,
	executor ports.ProcessExecutor,
	receipts ports.ReceiptStore,
	logger *zerolog.Logger,
) *InstallService {
	return &InstallService{
		copier:   copier,
		executor: executor,
		receipts: receipts,
		layout:   install.DefaultLayout(),
		platform: platform.Current(),
		logger:   logger,
		now:      time.Now,
	}
}

// WithPlatform returns a copy of the service resolving wrappers for p.
func (s *InstallService) WithPlatform(p platform.Platform) *InstallService {
	clone := *s
	clone.platform = p
	return &clone
}

// Install runs the install step. A build that exits non-zero is returned as
// *install.BuildError and no receipt is written.
func (s *InstallService) Install(ctx context.Context, hc solution.HostContext, sol solution.Solution, opts InstallOptions) (install.Receipt, error) {
	progress := opts.Progress
	if progress == nil {
		progress = func(string) {}
	}
	if hc.PackagePath == "" || hc.AppPath == "" {
		return install.Receipt{}, fmt.Errorf("install: package path and app path are required")
	}

	progress(StagePrepare)
	if err := os.MkdirAll(hc.AppPath, 0755); err != nil {
		return install.Receipt{}, fmt.Errorf("install: create app directory: %w", err)
	}
	// A refused install must leave an earlier one usable.
	if opts.Conflict != install.ConflictReplace {
		if err := s.checkConflicts(hc.AppPath); err != nil {
			return install.Receipt{}, fmt.Errorf("install: %w", err)
		}
	}

	progress(StageCopy)
	// A receipt from an earlier install no longer describes the directory
	// once copying starts.
	if err := s.receipts.Remove(hc.AppPath); err != nil {
		return install.Receipt{}, fmt.Errorf("install: %w", err)
	}
	if err := s.copyLayout(hc, opts.Conflict); err != nil {
		return install.Receipt{}, fmt.Errorf("install: %w", err)
	}

	progress(StageBuild)
	executable, err := platform.ResolveExecutable(s.platform, hc.AppPath)
	if err != nil {
		return install.Receipt{}, fmt.Errorf("install: %w", err)
	}
	cmd, err := process.NewCommand(executable, install.BuildArgs(opts.SocketTimeoutMillis), hc.AppPath)
	if err != nil {
		return install.Receipt{}, fmt.Errorf("install: %w", err)
	}
	cmd = install.WithGradleOpts(cmd, opts.GradleOpts)

	s.logger.Info().Str("solution", sol.Coordinates()).Str("cmd", cmd.String()).Msg("building")
	result, err := s.executor.Run(ctx, cmd)
	if err != nil {
		return install.Receipt{}, fmt.Errorf("install: run build: %w", err)
	}
	if !result.Success() {
		return install.Receipt{}, fmt.Errorf("install: %w", &install.BuildError{ExitCode: result.ExitCode})
	}

	receipt := install.Receipt{
		Solution:      sol.Coordinates(),
		Executable:    executable,
		PackagePath:   hc.PackagePath,
		InstalledAt:   s.now().UTC(),
		BuildDuration: result.Duration,
	}
	if err := s.receipts.Save(hc.AppPath, receipt); err != nil {
		return install.Receipt{}, fmt.Errorf("install: %w", err)
	}

	s.logger.Info().
		Str("solution", receipt.Solution).
		Dur("build_duration", result.Duration).
		Msg("installed")
	progress(StageDone)
	return receipt, nil
}

func (s *InstallService) copyLayout(hc solution.HostContext, conflict install.ConflictPolicy) error {
	for _, name := range s.layout.Files {
		if err := s.copier.CopyFile(filepath.Join(hc.PackagePath, name), filepath.Join(hc.AppPath, name)); err != nil {
			return err
		}
		s.logger.Debug().Str("file", name).Msg("copied")
	}

	for _, name := range s.layout.Dirs {
		dst := filepath.Join(hc.AppPath, name)
		if conflict == install.ConflictReplace {
			if err := removeExisting(dst); err != nil {
				return err
			}
		}
		if err := s.copier.CopyDir(filepath.Join(hc.PackagePath, name), dst); err != nil {
			if errors.Is(err, install.ErrDestinationExists) {
				return fmt.Errorf("%w (rerun with --force to replace it)", err)
			}
			return err
		}
		s.logger.Debug().Str("dir", name).Msg("copied")
	}
	s.logger.Debug().Strs("entries", s.layout.Entries()).Msg("layout copied")
	return nil
}

// checkConflicts reports the first layout directory already present in
// appDir, before anything in it is touched.
func (s *InstallService) checkConflicts(appDir string) error {
	for _, name := range s.layout.Dirs {
		dst := filepath.Join(appDir, name)
		_, err := os.Lstat(dst)
		if err == nil {
			return fmt.Errorf("%s: %w (rerun with --force to replace it)", dst, install.ErrDestinationExists)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func removeExisting(path string) error {
	if _, err := os.Lstat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
