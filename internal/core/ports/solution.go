package ports

import (
	"context"

	"kilometers.ai/bdv-viewer/internal/core/domain/install"
	"kilometers.ai/bdv-viewer/internal/core/domain/process"
)

// ProcessExecutor runs a command to completion.
type ProcessExecutor interface {
	// Run blocks until the command exits. A non-zero exit is reported in
	// the Result, not as an error; err is reserved for commands that could
	// not be started or were cancelled.
	Run(ctx context.Context, cmd process.Command) (process.Result, error)
}

// FileCopier copies package entries into the app directory.
type FileCopier interface {
	// CopyFile copies a single file, overwriting dst.
	CopyFile(src, dst string) error

	// CopyDir copies a directory tree. dst must not exist.
	CopyDir(src, dst string) error
}

// ReceiptStore persists the install receipt inside an app directory.
type ReceiptStore interface {
	Save(appDir string, receipt install.Receipt) error

	// Load returns install.ErrNotInstalled when no receipt exists.
	Load(appDir string) (install.Receipt, error)

	Remove(appDir string) error
}
