// Package filesystem implements the app directory side of install: copying
// package entries and keeping the install receipt.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	cp "github.com/otiai10/copy"

	"kilometers.ai/bdv-viewer/internal/core/domain/install"
)

// Copier copies package entries, keeping file modes so the wrapper scripts
// stay executable.
type Copier struct{}

// NewCopier creates a new copier
func NewCopier() *Copier {
	return &Copier{}
}

// CopyFile copies a regular file from src to dst, overwriting dst.
func (c *Copier) CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: is a directory", src)
	}
	if err := cp.Copy(src, dst); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}

// CopyDir copies the directory tree at src to dst. It refuses to touch an
// existing dst and returns install.ErrDestinationExists instead.
func (c *Copier) CopyDir(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("copy %s: not a directory", src)
	}

	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("copy %s: %s: %w", src, dst, install.ErrDestinationExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("copy %s: %w", src, err)
	}

	opts := cp.Options{
		OnSymlink: func(string) cp.SymlinkAction { return cp.Shallow },
	}
	if err := cp.Copy(src, dst, opts); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return nil
}
