package install

import (
	"errors"
	"fmt"
)

var (
	// ErrDestinationExists is returned when a layout directory is already in
	// the app directory and the conflict policy is ConflictFail.
	ErrDestinationExists = errors.New("destination already exists")
	// ErrNotInstalled is returned when the app directory has no install receipt.
	ErrNotInstalled = errors.New("solution is not installed")
)

// BuildError reports a build step that exited non-zero.
type BuildError struct {
	ExitCode int
	Err      error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed with exit code %d", e.ExitCode)
}

func (e *BuildError) Unwrap() error { return e.Err }

// LaunchError reports a viewer process that exited non-zero.
type LaunchError struct {
	ExitCode int
	Err      error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("viewer exited with code %d", e.ExitCode)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitCode extracts the child exit code carried by err, if any.
func ExitCode(err error) (int, bool) {
	var be *BuildError
	if errors.As(err, &be) {
		return be.ExitCode, true
	}
	var le *LaunchError
	if errors.As(err, &le) {
		return le.ExitCode, true
	}
	return 0, false
}
