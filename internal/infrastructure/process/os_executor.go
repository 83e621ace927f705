package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"kilometers.ai/bdv-viewer/internal/core/domain/process"
)

// Executor runs wrapper commands with the child's output streamed to the
// configured writers.
type Executor struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	env    []string
	logger *zerolog.Logger
}

// NewExecutorWithOptions creates an executor with custom streams. A nil env
// inherits the current environment.
func NewExecutorWithOptions(logger *zerolog.Logger, stdin io.Reader, stdout, stderr io.Writer, env []string) *Executor {
	if env == nil {
		env = os.Environ()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Executor{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		env:    env,
		logger: logger,
	}
}

// Run starts cmd and waits for it to exit.
func (e *Executor) Run(ctx context.Context, cmd process.Command) (process.Result, error) {
	if err := cmd.Validate(); err != nil {
		return process.Result{}, err
	}

	argv := cmd.FullCommandLine()
	execCmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	execCmd.Dir = cmd.WorkingDir()
	execCmd.Env = append(append([]string(nil), e.env...), cmd.EnvList()...)
	execCmd.Stdin = e.stdin
	execCmd.Stdout = e.stdout
	execCmd.Stderr = e.stderr

	e.logger.Debug().
		Str("cmd", cmd.String()).
		Str("dir", cmd.WorkingDir()).
		Strs("env", cmd.EnvList()).
		Msg("starting process")

	start := time.Now()
	err := execCmd.Run()
	result := process.Result{ExitCode: 0, Duration: time.Since(start)}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("%s: %w", cmd.Executable(), ctxErr)
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, fmt.Errorf("failed to start %s: %w", cmd.Executable(), err)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	e.logger.Debug().
		Int("exit_code", result.ExitCode).
		Dur("duration", result.Duration).
		Msg("process finished")

	return result, nil
}
