package process

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Command is a wrapper invocation: executable, arguments and the directory
// it has to run in.
type Command struct {
	executable string
	args       []string
	workingDir string
	env        map[string]string
}

// NewCommand creates a Command running in workingDir. A relative working
// directory is resolved against the current directory.
func NewCommand(executable string, args []string, workingDir string) (Command, error) {
	if strings.TrimSpace(executable) == "" {
		return Command{}, fmt.Errorf("executable cannot be empty")
	}
	if strings.TrimSpace(workingDir) == "" {
		return Command{}, fmt.Errorf("working directory cannot be empty")
	}

	if !filepath.IsAbs(workingDir) {
		if absDir, err := filepath.Abs(workingDir); err == nil {
			workingDir = absDir
		}
	}

	return Command{
		executable: executable,
		args:       append([]string(nil), args...),
		workingDir: workingDir,
		env:        make(map[string]string),
	}, nil
}

// Executable returns the command executable
func (c Command) Executable() string {
	return c.executable
}

// Args returns a copy of the command arguments
func (c Command) Args() []string {
	return append([]string(nil), c.args...)
}

// WorkingDir returns the working directory for the command
func (c Command) WorkingDir() string {
	return c.workingDir
}

// Env returns a copy of the extra environment variables
func (c Command) Env() map[string]string {
	envCopy := make(map[string]string, len(c.env))
	for k, v := range c.env {
		envCopy[k] = v
	}
	return envCopy
}

// EnvList returns the extra environment as sorted KEY=VALUE pairs.
func (c Command) EnvList() []string {
	list := make([]string, 0, len(c.env))
	for k, v := range c.env {
		list = append(list, k+"="+v)
	}
	sort.Strings(list)
	return list
}

// WithEnv returns a new Command with an additional environment variable
func (c Command) WithEnv(key, value string) Command {
	env := c.Env()
	env[key] = value
	return Command{
		executable: c.executable,
		args:       c.Args(),
		workingDir: c.workingDir,
		env:        env,
	}
}

// String returns a string representation of the command
func (c Command) String() string {
	if len(c.args) == 0 {
		return c.executable
	}
	return fmt.Sprintf("%s %s", c.executable, strings.Join(c.args, " "))
}

// FullCommandLine returns the executable followed by its arguments
func (c Command) FullCommandLine() []string {
	result := make([]string, 0, len(c.args)+1)
	result = append(result, c.executable)
	result = append(result, c.args...)
	return result
}

// Validate checks that the working directory exists.
func (c Command) Validate() error {
	if c.executable == "" {
		return fmt.Errorf("executable cannot be empty")
	}
	stat, err := os.Stat(c.workingDir)
	if err != nil || !stat.IsDir() {
		return fmt.Errorf("working directory does not exist: %s", c.workingDir)
	}
	return nil
}
