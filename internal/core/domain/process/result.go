// Package process models the external commands the solution runs.
package process

import "time"

// Result is the outcome of a command that ran to completion.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Success reports whether the command exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}
