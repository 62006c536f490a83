package cli

import "errors"

// CommandError signals a command failure with a specific exit code.
// Commands return it after printing their diagnostics, so main only has to
// exit without printing anything else.
type CommandError struct {
	exitCode int
}

// NewCommandError creates a new CommandError with the given exit code.
func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	return "command failed"
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}

// ExitCode maps the error returned by a command to a process exit code:
// 0 for nil, the code of a CommandError, and 1 otherwise. The second result
// reports whether err still needs to be printed.
func ExitCode(err error) (int, bool) {
	if err == nil {
		return 0, false
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode(), false
	}
	return 1, true
}
