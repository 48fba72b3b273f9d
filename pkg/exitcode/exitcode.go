// Package exitcode provides standardized exit codes for distcheck
package exitcode

import "errors"

// Exit codes for distcheck CLI
const (
	Success        = 0
	Mismatch       = 1
	ConfigError    = 2
	MalformedAsset = 3
	FileSystemErr  = 4
)

// GeneralError is used for failures that carry no specific code.
const GeneralError = Mismatch

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case Mismatch:
		return "Version mismatch"
	case ConfigError:
		return "Configuration error"
	case MalformedAsset:
		return "Malformed asset"
	case FileSystemErr:
		return "File system error"
	default:
		return "Unknown error"
	}
}

// Error carries a process exit code alongside the underlying error.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return String(e.Code)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap attaches an exit code to err. A nil err with a non-zero code still
// produces an error so callers can signal failure without a message.
func Wrap(code int, err error) error {
	if err == nil && code == Success {
		return nil
	}
	return &Error{Code: code, Err: err}
}

// From extracts the exit code from err. Errors without an attached code
// map to GeneralError; nil maps to Success.
func From(err error) int {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return GeneralError
}
