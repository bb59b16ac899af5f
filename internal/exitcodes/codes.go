// Package exitcodes defines the exit codes odlctl reports and the
// coded errors commands return to select them.
package exitcodes

import "errors"

const (
	Success      = 0
	GeneralError = 1

	// InvalidArgs covers bad flags or arguments.
	InvalidArgs = 2

	// PreconditionFailed covers missing prerequisites, e.g. the
	// controller is not installed or a config file is absent.
	PreconditionFailed = 3

	// NetworkError covers downloads and REST endpoint failures.
	NetworkError = 4

	// ProcessError covers service and process management failures.
	ProcessError = 5

	// ValidationError covers unsupported OS families, unknown install
	// methods and strict status checks.
	ValidationError = 6
)

// CodeForError maps an error to its exit code. Errors without an
// embedded ErrorWithCode report GeneralError.
func CodeForError(err error) int {
	if err == nil {
		return Success
	}
	var ec *ErrorWithCode
	if errors.As(err, &ec) {
		return ec.Code
	}
	return GeneralError
}
