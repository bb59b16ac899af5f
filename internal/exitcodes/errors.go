package exitcodes

import "fmt"

// ErrorWithCode carries an exit code alongside the message so Execute
// can map failures to the documented codes.
type ErrorWithCode struct {
	Code    int
	Message string
	Cause   error
}

func (e *ErrorWithCode) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ErrorWithCode) Unwrap() error { return e.Cause }

// NewError builds a coded error with a plain message.
func NewError(code int, message string) *ErrorWithCode {
	return &ErrorWithCode{Code: code, Message: message}
}

// WrapError attaches an exit code to an underlying cause.
func WrapError(code int, message string, cause error) *ErrorWithCode {
	return &ErrorWithCode{Code: code, Message: message, Cause: cause}
}

// Constructors for the common codes.

func InvalidArgsError(message string) *ErrorWithCode { return NewError(InvalidArgs, message) }

func PreconditionError(message string) *ErrorWithCode { return NewError(PreconditionFailed, message) }

func NetworkErr(message string) *ErrorWithCode { return NewError(NetworkError, message) }

func ProcessErr(message string) *ErrorWithCode { return NewError(ProcessError, message) }

func ValidationErr(message string) *ErrorWithCode { return NewError(ValidationError, message) }
