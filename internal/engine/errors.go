package engine

import "fmt"

// ValidationError marks a malformed analysis request: unknown provider or
// service, or a data payload that does not decode into the expected resource
// variant. It is the only engine failure surfaced to the caller; everything
// else is absorbed with logging.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// ValidationErrorf builds a ValidationError with a formatted message.
func ValidationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}
