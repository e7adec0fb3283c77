package oerror

import "fmt"

// LocomotionError is the error type returned by loaders and decoders in this module.
type LocomotionError struct {
	Err   string
	cause error
}

// New returns a LocomotionError with a formatted message.
func New(format string, args ...any) *LocomotionError {
	return &LocomotionError{Err: fmt.Sprintf(format, args...)}
}

// Wrap returns a LocomotionError that carries err as its cause.
func Wrap(err error, format string, args ...any) *LocomotionError {
	return &LocomotionError{Err: fmt.Sprintf(format, args...), cause: err}
}

func (e *LocomotionError) Error() string {
	if e.cause != nil {
		return e.Err + ": " + e.cause.Error()
	}
	return e.Err
}

func (e *LocomotionError) Unwrap() error {
	return e.cause
}
