package domain

import "errors"

// InvalidArgumentError indicates a rejected-argument condition: an unknown
// service/class/method, a blank identifier, or a behaviour outside the
// allowed set. These fail fast at the point of the offending call.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// NewInvalidArgumentError creates an InvalidArgumentError with the given message.
func NewInvalidArgumentError(message string) *InvalidArgumentError {
	return &InvalidArgumentError{Message: message}
}

// IsInvalidArgument checks if an error is an InvalidArgumentError using
// error unwrapping.
func IsInvalidArgument(err error) bool {
	var invalidErr *InvalidArgumentError
	return errors.As(err, &invalidErr)
}
