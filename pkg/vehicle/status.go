package vehicle

import (
	"errors"
	"fmt"
)

// StatusCode is the outcome of a call or of a single request.
type StatusCode uint8

const (
	StatusOK            StatusCode = 0
	StatusTryAgain      StatusCode = 1
	StatusInvalidArg    StatusCode = 2
	StatusNotAvailable  StatusCode = 3
	StatusAccessDenied  StatusCode = 4
	StatusInternalError StatusCode = 5
)

// String returns the status name.
func (s StatusCode) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusTryAgain:
		return "TRY_AGAIN"
	case StatusInvalidArg:
		return "INVALID_ARG"
	case StatusNotAvailable:
		return "NOT_AVAILABLE"
	case StatusAccessDenied:
		return "ACCESS_DENIED"
	case StatusInternalError:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s StatusCode) IsSuccess() bool {
	return s == StatusOK
}

// StatusError is an error carrying a StatusCode.
type StatusError struct {
	Code    StatusCode
	Message string
	Err     error // cause, optional
}

// Error implements error.
func (e *StatusError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	default:
		return e.Code.String()
	}
}

// Unwrap returns the cause.
func (e *StatusError) Unwrap() error {
	return e.Err
}

// Errorf returns a StatusError with a formatted message.
func Errorf(code StatusCode, format string, args ...any) error {
	return &StatusError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapStatus attaches code to err. A nil err stays nil.
func WrapStatus(code StatusCode, err error) error {
	if err == nil {
		return nil
	}
	return &StatusError{Code: code, Err: err}
}

// StatusOf returns the StatusCode carried by err. A nil error is StatusOK;
// errors without a code map to StatusInternalError.
func StatusOf(err error) StatusCode {
	if err == nil {
		return StatusOK
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return StatusInternalError
}
