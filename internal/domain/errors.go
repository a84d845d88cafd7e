package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned by session stores for unknown ids.
var ErrSessionNotFound = errors.New("session not found")

// ValidationError reports rejected user input: a missing image, empty
// text, an out-of-range post index. It is recovered locally and shown
// to the user as a corrective message; nothing is mutated.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// GatewayError reports a failure at the model-service boundary:
// transport failure, quota or safety rejection, malformed response.
// It is converted into a displayable message at the controller
// boundary and never crashes the session.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("model gateway: %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func NewGatewayError(op string, err error) error {
	return &GatewayError{Op: op, Err: err}
}

// IsGateway reports whether err is (or wraps) a GatewayError.
func IsGateway(err error) bool {
	var g *GatewayError
	return errors.As(err, &g)
}
