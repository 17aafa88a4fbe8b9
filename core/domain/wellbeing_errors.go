package domain

import (
	"errors"
	"fmt"
)

// ErrEmployeeNotFound is returned when an employee id does not resolve.
var ErrEmployeeNotFound = errors.New("employee not found")

// ErrThemeNotFound is returned when a theme lookup misses.
var ErrThemeNotFound = errors.New("theme not found")

// Gateway stages.
const (
	StageAnalyze  = "analyze"
	StageFallback = "fallback"
)

// GatewayError is a failed or unparseable language model call.
type GatewayError struct {
	Stage string
	Err   error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Stage, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// IsGatewayError reports whether err wraps a *GatewayError.
func IsGatewayError(err error) bool {
	var gwErr *GatewayError
	return errors.As(err, &gwErr)
}
