package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for lattice simulation operations.
var (
	// ErrConfiguration indicates invalid dimensions, an unknown dynamics
	// selector, unphysical proportions or a malformed initial grid.
	ErrConfiguration = errors.New("dynamo: invalid configuration")

	// ErrNumericDomain indicates a constant that must be strictly positive
	// (temperature, Boltzmann scale) was not.
	ErrNumericDomain = errors.New("dynamo: numeric domain violation")

	// ErrEmptySeries indicates statistics were requested from an empty series.
	ErrEmptySeries = errors.New("dynamo: empty measurement series")

	// ErrStopped indicates a sweep was requested after the run reached a
	// terminal state.
	ErrStopped = errors.New("dynamo: simulation stopped")
)

// ParamError wraps a sentinel with the offending parameter.
type ParamError struct {
	Param  string
	Value  any
	Reason string
	Err    error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s: %s=%v: %s", e.Err.Error(), e.Param, e.Value, e.Reason)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

// ConfigErrorf reports a configuration problem with param.
func ConfigErrorf(param string, value any, format string, args ...any) error {
	return &ParamError{Param: param, Value: value, Reason: fmt.Sprintf(format, args...), Err: ErrConfiguration}
}

// DomainErrorf reports a numeric domain problem with param.
func DomainErrorf(param string, value any, format string, args ...any) error {
	return &ParamError{Param: param, Value: value, Reason: fmt.Sprintf(format, args...), Err: ErrNumericDomain}
}
