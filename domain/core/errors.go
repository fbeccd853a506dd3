package core

import (
	"errors"
	"fmt"
)

// Engine error taxonomy. Every error raised by the engine wraps exactly one of these.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrInsufficientData = errors.New("insufficient data")
	ErrStyle            = errors.New("style error")
	ErrDataSource       = errors.New("data source error")

	ErrVariableNotFound = fmt.Errorf("%w: variable not found", ErrConfiguration)
	ErrMissingSortOrder = fmt.Errorf("%w: custom sort order not supplied", ErrConfiguration)
	ErrArity            = fmt.Errorf("%w: wrong number of groups", ErrConfiguration)
)

// Error constructors with context
func NewConfigurationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}

func NewInsufficientDataError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, fmt.Sprintf(format, args...))
}

func NewStyleError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStyle, fmt.Sprintf(format, args...))
}

func NewDataSourceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDataSource, op, err)
}

func NewVariableNotFoundError(variable, table string) error {
	return fmt.Errorf("%w: %q in %q", ErrVariableNotFound, variable, table)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsStyleError(err error) bool {
	return errors.Is(err, ErrStyle)
}

func IsDataSourceError(err error) bool {
	return errors.Is(err, ErrDataSource)
}
