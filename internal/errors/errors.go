package errors

import (
	stderrors "errors"
	"fmt"

	"tabstat/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping its code
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    codeOf(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsAppError checks if an error is or wraps an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError, otherwise the code derived
// from the domain sentinel the error wraps
func GetCode(err error) string {
	if err == nil {
		return ""
	}
	return codeOf(err)
}

func codeOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	switch {
	case core.IsConfigurationError(err):
		return CodeConfiguration
	case core.IsDataSourceError(err):
		return CodeDataSource
	case core.IsStyleError(err):
		return CodeStyle
	case core.IsInsufficientDataError(err):
		return CodeInsufficientData
	}
	return CodeInternalError
}

// Predefined error codes
const (
	CodeConfiguration    = "CONFIGURATION"
	CodeDataSource       = "DATA_SOURCE"
	CodeStyle            = "STYLE"
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeInternalError    = "INTERNAL_ERROR"
)

// Common error constructors. Each wraps the matching domain sentinel so that
// errors.Is works across both layers.
func Configuration(message string) *AppError {
	return &AppError{Code: CodeConfiguration, Message: message, Cause: core.ErrConfiguration}
}

func DataSource(message string, cause error) *AppError {
	return &AppError{Code: CodeDataSource, Message: message, Cause: fmt.Errorf("%w: %w", core.ErrDataSource, cause)}
}

func Style(message string) *AppError {
	return &AppError{Code: CodeStyle, Message: message, Cause: core.ErrStyle}
}

func InsufficientData(message string) *AppError {
	return &AppError{Code: CodeInsufficientData, Message: message, Cause: core.ErrInsufficientData}
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

// ExitCode maps an error code to a process exit status for the CLI.
func ExitCode(err error) int {
	switch GetCode(err) {
	case "":
		return 0
	case CodeConfiguration:
		return 2
	case CodeDataSource:
		return 3
	case CodeStyle:
		return 4
	case CodeInsufficientData:
		return 5
	}
	return 1
}
