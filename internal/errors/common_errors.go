package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeInputFormat ErrorType = "INPUT_FORMAT"
	ErrTypeNoInput     ErrorType = "NO_INPUT"
	ErrTypeInputSchema ErrorType = "INPUT_SCHEMA"
	ErrTypeComputation ErrorType = "COMPUTATION"
	ErrTypeParsing     ErrorType = "PARSING"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeValidation  ErrorType = "VALIDATION"
	ErrTypeNotFound    ErrorType = "NOT_FOUND"
	ErrTypeConfig      ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err wraps an AppError of type t.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// TypeOf returns the type of the first AppError in err's chain, or "".
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// Helper functions for common error types

// NewInputFormatError reports an upload that is not an .xlsx workbook.
func NewInputFormatError(filename string) *AppError {
	return NewAppError(ErrTypeInputFormat, "only .xlsx files are allowed", nil).
		WithContext("filename", filename)
}

// NewNoInputError reports that no order payment files are available.
func NewNoInputError() *AppError {
	return NewAppError(ErrTypeNoInput, "no order payment files available", nil)
}

// NewInputSchemaError reports missing headers or a missing sheet.
func NewInputSchemaError(message string, missing []string) *AppError {
	e := NewAppError(ErrTypeInputSchema, message, nil)
	if len(missing) > 0 {
		e.Message = fmt.Sprintf("%s: %s", message, strings.Join(missing, ", "))
		e.WithContext("missing_columns", missing)
	}
	return e
}

// NewComputationError creates a computation error
func NewComputationError(message string, cause error) *AppError {
	return NewAppError(ErrTypeComputation, message, cause)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewAppValidationError creates a validation error for AppError type
func NewAppValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("%s not found", resource), nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// Is forwards to the standard library errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As forwards to the standard library errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
