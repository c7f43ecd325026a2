package errors

import (
	"errors"
	"fmt"
)

// IndexifyError is the structured error type for Indexify.
// It provides rich context for error handling, logging, and user presentation.
type IndexifyError struct {
	// Code is the unique error code (e.g., "ERR_407_DUPLICATE_CONTRIBUTION").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Validation, Internal).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *IndexifyError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *IndexifyError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *IndexifyError) Is(target error) bool {
	if t, ok := target.(*IndexifyError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *IndexifyError) WithDetail(key, value string) *IndexifyError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
func (e *IndexifyError) WithSuggestion(suggestion string) *IndexifyError {
	e.Suggestion = suggestion
	return e
}

// New creates a new IndexifyError with the given code and message.
// Category and severity are derived from the code.
func New(code string, message string, cause error) *IndexifyError {
	return &IndexifyError{
		Code:     code,
		Message:  message,
		Category: categoryFromCode(code),
		Severity: severityFromCode(code),
		Cause:    cause,
	}
}

// Wrap creates an IndexifyError from an existing error.
// The error's message becomes the IndexifyError message.
func Wrap(code string, err error) *IndexifyError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a manifest-related error.
func ConfigError(message string, cause error) *IndexifyError {
	return New(ErrCodeManifestInvalid, message, cause)
}

// IOError creates an I/O-related error.
func IOError(message string, cause error) *IndexifyError {
	return New(ErrCodeFileNotFound, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *IndexifyError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *IndexifyError {
	return New(ErrCodeInternal, message, cause)
}

// As returns the first IndexifyError in err's chain.
func As(err error) (*IndexifyError, bool) {
	var ie *IndexifyError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// IsFatal checks if an error has fatal severity.
func IsFatal(err error) bool {
	if ie, ok := As(err); ok {
		return ie.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from an IndexifyError.
// Returns empty string if not an IndexifyError.
func GetCode(err error) string {
	if ie, ok := As(err); ok {
		return ie.Code
	}
	return ""
}

// GetCategory extracts the category from an IndexifyError.
// Returns empty string if not an IndexifyError.
func GetCategory(err error) Category {
	if ie, ok := As(err); ok {
		return ie.Category
	}
	return ""
}
