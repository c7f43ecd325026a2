// Package errors provides structured error handling for Indexify.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Manifest and configuration errors
//   - 2XX: IO errors (file, disk)
//   - 4XX: Validation and composition errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates manifest or configuration errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryValidation indicates invalid input or a rejected composition.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeManifestNotFound = "ERR_101_MANIFEST_NOT_FOUND"
	ErrCodeManifestInvalid  = "ERR_102_MANIFEST_INVALID"
	ErrCodeUnknownKind      = "ERR_103_UNKNOWN_CONTRIBUTOR_KIND"

	// IO errors (200-299)
	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeWriteFailed    = "ERR_203_WRITE_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidInput          = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidParameter      = "ERR_402_INVALID_PARAMETER"
	ErrCodeDuplicateContribution = "ERR_407_DUPLICATE_CONTRIBUTION"
	ErrCodeUnresolvedReference   = "ERR_408_UNRESOLVED_REFERENCE"

	// Internal errors (500-599)
	ErrCodeInternal      = "ERR_501_INTERNAL"
	ErrCodeComposeFailed = "ERR_502_COMPOSE_FAILED"
	ErrCodeMappingFailed = "ERR_503_MAPPING_FAILED"
	ErrCodeAnalyzeFailed = "ERR_504_ANALYZE_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_MANIFEST_NOT_FOUND")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeInternal, ErrCodeMappingFailed:
		return SeverityFatal
	case ErrCodeUnresolvedReference:
		// The request is still emitted; only the local bleve check failed.
		return SeverityWarning
	}
	return SeverityError
}
