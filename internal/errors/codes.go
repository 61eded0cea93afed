// Package errors provides structured error handling for LogLens.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: IO errors (source file, log file)
//   - 3XX: Ingest errors (chunk staging, indexing)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates source-file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryIngest indicates chunk staging and indexing errors.
	CategoryIngest Category = "INGEST"
	// CategoryValidation indicates input validation errors.
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
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// IO errors (200-299)
	ErrCodeFileNotFound = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFileRead     = "ERR_202_FILE_READ"
	ErrCodeFileShrunk   = "ERR_203_FILE_SHRUNK"
	ErrCodeWatch        = "ERR_204_WATCH"

	// Ingest errors (300-399)
	ErrCodeBufferOverflow = "ERR_301_BUFFER_OVERFLOW"
	ErrCodeSessionClosed  = "ERR_302_SESSION_CLOSED"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidRange = "ERR_402_INVALID_RANGE"

	// Internal errors (500-599)
	ErrCodeInternal = "ERR_501_INTERNAL"
)

// categoryFromCode derives the category from the numeric block of a code.
func categoryFromCode(code string) Category {
	if len(code) < 5 {
		return CategoryInternal
	}
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryIngest
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode derives the severity from the code.
// Internal errors are fatal; everything else is a recoverable error.
func severityFromCode(code string) Severity {
	if categoryFromCode(code) == CategoryInternal {
		return SeverityFatal
	}
	return SeverityError
}

// isRetryableCode reports whether operations failing with this code may be
// retried by the caller. The engine itself never retries (all failures are
// surfaced synchronously); this flag informs the caller's decision.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeFileRead, ErrCodeWatch:
		return true
	default:
		return false
	}
}
