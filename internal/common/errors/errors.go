// Package errors provides standardized error handling for the agent's
// per-turn boundary.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeDatabase      ErrorCode = "DATABASE_ERROR"
	ErrCodeFetch         ErrorCode = "FETCH_ERROR"
	ErrCodeExtraction    ErrorCode = "EXTRACTION_ERROR"
	ErrCodeToolMissing   ErrorCode = "TOOL_MISSING"
	ErrCodeGateway       ErrorCode = "GATEWAY_ERROR"
	ErrCodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewConfigurationError creates a fatal startup error naming every missing
// configuration value.
func NewConfigurationError(missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfiguration,
		Message:   "Missing required configuration value(s)",
		Details:   strings.Join(missing, ", "),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseError wraps the managed service's error verbatim.
func NewDatabaseError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabase,
		Message:   "Database operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFetchError creates a per-turn media download error.
func NewFetchError(locator string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFetch,
		Message:   "Media download failed",
		Details:   fmt.Sprintf("locator: %s, error: %s", locator, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewExtractionError creates a per-turn audio conversion error.
func NewExtractionError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExtraction,
		Message:   "Audio extraction failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewToolMissingError creates an error carrying the manual-install instruction.
func NewToolMissingError(instruction string) *StandardError {
	return &StandardError{
		Code:      ErrCodeToolMissing,
		Message:   "Conversion tool not available",
		Details:   instruction,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGatewayError creates a hosted-model error carrying the original
// status and message.
func NewGatewayError(status int, message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeGateway,
		Message:   "Hosted model call failed",
		Details:   fmt.Sprintf("status: %d, message: %s", status, message),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// AsStandardError unwraps err to a *StandardError, or nil when it is not one.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return nil
}

// GetRetryCount returns the retry count for an error code. Every code is 0:
// the only remediation anywhere is the single tool-acquisition attempt inside
// extract-audio, which is not a retry of a failed call.
func GetRetryCount(code ErrorCode) int {
	return 0
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIG"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "FETCH") || strings.Contains(codeStr, "EXTRACTION") || strings.Contains(codeStr, "TOOL"):
		return "MEDIA"
	case strings.Contains(codeStr, "GATEWAY"):
		return "MODEL"
	default:
		return "OTHER"
	}
}
