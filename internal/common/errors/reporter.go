// internal/common/errors/reporter.go
package errors

import (
	"time"
)

// Reporter normalizes any per-turn error into a readable message for the
// interactive loop. Non-configuration errors never stop the loop.
type Reporter struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewReporter(logger Logger) *Reporter {
	return &Reporter{logger: logger}
}

// Report logs the error and returns the user-facing message for the turn.
func (r *Reporter) Report(turnID string, err error) string {
	stdErr := r.normalizeError(err)

	r.logger.Error("turn failed", map[string]interface{}{
		"turnId":        turnID,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"errorCategory": GetErrorCategory(stdErr.Code),
	})

	if stdErr.Details != "" {
		return stdErr.Message + " (" + stdErr.Details + ")"
	}
	return stdErr.Message
}

// Normalize exposes the normalization step for callers that need the
// structured form rather than the message.
func (r *Reporter) Normalize(err error) *StandardError {
	return r.normalizeError(err)
}

// normalizeError ensures we always have a StandardError
func (r *Reporter) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
