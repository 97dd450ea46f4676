package retry

import (
	"fmt"

	"github.com/icscrawl/crawler/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseZeroAttempt       ErrorCause = "zero attempt"
	ErrCauseExhaustedAttempts ErrorCause = "exhausted attempts"
)

type Error struct {
	Message   string
	Retryable bool
	Cause     ErrorCause
}

func (e *Error) Error() string {
	return fmt.Sprintf("retry error: %s: %s", e.Cause, e.Message)
}

func (e *Error) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
