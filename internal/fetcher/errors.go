package fetcher

import (
	"fmt"

	"github.com/icscrawl/crawler/pkg/failure"
)

type ErrorCause string

const (
	ErrCauseBadRequest ErrorCause = "bad request"
	ErrCauseNetwork    ErrorCause = "network"
	ErrCauseReadBody   ErrorCause = "read body"
)

type FetchError struct {
	Message   string
	Retryable bool
	Cause     ErrorCause
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error: %s: %s", e.Cause, e.Message)
}

func (e *FetchError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
