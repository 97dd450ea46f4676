package retry

import (
	"math/rand"

	"github.com/icscrawl/crawler/pkg/failure"
	"github.com/icscrawl/crawler/pkg/timeutil"
)

// Retry runs fn up to param.MaxAttempts times, sleeping with exponential
// backoff plus jitter between attempts. It stops early when fn succeeds or
// returns a non-retryable ClassifiedError.
func Retry[T any](param Param, sleeper timeutil.Sleeper, fn func() (T, failure.ClassifiedError)) Result[T] {
	if param.MaxAttempts <= 0 {
		var zero T
		return Result[T]{Value: zero, Err: &Error{Message: "max attempts must be positive", Cause: ErrCauseZeroAttempt}, Attempts: 0}
	}

	rng := rand.New(rand.NewSource(param.RandomSeed))

	var lastErr failure.ClassifiedError
	for attempt := 1; attempt <= param.MaxAttempts; attempt++ {
		value, err := fn()
		if err == nil {
			return Result[T]{Value: value, Attempts: attempt}
		}
		lastErr = err
		if err.Severity() == failure.SeverityFatal {
			return Result[T]{Value: value, Err: err, Attempts: attempt}
		}
		if attempt == param.MaxAttempts {
			break
		}
		delay := timeutil.ExponentialBackoffDelay(attempt, param.Jitter, rng, param.BackoffParam)
		sleeper.Sleep(delay)
	}

	var zero T
	return Result[T]{
		Value:    zero,
		Err:      &Error{Message: lastErr.Error(), Retryable: false, Cause: ErrCauseExhaustedAttempts},
		Attempts: param.MaxAttempts,
	}
}
