package retry

import (
	"time"

	"github.com/icscrawl/crawler/pkg/timeutil"
)

// Param holds the parameters for retry logic. Passed in from config; the
// retry handler itself carries no policy of its own.
type Param struct {
	Jitter       time.Duration
	RandomSeed   int64
	MaxAttempts  int
	BackoffParam timeutil.BackoffParam
}

func NewParam(jitter time.Duration, randomSeed int64, maxAttempts int, backoff timeutil.BackoffParam) Param {
	return Param{
		Jitter:       jitter,
		RandomSeed:   randomSeed,
		MaxAttempts:  maxAttempts,
		BackoffParam: backoff,
	}
}

type Result[T any] struct {
	Value    T
	Err      error
	Attempts int
}
