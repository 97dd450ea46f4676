package timeutil_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/icscrawl/crawler/pkg/timeutil"
	"github.com/stretchr/testify/assert"
)

func TestExponentialBackoffDelay_GrowsByMultiplier(t *testing.T) {
	p := timeutil.NewBackoffParam(10*time.Millisecond, 2.0, time.Second)

	first := timeutil.ExponentialBackoffDelay(1, 0, nil, p)
	second := timeutil.ExponentialBackoffDelay(2, 0, nil, p)
	third := timeutil.ExponentialBackoffDelay(3, 0, nil, p)

	assert.Equal(t, 10*time.Millisecond, first)
	assert.Equal(t, 20*time.Millisecond, second)
	assert.Equal(t, 40*time.Millisecond, third)
}

func TestExponentialBackoffDelay_CapsAtMaxDuration(t *testing.T) {
	p := timeutil.NewBackoffParam(10*time.Millisecond, 10.0, 50*time.Millisecond)

	delay := timeutil.ExponentialBackoffDelay(5, 0, nil, p)

	assert.Equal(t, 50*time.Millisecond, delay)
}

func TestExponentialBackoffDelay_AddsJitterWithinBound(t *testing.T) {
	p := timeutil.NewBackoffParam(10*time.Millisecond, 2.0, time.Second)
	rng := rand.New(rand.NewSource(1))

	delay := timeutil.ExponentialBackoffDelay(1, 5*time.Millisecond, rng, p)

	assert.GreaterOrEqual(t, delay, 10*time.Millisecond)
	assert.Less(t, delay, 15*time.Millisecond)
}

func TestRealSleeper_SkipsNonPositiveDurations(t *testing.T) {
	s := timeutil.NewRealSleeper()

	start := time.Now()
	s.Sleep(0)
	s.Sleep(-time.Second)

	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestRealSleeper_SleepsForPositiveDuration(t *testing.T) {
	s := timeutil.NewRealSleeper()

	start := time.Now()
	s.Sleep(20 * time.Millisecond)

	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}
