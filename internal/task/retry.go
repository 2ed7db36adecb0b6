package task

import (
	"math"
	"time"

	"github.com/hanseo/rosetta-api/internal/translation"
)

// RetryPolicy controls how failed attempts are retried. Memory errors get
// their own, lower cap because a second identical allocation almost always
// fails the same way.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt, so a
	// task runs at most MaxRetries+1 times.
	MaxRetries int

	// MemoryMaxRetries caps retries for memory-classified errors.
	MemoryMaxRetries int

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// MaxDelay caps the growth of the backoff delay.
	MaxDelay time.Duration

	// Multiplier is the exponential backoff factor.
	Multiplier float64
}

// DefaultRetryPolicy returns the policy the desktop client ships with.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:       3,
		MemoryMaxRetries: 1,
		InitialDelay:     1000 * time.Millisecond,
		MaxDelay:         10000 * time.Millisecond,
		Multiplier:       2.0,
	}
}

// Delay returns the backoff delay before retry number attempt (1-based):
// InitialDelay * Multiplier^(attempt-1), capped at MaxDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(d)
}

// EffectiveMaxRetries returns the retry cap that applies to an error of
// the given kind.
func (p RetryPolicy) EffectiveMaxRetries(kind translation.ErrorKind) int {
	if kind == translation.ErrorKindMemory {
		return p.MemoryMaxRetries
	}
	return p.MaxRetries
}

// ShouldRetry reports whether a failure on the given attempt (1-based)
// warrants another try, and the delay to wait before it.
func (p RetryPolicy) ShouldRetry(terr *translation.TranslationError, attempt int) (time.Duration, bool) {
	if terr == nil || !terr.Retryable {
		return 0, false
	}
	if attempt > p.EffectiveMaxRetries(terr.Kind) {
		return 0, false
	}
	return p.Delay(attempt), true
}
