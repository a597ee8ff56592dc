package retry

import "time"

// Policy bounds the retry envelope for one logical operation. It is a
// value object; call sites pass a fresh copy rather than sharing one.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// backoff computes the delay before the next attempt: the base delay
// doubled per prior attempt, capped at MaxDelay, then scaled by a jitter
// factor in [0.5, 1.5) so callers don't retry in lockstep.
func (p Policy) backoff(attempt int, jitter float64) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return time.Duration(float64(delay) * (0.5 + jitter))
}
