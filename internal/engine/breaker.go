package engine

import (
	"sync"
	"time"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// breaker short-circuits the generation backend after repeated
// failures so turns degrade straight to the scripted fallback instead
// of stacking up timeouts.
type breaker struct {
	mu               sync.Mutex
	failureThreshold uint32
	cooldown         time.Duration

	failures    uint32
	lastFailure time.Time
	state       breakerState
}

func newBreaker(failureThreshold uint32, cooldown time.Duration) *breaker {
	return &breaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
	}
}

// Allow reports whether a backend call should be attempted.
func (b *breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerOpen {
		if time.Since(b.lastFailure) < b.cooldown {
			return false
		}
		b.state = breakerHalfOpen
	}
	return true
}

func (b *breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.state = breakerClosed
}

func (b *breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.lastFailure = time.Now()

	if b.state == breakerHalfOpen || b.failures >= b.failureThreshold {
		b.state = breakerOpen
	}
}
