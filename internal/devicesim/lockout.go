package devicesim

import (
	"sync"
	"time"
)

// Lockout defaults.
const (
	DefaultMaxFailures     = 3
	DefaultLockoutDuration = 60 * time.Second
)

// Lockout implements brute force protection for the simulated radio.
// After MaxFailures consecutive bad proofs the device refuses unlock
// attempts until the lockout duration has elapsed; every further failure
// restarts the lockout.
type Lockout struct {
	mu          sync.Mutex
	maxFailures int
	duration    time.Duration
	failures    int       // Number of consecutive failed attempts
	lockedUntil time.Time // Zero if not locked
	now         func() time.Time
}

// NewLockout creates a lockout. Zero values select the defaults.
func NewLockout(maxFailures int, duration time.Duration) *Lockout {
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if duration <= 0 {
		duration = DefaultLockoutDuration
	}
	return &Lockout{
		maxFailures: maxFailures,
		duration:    duration,
		now:         time.Now,
	}
}

// Check reports whether the device is locked and for how much longer.
func (l *Lockout) Check() (locked bool, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Before(l.lockedUntil) {
		return true, l.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure records a failed proof and reports whether it triggered a lockout.
func (l *Lockout) RecordFailure() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures++
	if l.failures < l.maxFailures {
		return false
	}

	l.lockedUntil = l.now().Add(l.duration)
	return true
}

// RecordSuccess clears the failure count.
func (l *Lockout) RecordSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures = 0
	l.lockedUntil = time.Time{}
}

// Failures returns the current number of consecutive failures.
func (l *Lockout) Failures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failures
}

// FormatRetryAfter returns d in whole seconds, rounded up.
func FormatRetryAfter(d time.Duration) int {
	seconds := int(d / time.Second)
	if d%time.Second > 0 {
		seconds++
	}
	return seconds
}
