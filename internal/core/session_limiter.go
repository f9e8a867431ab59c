package core

// session_limiter.go bounds how many engine sessions run at once.
//
// Each validate or convert call holds one dedicated engine connection plus a
// copy of the uploaded buffer in memory, so the HTTP adapter caps concurrent
// calls. When all slots are taken, callers wait up to maxWait before failing
// with ErrTooManySessions. WaitForDrain supports graceful shutdown.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManySessions is returned when no session slot frees up in time.
var ErrTooManySessions = errors.New("too many concurrent sessions, please try again later")

// DefaultMaxConcurrentSessions is the default limit for parallel sessions.
const DefaultMaxConcurrentSessions = 4

// DefaultMaxWaitTime is how long to wait for a slot before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// SessionLimiter is a counting semaphore over engine sessions.
type SessionLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu      sync.Mutex
	active  int
	drained chan struct{} // closed whenever active drops to zero
}

// SessionLimiterStatus is a snapshot of the limiter's state.
type SessionLimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"maxConcurrent"`
}

// NewSessionLimiter allows at most maxConcurrent sessions. Non-positive
// arguments fall back to the defaults.
func NewSessionLimiter(maxConcurrent int, maxWait time.Duration) *SessionLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentSessions
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	drained := make(chan struct{})
	close(drained)

	return &SessionLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		drained: drained,
	}
}

// Acquire waits for a slot and returns the function that gives it back.
// The release function is idempotent; callers should defer it.
func (l *SessionLimiter) Acquire(ctx context.Context) (release func(), err error) {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		return l.track(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, ErrTooManySessions
	}
}

// TryAcquire takes a slot without blocking. ok is false when none is free.
func (l *SessionLimiter) TryAcquire() (release func(), ok bool) {
	select {
	case l.slots <- struct{}{}:
		return l.track(), true
	default:
		return nil, false
	}
}

func (l *SessionLimiter) track() func() {
	l.mu.Lock()
	if l.active == 0 {
		l.drained = make(chan struct{})
	}
	l.active++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.active--
			if l.active == 0 {
				close(l.drained)
			}
			l.mu.Unlock()
			<-l.slots
		})
	}
}

// ActiveCount returns the number of sessions currently holding a slot.
func (l *SessionLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// MaxConcurrent returns the slot count.
func (l *SessionLimiter) MaxConcurrent() int {
	return cap(l.slots)
}

// WaitForDrain blocks until no session holds a slot or ctx is done.
func (l *SessionLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	drained := l.drained
	l.mu.Unlock()

	select {
	case <-drained:
		// A new session may have started since; check again.
		if l.ActiveCount() == 0 {
			return nil
		}
		return l.WaitForDrain(ctx)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current limiter state for monitoring.
func (l *SessionLimiter) Status() SessionLimiterStatus {
	l.mu.Lock()
	active := l.active
	l.mu.Unlock()

	return SessionLimiterStatus{
		Active:        active,
		Available:     cap(l.slots) - len(l.slots),
		MaxConcurrent: cap(l.slots),
	}
}
