package core

// limiter.go bounds how many batches convert at once.
//
// A batch holds one slot from Acquire until Release. A request that finds
// every slot taken queues for at most maxWait and then fails with
// ErrTooManyConversions. Queued and rejected requests are counted so the
// health endpoint can show back-pressure, not just occupancy.

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrTooManyConversions is returned when no slot frees up within the wait time.
var ErrTooManyConversions = errors.New("too many conversions in progress, please try again later")

const (
	DefaultMaxConcurrentConversions = 5
	DefaultMaxWaitTime              = 30 * time.Second
)

// ConversionLimiter is a counting semaphore over batch conversions.
type ConversionLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	waiting  atomic.Int64
	rejected atomic.Int64

	mu     sync.Mutex
	active int
	idle   chan struct{} // closed whenever active is zero
}

// NewConversionLimiter allows maxConcurrent batches at once, each waiting at
// most maxWait for a slot. Non-positive values select the defaults.
func NewConversionLimiter(maxConcurrent int, maxWait time.Duration) *ConversionLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentConversions
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	idle := make(chan struct{})
	close(idle)
	return &ConversionLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
		idle:    idle,
	}
}

// Acquire takes a slot, queueing for up to maxWait. Cancellation of ctx is
// returned as ctx.Err(); an expired wait as ErrTooManyConversions.
// Every nil return must be paired with one Release.
func (l *ConversionLimiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		l.started()
		return nil
	default:
	}

	l.waiting.Add(1)
	defer l.waiting.Add(-1)

	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.started()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		l.rejected.Add(1)
		return fmt.Errorf("%w (waited %s)", ErrTooManyConversions, l.maxWait)
	}
}

func (l *ConversionLimiter) started() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active == 0 {
		l.idle = make(chan struct{})
	}
	l.active++
}

// Release gives back a slot taken by Acquire.
func (l *ConversionLimiter) Release() {
	l.mu.Lock()
	l.active--
	if l.active == 0 {
		close(l.idle)
	}
	l.mu.Unlock()

	<-l.slots
}

// ActiveCount returns the number of batches holding a slot.
func (l *ConversionLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Available returns the number of free slots.
func (l *ConversionLimiter) Available() int {
	return cap(l.slots) - len(l.slots)
}

// WaitForDrain blocks until no batch holds a slot or ctx is done.
func (l *ConversionLimiter) WaitForDrain(ctx context.Context) error {
	l.mu.Lock()
	idle := l.idle
	l.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LimiterStatus is a snapshot of the limiter for health checks.
type LimiterStatus struct {
	Active        int   `json:"active"`
	Available     int   `json:"available"`
	MaxConcurrent int   `json:"max_concurrent"`
	Waiting       int64 `json:"waiting"`
	Rejected      int64 `json:"rejected"`
}

// Status returns the current limiter state. Rejected counts every request
// turned away since the limiter was created.
func (l *ConversionLimiter) Status() LimiterStatus {
	return LimiterStatus{
		Active:        l.ActiveCount(),
		Available:     l.Available(),
		MaxConcurrent: cap(l.slots),
		Waiting:       l.waiting.Load(),
		Rejected:      l.rejected.Load(),
	}
}
