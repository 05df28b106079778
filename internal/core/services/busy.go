package services

import (
	"sync"

	"github.com/custodia-labs/sercha-basicauth/internal/core/ports/driven"
)

// busyTracker drives the loading indicator from per-invocation guards.
// The indicator turns on with the first active guard and off with the last,
// so overlapping flows cannot switch it off under each other.
type busyTracker struct {
	mu        sync.Mutex
	active    int
	indicator driven.LoadingIndicator
}

func newBusyTracker(indicator driven.LoadingIndicator) *busyTracker {
	return &busyTracker{indicator: indicator}
}

// Acquire marks one flow as in flight. The returned release func is safe to
// call more than once; only the first call counts.
func (b *busyTracker) Acquire() func() {
	b.mu.Lock()
	b.active++
	if b.active == 1 {
		b.indicator.SetLoading(true)
	}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(b.release)
	}
}

func (b *busyTracker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active--
	if b.active == 0 {
		b.indicator.SetLoading(false)
	}
}

// Active returns the number of flows currently holding a guard
func (b *busyTracker) Active() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}
