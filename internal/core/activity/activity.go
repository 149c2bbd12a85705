// Package activity turns overlapping operations into a single busy signal
package activity

import (
	"context"
	"sync"
	"sync/atomic"

	"swifthub/internal/core/signal"
)

// Tracker counts in-flight operations. Busy flips to true when the count leaves
// zero and back to false when it returns to zero; intermediate changes are not
// emitted. Trackers are independent of each other.
type Tracker struct {
	mu       sync.Mutex
	count    int
	inflight atomic.Int64
	busy     *signal.Relay[bool]
}

// New returns an idle tracker
func New() *Tracker { return &Tracker{busy: signal.NewRelay(false)} }

// Busy exposes the derived busy signal
func (t *Tracker) Busy() *signal.Relay[bool] { return t.busy }

// IsBusy reports whether at least one operation is in flight
func (t *Tracker) IsBusy() bool { return t.inflight.Load() > 0 }

// InFlight returns the current operation count
func (t *Tracker) InFlight() int { return int(t.inflight.Load()) }

func (t *Tracker) begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count++
	t.inflight.Store(int64(t.count))
	if t.count == 1 {
		t.busy.Accept(true)
	}
}

func (t *Tracker) end() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.count == 0 {
		return
	}
	t.count--
	t.inflight.Store(int64(t.count))
	if t.count == 0 {
		t.busy.Accept(false)
	}
}

// Track runs op while it is counted as in flight. The result is returned
// unaltered; the count is released exactly once whether op succeeds, fails,
// observes cancellation or panics.
func Track[T any](ctx context.Context, t *Tracker, op func(context.Context) (T, error)) (T, error) {
	t.begin()
	defer t.end()
	return op(ctx)
}

// Go is Track on a new goroutine. done, when non-nil, receives the result
// before the count is released.
func Go[T any](ctx context.Context, t *Tracker, op func(context.Context) (T, error), done func(T, error)) {
	t.begin()
	go func() {
		defer t.end()
		v, err := op(ctx)
		if done != nil {
			done(v, err)
		}
	}()
}
