// Package errtrack redirects operation failures onto a shared error stream
package errtrack

import (
	"context"

	"swifthub/internal/core/signal"
)

// Tracker collects failures from any number of operations. Each failure is
// emitted exactly once on Errors, in the order the operations complete.
type Tracker struct {
	errs *signal.Subject[error]
}

// New returns a tracker with no subscribers
func New() *Tracker { return &Tracker{errs: signal.NewSubject[error]()} }

// Errors is the stream of redirected failures
func (t *Tracker) Errors() *signal.Subject[error] { return t.errs }

// Observe routes an already materialised failure. nil is ignored
func (t *Tracker) Observe(err error) {
	if err == nil {
		return
	}
	t.errs.Emit(err)
}

// Track runs op and redirects its failure. The caller sees (v, true) on
// success and (zero, false) on failure; the error itself only goes to Errors.
// A failure after ctx ended is teardown, not an error, and is not emitted
func Track[T any](ctx context.Context, t *Tracker, op func(context.Context) (T, error)) (T, bool) {
	v, err := op(ctx)
	if err != nil {
		var zero T
		if ctx.Err() == nil {
			t.Observe(err)
		}
		return zero, false
	}
	return v, true
}
