package session

import (
	"sync"
	"time"

	"swifthub/internal/platform/logger"
)

// Loop is a Dispatcher that runs every callback on one goroutine, in the order
// the timers fire
type Loop struct {
	jobs chan func()
	done chan struct{}
	once sync.Once
}

var _ Dispatcher = (*Loop)(nil)

// NewLoop starts the dispatch goroutine
func NewLoop() *Loop {
	l := &Loop{jobs: make(chan func(), 16), done: make(chan struct{})}
	go l.run()
	return l
}

// After schedules fn on the loop once d has elapsed. Dropped after Stop
func (l *Loop) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		select {
		case l.jobs <- fn:
		case <-l.done:
		}
	})
}

// Stop ends the loop; pending callbacks are dropped. Idempotent
func (l *Loop) Stop() { l.once.Do(func() { close(l.done) }) }

func (l *Loop) run() {
	for {
		select {
		case <-l.done:
			return
		case fn := <-l.jobs:
			l.call(fn)
		}
	}
}

func (l *Loop) call(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Named("session").Error().Interface("panic", r).Msg("dispatched callback panicked")
		}
	}()
	fn()
}
