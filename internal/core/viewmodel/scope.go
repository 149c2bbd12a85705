package viewmodel

import (
	"context"
	"sync"
)

// Scope is the cancellation scope owned by one presentation model. Work started
// with Go observes Context and is waited for on Close; subscriptions handed to
// Bind are released on Close.
type Scope struct {
	ctx    context.Context
	cancel context.CancelFunc

	wg       sync.WaitGroup
	mu       sync.Mutex
	closed   bool
	releases []func()
}

// NewScope derives a scope from parent
func NewScope(parent context.Context) *Scope {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	return &Scope{ctx: ctx, cancel: cancel}
}

// Context is cancelled when the scope closes
func (s *Scope) Context() context.Context { return s.ctx }

// Go runs fn on a new goroutine bound to the scope. It reports false and runs
// nothing once the scope is closed
func (s *Scope) Go(fn func(ctx context.Context)) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
	return true
}

// Bind registers a release func (usually a subscription cancel) run on Close.
// On a closed scope it runs immediately
func (s *Scope) Bind(release func()) {
	if release == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		release()
		return
	}
	s.releases = append(s.releases, release)
	s.mu.Unlock()
}

// Close cancels the context, waits for goroutines started by Go and runs the
// release funcs in reverse order. Safe to call more than once; must not be
// called from a goroutine started by Go
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	releases := s.releases
	s.releases = nil
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	for i := len(releases) - 1; i >= 0; i-- {
		releases[i]()
	}
}

// Closed reports whether Close has been called
func (s *Scope) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
