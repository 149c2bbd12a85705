// Package signal provides the two observable primitives the view-state layer is
// built from: Relay (a value with change notifications) and Subject (a stream of
// events with no current value)
//
// Both are safe for concurrent use. Deliveries are serialised per signal and
// follow Accept/Emit order. A subscriber must not Accept, Emit or Subscribe on
// the same signal from inside its own callback
package signal

import "sync"

type subscriber[T any] struct {
	id uint64
	fn func(T)
}

// hub is the copy-on-write subscriber list shared by Relay and Subject
type hub[T any] struct {
	mu   sync.Mutex
	next uint64
	subs []subscriber[T]
}

func (h *hub[T]) add(fn func(T)) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	subs := make([]subscriber[T], len(h.subs), len(h.subs)+1)
	copy(subs, h.subs)
	h.subs = append(subs, subscriber[T]{id: h.next, fn: fn})
	return h.next
}

func (h *hub[T]) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs := make([]subscriber[T], 0, len(h.subs))
	for _, s := range h.subs {
		if s.id != id {
			subs = append(subs, s)
		}
	}
	h.subs = subs
}

func (h *hub[T]) snapshot() []subscriber[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.subs
}

func (h *hub[T]) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *hub[T]) cancelFunc(id uint64) func() {
	var once sync.Once
	return func() { once.Do(func() { h.remove(id) }) }
}

// Subject broadcasts events to the subscribers present at emission time
type Subject[T any] struct {
	emitMu sync.Mutex
	hub    hub[T]
}

// NewSubject returns a Subject with no subscribers
func NewSubject[T any]() *Subject[T] { return &Subject[T]{} }

// Emit delivers v to every current subscriber
func (s *Subject[T]) Emit(v T) {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	for _, sub := range s.hub.snapshot() {
		sub.fn(v)
	}
}

// Subscribe registers fn and returns an idempotent cancel func
func (s *Subject[T]) Subscribe(fn func(T)) (cancel func()) {
	return s.hub.cancelFunc(s.hub.add(fn))
}

// Subscribers reports how many subscriptions are live
func (s *Subject[T]) Subscribers() int { return s.hub.len() }

// Relay holds a current value and notifies subscribers on every Accept
type Relay[T any] struct {
	emitMu sync.Mutex
	mu     sync.RWMutex
	value  T
	hub    hub[T]
}

// NewRelay returns a Relay seeded with initial
func NewRelay[T any](initial T) *Relay[T] { return &Relay[T]{value: initial} }

// Value returns the current value
func (r *Relay[T]) Value() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.value
}

// Accept stores v and delivers it to every subscriber
func (r *Relay[T]) Accept(v T) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	r.mu.Lock()
	r.value = v
	r.mu.Unlock()
	for _, sub := range r.hub.snapshot() {
		sub.fn(v)
	}
}

// Subscribe registers fn, immediately replays the current value to it and
// returns an idempotent cancel func
func (r *Relay[T]) Subscribe(fn func(T)) (cancel func()) {
	r.emitMu.Lock()
	defer r.emitMu.Unlock()
	id := r.hub.add(fn)
	fn(r.Value())
	return r.hub.cancelFunc(id)
}

// Subscribers reports how many subscriptions are live
func (r *Relay[T]) Subscribers() int { return r.hub.len() }
