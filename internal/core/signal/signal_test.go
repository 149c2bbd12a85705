package signal

import (
	"sync"
	"testing"
)

func TestRelay_ReplaysCurrentValueOnSubscribe(t *testing.T) {
	t.Parallel()
	r := NewRelay(3)
	var got []int
	cancel := r.Subscribe(func(v int) { got = append(got, v) })
	defer cancel()

	r.Accept(4)
	r.Accept(5)

	want := []int{3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if r.Value() != 5 {
		t.Fatalf("Value() = %d", r.Value())
	}
}

func TestRelay_CancelIsIdempotent(t *testing.T) {
	t.Parallel()
	r := NewRelay("a")
	calls := 0
	cancel := r.Subscribe(func(string) { calls++ })
	other := r.Subscribe(func(string) {})
	if r.Subscribers() != 2 {
		t.Fatalf("Subscribers() = %d", r.Subscribers())
	}
	cancel()
	cancel()
	if r.Subscribers() != 1 {
		t.Fatalf("double cancel removed too much: %d", r.Subscribers())
	}
	r.Accept("b")
	if calls != 1 {
		t.Fatalf("cancelled subscriber saw %d values, want 1 (replay only)", calls)
	}
	other()
	if r.Subscribers() != 0 {
		t.Fatalf("leaked subscribers: %d", r.Subscribers())
	}
}

func TestSubject_DeliversInEmitOrder(t *testing.T) {
	t.Parallel()
	s := NewSubject[int]()
	var (
		mu  sync.Mutex
		got []int
	)
	cancel := s.Subscribe(func(v int) {
		mu.Lock()
		got = append(got, v)
		mu.Unlock()
	})
	for i := range 50 {
		s.Emit(i)
	}
	cancel()
	s.Emit(99)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 50 {
		t.Fatalf("got %d events, want 50", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("event %d = %d, out of order", i, v)
		}
	}
}

func TestSubject_NoReplayForLateSubscribers(t *testing.T) {
	t.Parallel()
	s := NewSubject[string]()
	s.Emit("early")
	seen := 0
	cancel := s.Subscribe(func(string) { seen++ })
	defer cancel()
	if seen != 0 {
		t.Fatalf("late subscriber saw %d events", seen)
	}
}

func TestSubject_CancelInsideCallback(t *testing.T) {
	t.Parallel()
	s := NewSubject[int]()
	var cancel func()
	seen := 0
	cancel = s.Subscribe(func(int) {
		seen++
		cancel()
	})
	s.Emit(1)
	s.Emit(2)
	if seen != 1 {
		t.Fatalf("seen = %d, want 1", seen)
	}
}

func TestRelay_ConcurrentAccept(t *testing.T) {
	t.Parallel()
	r := NewRelay(0)
	var (
		mu    sync.Mutex
		count int
	)
	cancel := r.Subscribe(func(int) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	defer cancel()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Accept(i)
		}()
	}
	wg.Wait()
	if count != 21 {
		t.Fatalf("deliveries = %d, want 21", count)
	}
}
