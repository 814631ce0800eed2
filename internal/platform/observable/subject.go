package observable

import (
	"context"
	"sync"
)

// Subject holds a current value and pushes every new value to its
// subscribers. Subscribers always receive the full value, never a diff.
type Subject[T any] struct {
	mu     sync.RWMutex
	value  T
	nextID int
	subs   map[int]func(T)
	order  []int
}

// New creates a Subject seeded with initial.
func New[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial, subs: make(map[int]func(T))}
}

// Value returns the latest value.
func (s *Subject[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Next replaces the value and notifies subscribers synchronously, in the
// order they subscribed. Callbacks run outside the subject's lock, so a
// subscriber may read Value but must not call Next re-entrantly.
func (s *Subject[T]) Next(v T) {
	s.mu.Lock()
	s.value = v
	fns := s.snapshot()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// Subscribe registers fn and calls it once with the current value.
// The returned func removes the subscription; calling it twice is harmless.
func (s *Subject[T]) Subscribe(fn func(T)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)
	current := s.value
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			for i, oid := range s.order {
				if oid == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Stream delivers the current value and every later one on a channel until
// ctx is done. The channel only keeps the newest pending value: a slow reader
// skips intermediate values instead of blocking writers.
func (s *Subject[T]) Stream(ctx context.Context) <-chan T {
	ch := make(chan T, 1)
	var mu sync.Mutex
	closed := false

	push := func(v T) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case <-ch:
		default:
		}
		ch <- v
	}

	unsubscribe := s.Subscribe(push)
	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()
	return ch
}

// Len reports the number of active subscribers.
func (s *Subject[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

func (s *Subject[T]) snapshot() []func(T) {
	fns := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	return fns
}
