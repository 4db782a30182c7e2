package vscroll

import "sync"

type subscriber[T any] struct {
	fn     func(T)
	active bool
}

// Stream is a multicast sequence of values with explicit subscriptions.
//
// A replay stream hands its latest value to late subscribers. A distinct
// stream drops values equal to the previous one. Completing a stream drops
// all subscribers; values emitted afterwards are ignored.
type Stream[T any] struct {
	mu sync.Mutex

	subscribers []*subscriber[T]
	completions []func()

	replay    bool
	equal     func(a, b T) bool
	last      T
	hasLast   bool
	completed bool
}

// NewStream returns a stream which does not replay values.
func NewStream[T any]() *Stream[T] {
	return &Stream[T]{}
}

// NewReplayStream returns a stream which replays its latest value to new
// subscribers.
func NewReplayStream[T any]() *Stream[T] {
	return &Stream[T]{replay: true}
}

// Distinct makes the stream drop values for which equal reports true when
// compared with the previously emitted value.
func (s *Stream[T]) Distinct(equal func(a, b T) bool) *Stream[T] {
	s.mu.Lock()
	s.equal = equal
	s.mu.Unlock()
	return s
}

// Subscribe registers fn for all future values. If the stream replays and
// has a value, fn receives it immediately.
func (s *Stream[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return func() {}
	}
	sub := &subscriber[T]{fn: fn, active: true}
	s.subscribers = append(s.subscribers, sub)
	replay, last := s.replay && s.hasLast, s.last
	s.mu.Unlock()

	if replay {
		fn(last)
	}

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		sub.active = false
		for i, candidate := range s.subscribers {
			if candidate == sub {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				break
			}
		}
	}
}

// OnComplete registers fn to be called once the stream completes. If the
// stream already completed, fn is called immediately.
func (s *Stream[T]) OnComplete(fn func()) {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		fn()
		return
	}
	s.completions = append(s.completions, fn)
	s.mu.Unlock()
}

// Emit delivers v to all current subscribers.
func (s *Stream[T]) Emit(v T) {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return
	}
	if s.equal != nil && s.hasLast && s.equal(s.last, v) {
		s.mu.Unlock()
		return
	}
	s.last, s.hasLast = v, true
	subscribers := make([]*subscriber[T], len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.Unlock()

	for _, sub := range subscribers {
		s.mu.Lock()
		active := sub.active
		s.mu.Unlock()
		if active {
			sub.fn(v)
		}
	}
}

// Complete ends the stream.
func (s *Stream[T]) Complete() {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return
	}
	s.completed = true
	for _, sub := range s.subscribers {
		sub.active = false
	}
	s.subscribers = nil
	completions := s.completions
	s.completions = nil
	s.mu.Unlock()

	for _, fn := range completions {
		fn()
	}
}

// Last returns the most recently emitted value.
func (s *Stream[T]) Last() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.hasLast
}

// Completed reports whether Complete was called.
func (s *Stream[T]) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

// Subscribers returns the number of active subscriptions.
func (s *Stream[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}
