package vscroll

import "sync"

// maxFlushPasses bounds how many times a flush re-drains tasks that were
// scheduled by the tasks it ran.
const maxFlushPasses = 64

type scheduledTask struct {
	fn        func()
	cancelled bool
}

// Scheduler batches callbacks so that they run once per turn of the event
// loop. Primitives schedule work while handling an event; the Application
// flushes the queue after the event has been processed and before drawing,
// so any number of writes within one turn result in a single flush.
//
// Schedule and Post may be called from any goroutine. Flush must only be
// called from the goroutine that owns the primitives.
type Scheduler struct {
	mu    sync.Mutex
	queue []*scheduledTask
	wake  func()
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// SetWakeFunc sets a function which is called whenever the queue goes from
// empty to non-empty. The Application uses it to interrupt its event loop.
func (s *Scheduler) SetWakeFunc(wake func()) *Scheduler {
	s.mu.Lock()
	s.wake = wake
	s.mu.Unlock()
	return s
}

// Schedule queues fn for the next flush. The returned function cancels it if
// it has not run yet.
func (s *Scheduler) Schedule(fn func()) (cancel func()) {
	task := &scheduledTask{fn: fn}
	s.mu.Lock()
	wasEmpty := len(s.queue) == 0
	s.queue = append(s.queue, task)
	wake := s.wake
	s.mu.Unlock()

	if wasEmpty && wake != nil {
		wake()
	}
	return func() {
		s.mu.Lock()
		task.cancelled = true
		s.mu.Unlock()
	}
}

// Post queues fn for the next flush without a way to cancel it.
func (s *Scheduler) Post(fn func()) {
	s.Schedule(fn)
}

// Pending reports whether tasks are waiting for a flush.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, task := range s.queue {
		if !task.cancelled {
			return true
		}
	}
	return false
}

// Flush runs all queued tasks in the order they were scheduled. Tasks
// scheduled while flushing run in the same flush. It returns true if at least
// one task ran.
func (s *Scheduler) Flush() bool {
	ran := false
	for pass := 0; pass < maxFlushPasses; pass++ {
		s.mu.Lock()
		queue := s.queue
		s.queue = nil
		s.mu.Unlock()
		if len(queue) == 0 {
			return ran
		}

		for _, task := range queue {
			s.mu.Lock()
			cancelled := task.cancelled
			task.cancelled = true
			s.mu.Unlock()
			if cancelled {
				continue
			}
			task.fn()
			ran = true
		}
	}

	if s.Pending() {
		defaultLogger.Warn("scheduler flush did not settle", "passes", maxFlushPasses)
	}
	return ran
}
