package vscroll

import (
	"sync"
	"time"
)

// Scrollable is a scroll container which reports its own scroll events.
type Scrollable interface {
	ElementScrolled() *Stream[Scrollable]
}

// ScrollDispatcher merges the scroll events of registered scrollables. The
// registered scrollables are only listened to while at least one subscriber
// obtained from Scrolled is active.
type ScrollDispatcher struct {
	scheduler *Scheduler

	scrollables map[Scrollable]func()
	consumers   int
	scrolled    *Stream[Scrollable]
}

// NewScrollDispatcher returns a dispatcher delivering its events through
// scheduler.
func NewScrollDispatcher(scheduler *Scheduler) *ScrollDispatcher {
	return &ScrollDispatcher{
		scheduler:   scheduler,
		scrollables: make(map[Scrollable]func()),
		scrolled:    NewStream[Scrollable](),
	}
}

// Register adds a scrollable.
func (d *ScrollDispatcher) Register(s Scrollable) {
	if _, ok := d.scrollables[s]; ok {
		return
	}
	d.scrollables[s] = nil
	if d.consumers > 0 {
		d.listen(s)
	}
}

// Deregister removes a scrollable.
func (d *ScrollDispatcher) Deregister(s Scrollable) {
	unsubscribe, ok := d.scrollables[s]
	if !ok {
		return
	}
	if unsubscribe != nil {
		unsubscribe()
	}
	delete(d.scrollables, s)
}

// Registered returns the number of registered scrollables.
func (d *ScrollDispatcher) Registered() int {
	return len(d.scrollables)
}

func (d *ScrollDispatcher) listen(s Scrollable) {
	d.scrollables[s] = s.ElementScrolled().Subscribe(func(origin Scrollable) {
		d.scrolled.Emit(origin)
	})
}

// Scrolled returns a stream of scroll events from all registered
// scrollables. With a zero audit time, all events within one turn are
// coalesced into one; otherwise at most one event is emitted per audit
// period, carrying the latest scrollable. Call stop to unsubscribe.
func (d *ScrollDispatcher) Scrolled(audit time.Duration) (events *Stream[Scrollable], stop func()) {
	if d.consumers == 0 {
		for s := range d.scrollables {
			d.listen(s)
		}
	}
	d.consumers++

	events, stopAudit := Audit(d.scrolled, d.scheduler, audit)
	stopped := false
	return events, func() {
		if stopped {
			return
		}
		stopped = true
		stopAudit()
		d.consumers--
		if d.consumers == 0 {
			for s, unsubscribe := range d.scrollables {
				if unsubscribe != nil {
					unsubscribe()
				}
				d.scrollables[s] = nil
			}
		}
	}
}

// Audit returns a stream emitting the latest value of src once per audit
// period after a value arrived. Emissions are delivered through scheduler,
// so a zero period coalesces all values of one turn into a single emission.
func Audit[T any](src *Stream[T], scheduler *Scheduler, period time.Duration) (out *Stream[T], stop func()) {
	out = NewStream[T]()

	var (
		mu      sync.Mutex
		latest  T
		pending bool
		cancel  func()
		timer   *time.Timer
	)
	emit := func() {
		mu.Lock()
		value := latest
		pending = false
		cancel = nil
		mu.Unlock()
		out.Emit(value)
	}

	unsubscribe := src.Subscribe(func(value T) {
		mu.Lock()
		defer mu.Unlock()
		latest = value
		if pending {
			return
		}
		pending = true
		if period <= 0 {
			cancel = scheduler.Schedule(emit)
			return
		}
		timer = time.AfterFunc(period, func() {
			mu.Lock()
			if pending {
				cancel = scheduler.Schedule(emit)
			}
			mu.Unlock()
		})
	})
	src.OnComplete(out.Complete)

	return out, func() {
		unsubscribe()
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		if cancel != nil {
			cancel()
		}
		pending = false
		mu.Unlock()
		out.Complete()
	}
}
