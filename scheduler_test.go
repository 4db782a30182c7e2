package vscroll

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerFlushRunsInOrder(t *testing.T) {
	s := NewScheduler()
	assert.False(t, s.Pending())
	assert.False(t, s.Flush())

	var got []int
	for i := range 3 {
		s.Schedule(func() { got = append(got, i) })
	}
	assert.True(t, s.Pending())
	assert.True(t, s.Flush())
	assert.False(t, s.Pending())
	assert.Equal(t, []int{0, 1, 2}, got)

	assert.False(t, s.Flush())
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()

	ran := false
	cancel := s.Schedule(func() { ran = true })
	cancel()

	assert.False(t, s.Pending())
	assert.False(t, s.Flush())
	assert.False(t, ran)

	// Cancelling a task that already ran has no effect.
	cancel = s.Schedule(func() { ran = true })
	s.Flush()
	cancel()
	assert.True(t, ran)
}

func TestSchedulerNestedSchedule(t *testing.T) {
	s := NewScheduler()

	var got []string
	s.Schedule(func() {
		got = append(got, "outer")
		s.Schedule(func() { got = append(got, "inner") })
	})

	assert.True(t, s.Flush())
	assert.Equal(t, []string{"outer", "inner"}, got)
	assert.False(t, s.Pending())
}

func TestSchedulerFlushTerminates(t *testing.T) {
	s := NewScheduler()

	runs := 0
	var reschedule func()
	reschedule = func() {
		runs++
		s.Schedule(reschedule)
	}
	s.Schedule(reschedule)

	assert.True(t, s.Flush())
	assert.Equal(t, maxFlushPasses, runs)
	assert.True(t, s.Pending())
}

func TestSchedulerWake(t *testing.T) {
	wakes := 0
	s := NewScheduler().SetWakeFunc(func() { wakes++ })

	s.Schedule(func() {})
	s.Schedule(func() {})
	assert.Equal(t, 1, wakes)

	s.Flush()
	s.Post(func() {})
	assert.Equal(t, 2, wakes)
}

func TestSchedulerConcurrentPost(t *testing.T) {
	s := NewScheduler()

	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				s.Post(func() {
					mu.Lock()
					count++
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()

	s.Flush()
	assert.Equal(t, 1000, count)
}
