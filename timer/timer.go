// Package timer implements a bounded timer scheduler atop pheap.Heap:
// events are ordered by fire time, and Poll fires every event whose
// time has come, re-arming recurring ones for their next tick.
package timer

import (
	"time"

	"github.com/hotpath/etherframe/pheap"
)

// Kind selects whether an event fires once or re-arms itself after
// firing.
type Kind int

const (
	// OneTime fires a single time and is then discarded.
	OneTime Kind = iota
	// Recurring re-schedules itself for now+Wait immediately after
	// firing.
	Recurring
)

// Callback is invoked when an event's scheduled time has passed.
type Callback func()

type event struct {
	kind     Kind
	when     time.Time
	wait     time.Duration
	callback Callback
}

func less(a, b event) bool { return a.when.Before(b.when) }

// Queue is a fixed-capacity timer scheduler. Not safe for concurrent
// use — call Poll from the same goroutine (typically a dispatcher's
// event loop) that calls ScheduleAt/ScheduleAfter.
type Queue struct {
	heap *pheap.Heap[event]
}

// New creates a Queue that can hold up to capacity pending events.
func New(capacity int) *Queue {
	return &Queue{heap: pheap.New[event](capacity, less)}
}

// ScheduleAt arms a one-time event for the given absolute time.
// Reports false if the queue is already at capacity.
func (q *Queue) ScheduleAt(when time.Time, cb Callback) bool {
	return q.heap.Push(event{kind: OneTime, when: when, callback: cb}) == nil
}

// ScheduleAfter arms an event for now+wait. If kind is Recurring, the
// event re-arms itself for wait after every firing. Reports false if
// the queue is already at capacity.
func (q *Queue) ScheduleAfter(kind Kind, wait time.Duration, cb Callback) bool {
	return q.heap.Push(event{kind: kind, when: time.Now().Add(wait), wait: wait, callback: cb}) == nil
}

// Poll fires every event whose scheduled time is at or before now,
// re-arming recurring events, and returns the number of callbacks
// invoked.
func (q *Queue) Poll() int {
	executed := 0
	now := time.Now()
	for {
		top, ok := q.heap.Top()
		if !ok || top.when.After(now) {
			break
		}
		q.heap.Pop()
		top.callback()
		executed++
		if top.kind == Recurring {
			q.heap.Push(event{kind: top.kind, when: time.Now().Add(top.wait), wait: top.wait, callback: top.callback})
		}
	}
	return executed
}

// Next returns the scheduled time of the earliest pending event, and
// false if the queue is empty.
func (q *Queue) Next() (time.Time, bool) {
	top, ok := q.heap.Top()
	if !ok {
		return time.Time{}, false
	}
	return top.when, true
}

// Empty reports whether the queue has no pending events.
func (q *Queue) Empty() bool { return q.heap.Empty() }

// Clear removes all pending events.
func (q *Queue) Clear() { q.heap.Clear() }
