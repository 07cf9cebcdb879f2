package timer

import (
	"testing"
	"time"
)

func TestOneTimeFiresOnce(t *testing.T) {
	q := New(8)
	fired := 0
	q.ScheduleAfter(OneTime, 0, func() { fired++ })
	n := q.Poll()
	if n != 1 || fired != 1 {
		t.Fatalf("expected 1 firing, got n=%d fired=%d", n, fired)
	}
	if !q.Empty() {
		t.Fatalf("expected queue empty after one-time fires")
	}
}

func TestRecurringReArms(t *testing.T) {
	q := New(8)
	fired := 0
	q.ScheduleAfter(Recurring, 0, func() { fired++ })
	q.Poll()
	if q.Empty() {
		t.Fatalf("expected recurring event to re-arm")
	}
	time.Sleep(time.Millisecond)
	q.Poll()
	if fired < 2 {
		t.Fatalf("expected at least 2 firings, got %d", fired)
	}
}

func TestNotYetDueNotFired(t *testing.T) {
	q := New(8)
	fired := false
	q.ScheduleAfter(OneTime, time.Hour, func() { fired = true })
	q.Poll()
	if fired {
		t.Fatalf("expected future event not to fire")
	}
}

func TestOrderingEarliestFirst(t *testing.T) {
	q := New(8)
	var order []int
	q.ScheduleAt(time.Now().Add(2*time.Millisecond), func() { order = append(order, 2) })
	q.ScheduleAt(time.Now().Add(1*time.Millisecond), func() { order = append(order, 1) })
	time.Sleep(3 * time.Millisecond)
	q.Poll()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("expected [1 2], got %v", order)
	}
}

func TestNextAndEmpty(t *testing.T) {
	q := New(4)
	if !q.Empty() {
		t.Fatalf("expected empty queue")
	}
	if _, ok := q.Next(); ok {
		t.Fatalf("expected Next ok=false on empty queue")
	}
	q.ScheduleAfter(OneTime, time.Minute, func() {})
	if _, ok := q.Next(); !ok {
		t.Fatalf("expected Next ok=true with pending event")
	}
}
