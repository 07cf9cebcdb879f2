package pheap

import (
	"math/rand"
	"testing"
)

func lessInt(a, b int) bool { return a < b }

func TestPushPopOrdered(t *testing.T) {
	h := New[int](8, lessInt)
	vals := []int{5, 3, 8, 1, 9, 2}
	for _, v := range vals {
		if err := h.Push(v); err != nil {
			t.Fatalf("Push(%d) failed: %v", v, err)
		}
	}
	prev := -1 << 31
	for !h.Empty() {
		v, ok := h.Pop()
		if !ok {
			t.Fatalf("Pop returned ok=false while non-empty")
		}
		if v < prev {
			t.Fatalf("heap order violated: %d after %d", v, prev)
		}
		prev = v
	}
}

func TestTopDoesNotRemove(t *testing.T) {
	h := New[int](4, lessInt)
	h.Push(10)
	h.Push(2)
	top, ok := h.Top()
	if !ok || top != 2 {
		t.Fatalf("expected top=2, got %d ok=%v", top, ok)
	}
	if h.Size() != 2 {
		t.Fatalf("Top should not remove; size=%d", h.Size())
	}
}

func TestFullReturnsError(t *testing.T) {
	h := New[int](2, lessInt)
	h.Push(1)
	h.Push(2)
	if err := h.Push(3); err != ErrFull {
		t.Fatalf("want ErrFull, got %v", err)
	}
}

func TestPopEmpty(t *testing.T) {
	h := New[int](2, lessInt)
	if _, ok := h.Pop(); ok {
		t.Fatalf("expected ok=false on empty Pop")
	}
}

func TestClear(t *testing.T) {
	h := New[int](4, lessInt)
	h.Push(1)
	h.Push(2)
	h.Clear()
	if !h.Empty() || h.Size() != 0 {
		t.Fatalf("expected empty heap after Clear")
	}
	if err := h.Push(9); err != nil {
		t.Fatalf("push after clear failed: %v", err)
	}
}

func TestStressRandomOrder(t *testing.T) {
	const n = 500
	h := New[int](n, lessInt)
	vals := rand.Perm(n)
	for _, v := range vals {
		if err := h.Push(v); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}
	prev := -1
	for !h.Empty() {
		v, _ := h.Pop()
		if v <= prev {
			t.Fatalf("order violated: %d after %d", v, prev)
		}
		prev = v
	}
}
