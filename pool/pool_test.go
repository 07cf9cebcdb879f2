package pool

import "testing"

func TestGetPutRoundTrip(t *testing.T) {
	p := New[int](4)
	h := p.Get()
	*p.Value(h) = 7
	if got := *p.Value(h); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if err := p.Put(h); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if p.Len() != 0 {
		t.Fatalf("expected Len=0, got %d", p.Len())
	}
}

func TestPutInvalidHandle(t *testing.T) {
	p := New[int](2)
	if err := p.Put(Handle(99)); err != ErrInvalidHandle {
		t.Fatalf("want ErrInvalidHandle, got %v", err)
	}
}

func TestPutDoubleFree(t *testing.T) {
	p := New[int](2)
	h := p.Get()
	if err := p.Put(h); err != nil {
		t.Fatalf("first Put failed: %v", err)
	}
	if err := p.Put(h); err != ErrInvalidHandle {
		t.Fatalf("want ErrInvalidHandle on double free, got %v", err)
	}
}

func TestOverflowFallback(t *testing.T) {
	p := New[int](2)
	a := p.Get()
	b := p.Get()
	c := p.Get()
	if p.Overflowed() != true {
		t.Fatalf("expected overflow after exceeding slab capacity")
	}
	*p.Value(c) = 42
	if *p.Value(c) != 42 {
		t.Fatalf("overflow value not stored")
	}
	for _, h := range []Handle{a, b, c} {
		if err := p.Put(h); err != nil {
			t.Fatalf("Put(%v) failed: %v", h, err)
		}
	}
	if p.Len() != 0 {
		t.Fatalf("expected Len=0 after draining, got %d", p.Len())
	}
}

func TestFreeListReuse(t *testing.T) {
	p := New[int](1)
	h1 := p.Get()
	if err := p.Put(h1); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	h2 := p.Get()
	if p.Overflowed() {
		t.Fatalf("expected slab reuse, not overflow")
	}
	if h1 != h2 {
		t.Fatalf("expected freed slot to be reused, got h1=%v h2=%v", h1, h2)
	}
}
