package mirror

import (
	"bytes"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	r, err := New(16)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := r.Write([]byte("hello world")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got := r.Read(11)
	if !bytes.Equal(got, []byte("hello world")) {
		t.Fatalf("got %q", got)
	}
	if r.Len() != 0 {
		t.Fatalf("expected Len=0, got %d", r.Len())
	}
}

func TestContiguousReadAcrossWrap(t *testing.T) {
	r, _ := New(8)
	// fill, drain, then write again at the start of the backing array
	// so the next read spans the wrap point, exercising the mirror.
	r.Write([]byte("abcdefgh"))
	r.Read(6)
	if err := r.Write([]byte("XY")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got := r.Read(4)
	want := []byte("ghXY")
	if !bytes.Equal(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestWriteOverflowRejected(t *testing.T) {
	r, _ := New(4)
	if err := r.Write([]byte("abcd")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := r.Write([]byte("e")); err != ErrWouldOverflow {
		t.Fatalf("want ErrWouldOverflow, got %v", err)
	}
}

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	if _, err := New(10); err != ErrNotPowerOfTwo {
		t.Fatalf("want ErrNotPowerOfTwo, got %v", err)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	r, _ := New(8)
	r.Write([]byte("data"))
	p := r.Peek(4)
	if !bytes.Equal(p, []byte("data")) {
		t.Fatalf("Peek got %q", p)
	}
	if r.Len() != 4 {
		t.Fatalf("Peek should not consume, Len=%d", r.Len())
	}
}

func TestFreeAccounting(t *testing.T) {
	r, _ := New(8)
	if r.Free() != 8 {
		t.Fatalf("expected Free=8, got %d", r.Free())
	}
	r.Write([]byte("abc"))
	if r.Free() != 5 {
		t.Fatalf("expected Free=5, got %d", r.Free())
	}
	r.Read(3)
	if r.Free() != 8 {
		t.Fatalf("expected Free=8 after drain, got %d", r.Free())
	}
}
