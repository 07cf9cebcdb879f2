// Package pool implements a fixed-capacity slab allocator with an
// embedded free-list, falling back to one-off heap allocations once the
// slab is exhausted so that callers never block or fail under transient
// pressure, at the cost of a teardown-only alloc ledger for the overflow.
package pool

import "errors"

// ErrInvalidHandle is returned by Put when the handle does not belong
// to the slab (out of range, or already freed).
var ErrInvalidHandle = errors.New("pool: invalid handle")

const nilIdx = ^uint32(0)

// Handle names a slot borrowed from a Pool. Handle(0) is a perfectly
// ordinary handle — the slab's free list starts at index 0 — so a
// caller cannot use the zero value as a sentinel for "no handle"; Get
// never fails, so it has no error to report in the first place.
type Handle uint32

type slot[T any] struct {
	next  uint32
	inUse bool
	val   T
}

// Pool is a fixed-capacity allocator for values of type T. Slab slots
// are threaded on a LIFO free list; once the slab is full, Get falls
// back to a heap allocation tracked in overflow so Value, Put and Len
// still account for every handle handed out. Pool is not safe for concurrent
// use by multiple goroutines without external synchronization — pair
// one Pool per owning goroutine, so each core's hot path owns its
// allocations exclusively.
type Pool[T any] struct {
	arena    []slot[T]
	freeHead uint32
	overflow map[Handle]*T
	nextOF   uint32
	borrowed int
}

// New creates a Pool with a fixed slab of the given capacity. capacity
// must be at least 1.
func New[T any](capacity int) *Pool[T] {
	if capacity < 1 {
		capacity = 1
	}
	p := &Pool[T]{
		arena:    make([]slot[T], capacity),
		overflow: make(map[Handle]*T),
		nextOF:   uint32(capacity),
	}
	for i := 0; i < capacity-1; i++ {
		p.arena[i].next = uint32(i + 1)
	}
	p.arena[capacity-1].next = nilIdx
	p.freeHead = 0
	return p
}

// Get borrows a zero-valued T and returns a handle to it. Get never
// fails: once the slab's free list is exhausted it allocates from the
// heap and tracks the allocation in overflow for later accounting.
func (p *Pool[T]) Get() Handle {
	if p.freeHead != nilIdx {
		idx := p.freeHead
		s := &p.arena[idx]
		p.freeHead = s.next
		s.inUse = true
		var zero T
		s.val = zero
		p.borrowed++
		return Handle(idx)
	}
	h := Handle(p.nextOF)
	p.nextOF++
	v := new(T)
	p.overflow[h] = v
	p.borrowed++
	return h
}

// Value returns a pointer to the value backing h. The pointer is valid
// until the next Put of the same handle.
func (p *Pool[T]) Value(h Handle) *T {
	if int(h) < len(p.arena) {
		return &p.arena[h].val
	}
	return p.overflow[h]
}

// Put returns h to the pool. Slab handles rejoin the free list;
// overflow handles are released from the ledger and left for the
// garbage collector.
func (p *Pool[T]) Put(h Handle) error {
	if int(h) < len(p.arena) {
		s := &p.arena[h]
		if !s.inUse {
			return ErrInvalidHandle
		}
		s.inUse = false
		s.next = p.freeHead
		p.freeHead = uint32(h)
		p.borrowed--
		return nil
	}
	if _, ok := p.overflow[h]; !ok {
		return ErrInvalidHandle
	}
	delete(p.overflow, h)
	p.borrowed--
	return nil
}

// Len returns the number of handles currently borrowed.
func (p *Pool[T]) Len() int { return p.borrowed }

// Cap returns the slab capacity (overflow allocations are unbounded
// and excluded from this count).
func (p *Pool[T]) Cap() int { return len(p.arena) }

// Overflowed reports whether the pool has ever spilled into heap
// fallback allocation, a signal the caller under-sized the slab.
func (p *Pool[T]) Overflowed() bool { return p.nextOF != uint32(len(p.arena)) }
