// Package ether implements a lock-free, multi-reader message bus: a
// fixed-capacity ring of byte slots that any number of producer
// goroutines can allocate from concurrently, and any number of
// Cursors can read from independently at their own pace. It
// generalizes a single-producer/single-consumer byte-slot ring (one
// fixed payload size, one reader) to multiple readers over a registry
// of message types sharing one slot size.
package ether

import (
	"encoding/binary"
	"errors"
	"sync/atomic"
)

// ErrNotPowerOfTwo is returned by New when size is not a power of two.
var ErrNotPowerOfTwo = errors.New("ether: size must be a power of two")

// ErrPayloadTooLarge is returned by Allocate when typeID's registered
// size exceeds the bus's slot size.
var ErrPayloadTooLarge = errors.New("ether: payload exceeds slot size")

// ErrSignatureMismatch is returned by Initialize when attaching to an
// existing (reset=false) buffer whose stamped registry signature does
// not match this Bus's own Registry.
var ErrSignatureMismatch = errors.New("ether: buffer signature does not match registry")

// ErrCapacityMismatch is returned by Initialize when the buffer is too
// small for the requested slot count and size, or (reset=false) its
// stamped capacity does not match the requested slot count.
var ErrCapacityMismatch = errors.New("ether: buffer capacity mismatch")

// headerSize is the fixed byte length of a bus's buffer header:
// sequence, signature, and capacity, each an 8-byte little-endian
// word.
const headerSize = 24

// Bus is a fixed-capacity, multi-producer, multi-consumer ring of
// message slots. Every slot is slotSize bytes; callers needing
// several message shapes register them in a Registry sized to the
// largest one and pick slotSize accordingly.
type Bus struct {
	size     uint64
	mask     uint64
	slotSize int

	seqs    []atomic.Uint64 // 0 until a producer has claimed the slot for this lap
	stamps  []atomic.Int64  // 0 until Commit has published this slot's payload
	typeIDs []atomic.Uint32
	data    []byte // size*slotSize bytes, a sub-slice of the Initialized buffer past its header

	allocSeq atomic.Uint64
	registry *Registry
}

// New creates a Bus with the given power-of-two slot count, fixed
// slot size in bytes, and message Registry (used only for its
// signature and slot-size validation — Bus itself is payload-shape
// agnostic). The backing buffer is allocated internally and reset;
// callers that need to bind to an externally-provided buffer (shared
// memory, a memory-mapped file, a buffer recovered across a restart)
// should construct with NewUnbound and call Initialize themselves.
func New(size int, slotSize int, registry *Registry) (*Bus, error) {
	b, err := NewUnbound(size, slotSize, registry)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, headerSize+size*slotSize)
	if err := b.Initialize(buf, true); err != nil {
		return nil, err
	}
	return b, nil
}

// NewUnbound creates a Bus with the given power-of-two slot count,
// slot size, and Registry, but no backing buffer — the caller must
// call Initialize before Allocate/Commit/Cursor reads are valid.
func NewUnbound(size int, slotSize int, registry *Registry) (*Bus, error) {
	if size <= 0 || size&(size-1) != 0 {
		return nil, ErrNotPowerOfTwo
	}
	return &Bus{
		size:     uint64(size),
		mask:     uint64(size - 1),
		slotSize: slotSize,
		seqs:     make([]atomic.Uint64, size),
		stamps:   make([]atomic.Int64, size),
		typeIDs:  make([]atomic.Uint32, size),
		registry: registry,
	}, nil
}

// Initialize binds the Bus to buf, a byte buffer of at least
// headerSize + size*slotSize bytes. With reset true, the header is
// zeroed and re-stamped with this Bus's slot count and registry
// signature — the buffer is being claimed fresh. With reset false,
// Initialize instead validates the header already stamped in buf:
// its signature must match this Bus's Registry (ErrSignatureMismatch)
// and its capacity must match this Bus's slot count
// (ErrCapacityMismatch), the handshake that catches a stale or
// foreign buffer before any payload byte is trusted.
//
// The ring's per-slot sequence/commit/type-ID tracking remains
// process-local atomics rather than fields inside buf — only the
// header and payload region are buffer-backed — since this module has
// no cross-process attach path (no mmap) for them to usefully share.
func (b *Bus) Initialize(buf []byte, reset bool) error {
	required := headerSize + int(b.size)*b.slotSize
	if len(buf) < required {
		return ErrCapacityMismatch
	}

	if reset {
		binary.LittleEndian.PutUint64(buf[0:8], 0)
		binary.LittleEndian.PutUint64(buf[8:16], b.registry.Signature())
		binary.LittleEndian.PutUint64(buf[16:24], b.size)
		b.allocSeq.Store(0)
	} else {
		if sig := binary.LittleEndian.Uint64(buf[8:16]); sig != b.registry.Signature() {
			return ErrSignatureMismatch
		}
		if capacity := binary.LittleEndian.Uint64(buf[16:24]); capacity != b.size {
			return ErrCapacityMismatch
		}
		b.allocSeq.Store(binary.LittleEndian.Uint64(buf[0:8]))
	}

	for i := range b.seqs {
		b.seqs[i].Store(0)
		b.stamps[i].Store(0)
		b.typeIDs[i].Store(0)
	}
	b.data = buf[headerSize:required]
	return nil
}

// Signature returns the bus's message Registry signature, for readers
// to compare against their own compiled-in registry before trusting
// any payload bytes.
func (b *Bus) Signature() uint64 { return b.registry.Signature() }

// SlotSize returns the fixed per-message byte capacity.
func (b *Bus) SlotSize() int { return b.slotSize }

// Allocate claims the next slot in allocation order for a message of
// the given type, returning the sequence number the caller must
// Commit with and a byte slice to write the payload into. The
// returned slice is only safe to write into until Commit is called;
// after that, any goroutine's Cursor may read it.
func (b *Bus) Allocate(typeID uint32) (seq uint64, payload []byte, err error) {
	if b.registry.size(typeID) > b.slotSize {
		return 0, nil, ErrPayloadTooLarge
	}
	seq = b.allocSeq.Add(1)
	idx := seq & b.mask
	b.stamps[idx].Store(0) // clear any stale commit marker from a prior lap
	b.typeIDs[idx].Store(typeID)
	b.seqs[idx].Store(seq) // publishes the slot as allocated for this seq
	start := int(idx) * b.slotSize
	return seq, b.data[start : start+b.slotSize], nil
}

// Commit publishes the payload written after Allocate(seq), making it
// visible to Cursor.Read. Call exactly once per Allocate. The commit
// marker is seq itself — never zero for a real allocation — so a
// reader can tell "allocated but not yet committed" (marker still 0)
// from "committed" without a clock read on the publish path.
func (b *Bus) Commit(seq uint64) {
	idx := seq & b.mask
	b.stamps[idx].Store(int64(seq))
}

// Cap returns the bus's fixed slot count.
func (b *Bus) Cap() int { return int(b.size) }
