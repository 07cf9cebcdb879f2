// Package swiss implements a fixed-capacity, open-addressed hash table
// keyed by uint64, following the SwissTable control-byte design: a
// parallel array of control bytes (Empty/Deleted/7-bit tag) is probed
// 16 slots at a time so that most lookups and insertions terminate
// after scanning a single cache-line-sized group. TableST is for
// single-goroutine use; TableMT adds a CAS-based claim
// protocol so any number of goroutines can insert and look up
// concurrently. Neither variant grows — callers size SLOTS for the
// expected key-set up front, the same fixed-capacity discipline the
// rest of this module uses throughout.
package swiss

import "errors"

// Control byte values. Tags occupy the low 7 bits of a control byte
// and are always non-negative when interpreted as int8.
const (
	ctrlEmpty   int8 = -1   // 0xFF
	ctrlDeleted int8 = -128 // 0x80
	ctrlBusy    int8 = -2   // 0xFE
)

const groupSize = 16

// DuplicatePolicy controls Insert's behavior when the key already
// exists in the table.
type DuplicatePolicy int

const (
	// Reject leaves the existing value untouched and reports failure.
	Reject DuplicatePolicy = iota
	// Overwrite replaces the existing value and reports success.
	Overwrite
)

// Hasher produces the table's internal hash of a uint64 key. The
// low 7 bits of the hash select a tag and the remaining bits select a
// starting group; a poor hasher only costs extra probing, never
// correctness.
type Hasher func(key uint64) uint64

// ErrNotPowerOfTwo is returned by NewST and NewMT when slots is not a power of two
// or is smaller than one probe group.
var ErrNotPowerOfTwo = errors.New("swiss: slots must be a power of two and >= 16")

// ErrFull is returned by TableST.Insert when no slot could be claimed
// after a full scan of the table.
var ErrFull = errors.New("swiss: table is full")

// ErrCapacityExhausted is returned by TableMT.Insert once its probe
// budget (one full pass over SLOTS, counting retries against
// contended slots) is spent without claiming or finding a slot.
var ErrCapacityExhausted = errors.New("swiss: capacity exhausted")

// mix64 is the MurmurHash3 finalizer, the default Hasher for both
// table variants.
func mix64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}

func splitHash(h uint64, mask uint64) (tag int8, group uint64) {
	tag = int8(h & 0x7f)
	group = (h >> 7) & mask
	return
}

func validSlots(slots int) bool {
	return slots >= groupSize && slots&(slots-1) == 0
}
