package swiss

import "sync/atomic"

// TableMT is the concurrent SwissTable variant. Control bytes, keys,
// and values are all atomic; Insert claims a slot by CAS-ing its
// control byte from Empty/Deleted to Busy before publishing the key
// and value, so a reader that observes Busy knows a write is in
// flight and must not treat the slot as empty.
//
// Unlike TableST, TableMT carries no mirrored tail copy: setCtrl's
// primary store and a mirror store are two separate atomic operations,
// not one atomic pair, so a concurrent Find wrapping past the end of
// the table could observe the primary write published while still
// reading a stale mirror, producing a false-negative lookup. Probes
// that run past the last slot instead wrap the index itself (pos &
// mask) and re-read the real control byte at the wrapped position.
type TableMT[V any] struct {
	ctrl   []atomic.Int32 // holds an int8 value, sign-extended
	keys   []atomic.Uint64
	values []atomic.Pointer[V]
	mask   uint64
	size   atomic.Int64
	policy DuplicatePolicy
	hash   Hasher
}

// NewMT creates a TableMT with the given fixed capacity. slots must be
// a power of two no smaller than 16.
func NewMT[V any](slots int, policy DuplicatePolicy) (*TableMT[V], error) {
	if !validSlots(slots) {
		return nil, ErrNotPowerOfTwo
	}
	t := &TableMT[V]{
		ctrl:   make([]atomic.Int32, slots),
		keys:   make([]atomic.Uint64, slots),
		values: make([]atomic.Pointer[V], slots),
		mask:   uint64(slots - 1),
		policy: policy,
		hash:   mix64,
	}
	for i := range t.ctrl {
		t.ctrl[i].Store(int32(ctrlEmpty))
	}
	return t, nil
}

// SetHasher overrides the default MurmurHash3 finalizer. Call before
// publishing the table to other goroutines.
func (t *TableMT[V]) SetHasher(h Hasher) { t.hash = h }

func (t *TableMT[V]) loadCtrl(pos int) int8 { return int8(t.ctrl[pos].Load()) }

func (t *TableMT[V]) setCtrl(pos int, v int8) {
	t.ctrl[pos].Store(int32(v))
}

// Find returns the value stored for key and true, or the zero value
// and false if key is not present. Safe to call concurrently with
// Insert/Delete. Probes per-byte with wrap at the tail rather than
// reading a mirrored copy, since TableMT has none.
func (t *TableMT[V]) Find(key uint64) (V, bool) {
	tag, group := splitHash(t.hash(key), t.mask)
	slots := int(t.mask) + 1
	for i := 0; i < slots; i++ {
		pos := (int(group) + i) & int(t.mask)
		c := t.loadCtrl(pos)
		if c == tag {
			if t.keys[pos].Load() == key {
				if p := t.values[pos].Load(); p != nil {
					return *p, true
				}
			}
		}
		if c == ctrlEmpty {
			var zero V
			return zero, false
		}
	}
	var zero V
	return zero, false
}

// Insert adds key/value, or applies Policy if key already exists.
// Spins on slots another goroutine is actively claiming (control byte
// Busy) rather than skipping them, since skipping could miss an
// in-flight duplicate key and violate uniqueness. The probe budget is
// capped at one full pass over SLOTS, counting retries against
// contended slots; once spent, Insert returns ErrCapacityExhausted
// rather than spinning forever under sustained contention.
func (t *TableMT[V]) Insert(key uint64, value V) (bool, error) {
	tag, group := splitHash(t.hash(key), t.mask)
	slots := int(t.mask) + 1
	pos := int(group) & int(t.mask)
	for probes := 0; probes < slots; probes++ {
		ctrl := t.loadCtrl(pos)

		if ctrl == tag {
			if t.keys[pos].Load() == key {
				if t.policy == Reject {
					return false, nil
				}
				v := value
				t.values[pos].Store(&v)
				return true, nil
			}
		}

		if ctrl == ctrlEmpty || ctrl == ctrlDeleted {
			if t.ctrl[pos].CompareAndSwap(int32(ctrl), int32(ctrlBusy)) {
				t.keys[pos].Store(key)
				v := value
				t.values[pos].Store(&v)
				t.setCtrl(pos, tag)
				t.size.Add(1)
				return true, nil
			}
			continue // retry same slot, consuming one unit of probe budget
		}

		if ctrl == ctrlBusy {
			continue // retry same slot, consuming one unit of probe budget
		}

		pos = (pos + 1) & int(t.mask)
	}
	return false, ErrCapacityExhausted
}

// Delete removes key if present. A no-op otherwise.
func (t *TableMT[V]) Delete(key uint64) {
	tag, group := splitHash(t.hash(key), t.mask)
	slots := int(t.mask) + 1
	for i := 0; i < slots; i++ {
		pos := (int(group) + i) & int(t.mask)
		c := t.loadCtrl(pos)
		if c == ctrlEmpty {
			return
		}
		if c == tag && t.keys[pos].Load() == key {
			old := t.values[pos].Swap(nil)
			t.setCtrl(pos, ctrlDeleted)
			if old != nil {
				t.size.Add(-1)
			}
			return
		}
	}
}

// Len returns the number of live entries.
func (t *TableMT[V]) Len() int { return int(t.size.Load()) }

// Cap returns the fixed slot capacity.
func (t *TableMT[V]) Cap() int { return int(t.mask) + 1 }

// Clear removes all entries. Not safe to call concurrently with
// Insert/Find/Delete.
func (t *TableMT[V]) Clear() {
	for i := range t.values {
		t.values[i].Store(nil)
		t.keys[i].Store(0)
	}
	for i := range t.ctrl {
		t.ctrl[i].Store(int32(ctrlEmpty))
	}
	t.size.Store(0)
}

// Range calls fn for every live entry, in no particular order. Not
// safe to call concurrently with Insert/Delete.
func (t *TableMT[V]) Range(fn func(key uint64, value V, distance int) bool) {
	slots := int(t.mask) + 1
	for pos := 0; pos < slots; pos++ {
		c := t.loadCtrl(pos)
		if c < 0 {
			continue
		}
		p := t.values[pos].Load()
		if p == nil {
			continue
		}
		key := t.keys[pos].Load()
		_, group := splitHash(t.hash(key), t.mask)
		distance := (pos + slots - int(group)) & int(t.mask)
		if !fn(key, *p, distance) {
			return
		}
	}
}
