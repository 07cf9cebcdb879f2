package swiss

// TableST is the single-threaded SwissTable variant: plain scalar
// fields, no atomics. The control array carries a mirrored copy of its
// first groupSize bytes in a tail region so that a group probe
// starting near the end of the array never needs a second, wrapped
// read — it always has groupSize contiguous bytes to scan.
type TableST[V any] struct {
	ctrl   []int8
	keys   []uint64
	values []V
	mask   uint64
	size   int
	policy DuplicatePolicy
	hash   Hasher
}

// NewST creates a TableST with the given fixed capacity. slots must be
// a power of two no smaller than 16.
func NewST[V any](slots int, policy DuplicatePolicy) (*TableST[V], error) {
	if !validSlots(slots) {
		return nil, ErrNotPowerOfTwo
	}
	t := &TableST[V]{
		ctrl:   make([]int8, slots+groupSize),
		keys:   make([]uint64, slots),
		values: make([]V, slots),
		mask:   uint64(slots - 1),
		policy: policy,
		hash:   mix64,
	}
	for i := range t.ctrl {
		t.ctrl[i] = ctrlEmpty
	}
	return t, nil
}

// SetHasher overrides the default MurmurHash3 finalizer used to spread
// keys across slots.
func (t *TableST[V]) SetHasher(h Hasher) { t.hash = h }

func (t *TableST[V]) setCtrl(pos int, v int8) {
	t.ctrl[pos] = v
	if pos < groupSize {
		t.ctrl[int(t.mask)+1+pos] = v
	}
}

// Find returns the value stored for key and true, or the zero value
// and false if key is not present.
func (t *TableST[V]) Find(key uint64) (V, bool) {
	tag, group := splitHash(t.hash(key), t.mask)
	slots := int(t.mask) + 1
	for i := 0; i < slots; i += groupSize {
		j := (int(group) + i) & int(t.mask)
		for k := 0; k < groupSize; k++ {
			pos := j + k
			c := t.ctrl[pos]
			if c == tag && t.keys[pos&int(t.mask)] == key {
				return t.values[pos&int(t.mask)], true
			}
			if c == ctrlEmpty {
				var zero V
				return zero, false
			}
		}
	}
	var zero V
	return zero, false
}

// Insert adds key/value, or applies Policy if key already exists.
// Returns ErrFull if no empty/deleted slot is found within one full
// scan of the table, or false-with-nil-error if Policy is Reject and
// the key already exists.
func (t *TableST[V]) Insert(key uint64, value V) (bool, error) {
	tag, group := splitHash(t.hash(key), t.mask)
	slots := int(t.mask) + 1
	free := -1 // first Deleted or Empty slot on the probe path
	for i := 0; i < slots; i++ {
		pos := (int(group) + i) & int(t.mask)
		c := t.ctrl[pos]
		if c < 0 {
			if free < 0 {
				free = pos
			}
			if c == ctrlEmpty {
				break // key cannot sit past an Empty slot
			}
			continue // Deleted: the key may still sit further along
		}
		if c == tag && t.keys[pos] == key {
			if t.policy == Reject {
				return false, nil
			}
			t.values[pos] = value
			return true, nil
		}
	}
	if free < 0 {
		return false, ErrFull
	}
	t.setCtrl(free, tag)
	t.keys[free] = key
	t.values[free] = value
	t.size++
	return true, nil
}

// Delete removes key if present. A no-op otherwise.
func (t *TableST[V]) Delete(key uint64) {
	tag, group := splitHash(t.hash(key), t.mask)
	slots := int(t.mask) + 1
	for i := 0; i < slots; i++ {
		pos := (int(group) + i) & int(t.mask)
		c := t.ctrl[pos]
		if c == ctrlEmpty {
			return
		}
		if c == tag && t.keys[pos] == key {
			t.setCtrl(pos, ctrlDeleted)
			var zero V
			t.values[pos] = zero
			if t.size > 0 {
				t.size--
			}
			return
		}
	}
}

// Len returns the number of live entries.
func (t *TableST[V]) Len() int { return t.size }

// Cap returns the fixed slot capacity.
func (t *TableST[V]) Cap() int { return int(t.mask) + 1 }

// Clear removes all entries without releasing backing storage.
func (t *TableST[V]) Clear() {
	for i := range t.ctrl {
		t.ctrl[i] = ctrlEmpty
	}
	var zeroK uint64
	var zeroV V
	for i := range t.keys {
		t.keys[i] = zeroK
		t.values[i] = zeroV
	}
	t.size = 0
}

// Range calls fn for every live entry, in no particular order. fn
// receives the key, the value, and the entry's probe distance from its
// ideal slot — stop early by returning false.
func (t *TableST[V]) Range(fn func(key uint64, value V, distance int) bool) {
	slots := int(t.mask) + 1
	for pos := 0; pos < slots; pos++ {
		c := t.ctrl[pos]
		if c < 0 {
			continue
		}
		key := t.keys[pos]
		_, group := splitHash(t.hash(key), t.mask)
		distance := (pos + slots - int(group)) & int(t.mask)
		if !fn(key, t.values[pos], distance) {
			return
		}
	}
}
