package burst

import (
	"sync"

	"github.com/hotpath/etherframe/keyhash"
	"github.com/hotpath/etherframe/pool"
	"github.com/hotpath/etherframe/swiss"
)

// Registry gives every parent key its own Controller, backed by a
// fixed-capacity pool so that churn in the parent set never triggers a
// heap allocation on the hot path. Where the original design kept one
// such registry per thread (thread-local maps and allocators),
// Registry is a single explicit, shared instance: AddChild is a
// lock-free lookup into a swiss.TableMT, while AddParent/RemoveParent
// take a mutex since they mutate the table's structure.
type Registry struct {
	mu       sync.Mutex
	table    *swiss.TableMT[pool.Handle]
	pool     *pool.Pool[Controller]
	heatupNs int64
	heatupN  int
	coolNs   int64
	coolN    int
}

// NewRegistry creates a Registry whose Controllers all share the same
// heatup/cooldown configuration. maxParents bounds both the swiss
// table and pool capacity; it must be a power of two >= 16 (see
// swiss.NewMT).
func NewRegistry(maxParents int, heatupWindowNs int64, heatupMaxCount int, cooldownWindowNs int64, cooldownMaxCount int) (*Registry, error) {
	table, err := swiss.NewMT[pool.Handle](maxParents, swiss.Reject)
	if err != nil {
		return nil, err
	}
	return &Registry{
		table:    table,
		pool:     pool.New[Controller](maxParents),
		heatupNs: heatupWindowNs,
		heatupN:  heatupMaxCount,
		coolNs:   cooldownWindowNs,
		coolN:    cooldownMaxCount,
	}, nil
}

// AddParent registers parentID with a fresh Controller. A no-op if
// parentID is already registered, so callers cannot leak a pool slot
// by double-registering.
func (r *Registry) AddParent(parentID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.table.Find(parentID); found {
		return nil
	}
	h := r.pool.Get()
	ctrl, err := NewController(r.heatupNs, r.heatupN, r.coolNs, r.coolN)
	if err != nil {
		r.pool.Put(h)
		return err
	}
	*r.pool.Value(h) = *ctrl
	r.table.Insert(parentID, h)
	return nil
}

// RemoveParent unregisters parentID and returns its Controller's slot
// to the pool. A no-op if parentID is not registered.
func (r *Registry) RemoveParent(parentID uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, found := r.table.Find(parentID)
	if !found {
		return
	}
	r.table.Delete(parentID)
	r.pool.Put(h)
}

// AddChild evaluates a burst event against parentID's Controller at
// timestamp tm, returning false if parentID is not registered.
func (r *Registry) AddChild(parentID uint64, tm int64) bool {
	h, found := r.table.Find(parentID)
	if !found {
		return false
	}
	return r.pool.Value(h).Evaluate(tm)
}

// ChildCount returns parentID's live event count within its active
// window, or zero if parentID is not registered.
func (r *Registry) ChildCount(parentID uint64) int {
	h, found := r.table.Find(parentID)
	if !found {
		return 0
	}
	return r.pool.Value(h).State().TotalCount
}

// ParentCount returns the number of registered parents.
func (r *Registry) ParentCount() int { return r.table.Len() }

// AddParentSymbol is AddParent for a parent identified by a symbol or
// other variable-length name rather than a pre-assigned uint64 — an
// instrument ticker, say. symbol is folded to a table key via
// keyhash.String, a deterministic Keccak-256-derived hash.
func (r *Registry) AddParentSymbol(symbol string) error {
	return r.AddParent(keyhash.String(symbol))
}

// AddChildSymbol is AddChild for a parent registered via
// AddParentSymbol.
func (r *Registry) AddChildSymbol(symbol string, tm int64) bool {
	return r.AddChild(keyhash.String(symbol), tm)
}
