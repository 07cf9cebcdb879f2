// Package messages defines the example message shapes exchanged over
// an ether.Bus in this module's demo assembly, along with generic
// helpers for allocating, committing, and reading a concrete Go
// struct directly against a slot's raw bytes via an unsafe cast —
// avoiding the serialize/deserialize pass a general-purpose wire
// format would require, the same zero-copy trick any fixed-payload
// ring relies on.
package messages

import (
	"unsafe"

	"github.com/hotpath/etherframe/ether"
)

// Message IDs. Stable across builds sharing one Registry; changing a
// struct's layout without changing its ID is exactly the schema drift
// ether.Registry's signature is meant to catch.
const (
	OrderNewID  uint32 = 1
	OrderAckID  uint32 = 2
	HeartbeatID uint32 = 3
)

// OrderNew announces a new child order under a burst-controlled
// parent.
type OrderNew struct {
	ParentID  uint64
	OrderID   uint64
	Price     int64
	Qty       int64
	Timestamp int64
}

// OrderAck confirms (or rejects) an OrderNew.
type OrderAck struct {
	OrderID   uint64
	Accepted  bool
	Timestamp int64
}

// Heartbeat is a liveness ping carrying no payload beyond its send
// time.
type Heartbeat struct {
	Timestamp int64
}

// Registry is the compiled-in message list for this package's types.
// Sized with SlotSize to fit OrderNew, the largest of the three.
var Registry = ether.NewRegistry(
	ether.MessageType{ID: OrderNewID, Name: "OrderNew", Size: int(unsafe.Sizeof(OrderNew{}))},
	ether.MessageType{ID: OrderAckID, Name: "OrderAck", Size: int(unsafe.Sizeof(OrderAck{}))},
	ether.MessageType{ID: HeartbeatID, Name: "Heartbeat", Size: int(unsafe.Sizeof(Heartbeat{}))},
)

// SlotSize is the smallest slot size that fits every registered
// message type.
func SlotSize() int {
	max := 0
	for _, mt := range Registry.Types() {
		if mt.Size > max {
			max = mt.Size
		}
	}
	return max
}

// Alloc allocates a slot for T's registered ID, zero-initializes it,
// and returns a pointer aliasing the slot's raw bytes directly — write
// through *msg, then Commit.
func Alloc[T any](bus *ether.Bus, typeID uint32) (seq uint64, msg *T, err error) {
	seq, payload, err := bus.Allocate(typeID)
	if err != nil {
		return 0, nil, err
	}
	msg = (*T)(unsafe.Pointer(&payload[0]))
	var zero T
	*msg = zero
	return seq, msg, nil
}

// Commit publishes seq, the same way ether.Bus.Commit does. Exists
// alongside Alloc purely for call-site symmetry.
func Commit(bus *ether.Bus, seq uint64) { bus.Commit(seq) }

// Read reads the next message from cur as a *T, or ok=false if none
// is ready yet. The caller is responsible for matching T to the
// message's TypeID — a mismatched cast reinterprets the slot's bytes
// as the wrong struct, same as any other unsafe pointer cast.
func Read[T any](cur *ether.Cursor) (typeID uint32, msg *T, ok bool, err error) {
	typeID, payload, ok, err := cur.Read()
	if !ok || err != nil {
		return typeID, nil, ok, err
	}
	return typeID, (*T)(unsafe.Pointer(&payload[0])), true, nil
}
