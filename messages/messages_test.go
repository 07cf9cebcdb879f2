package messages

import (
	"testing"

	"github.com/hotpath/etherframe/ether"
)

func TestAllocCommitReadOrderNew(t *testing.T) {
	bus, err := ether.New(16, SlotSize(), Registry)
	if err != nil {
		t.Fatalf("ether.New failed: %v", err)
	}
	cur := ether.NewCursor(bus)

	seq, msg, err := Alloc[OrderNew](bus, OrderNewID)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	msg.ParentID = 7
	msg.OrderID = 100
	msg.Price = 4200
	msg.Qty = 5
	Commit(bus, seq)

	typeID, got, ok, err := Read[OrderNew](cur)
	if !ok || err != nil {
		t.Fatalf("Read failed: ok=%v err=%v", ok, err)
	}
	if typeID != OrderNewID {
		t.Fatalf("expected typeID=%d, got %d", OrderNewID, typeID)
	}
	if got.ParentID != 7 || got.OrderID != 100 || got.Price != 4200 || got.Qty != 5 {
		t.Fatalf("round-tripped message mismatch: %+v", got)
	}
}

func TestHeartbeatRoundTrip(t *testing.T) {
	bus, _ := ether.New(16, SlotSize(), Registry)
	cur := ether.NewCursor(bus)

	seq, msg, err := Alloc[Heartbeat](bus, HeartbeatID)
	if err != nil {
		t.Fatalf("Alloc failed: %v", err)
	}
	msg.Timestamp = 123456789
	Commit(bus, seq)

	_, got, ok, err := Read[Heartbeat](cur)
	if !ok || err != nil {
		t.Fatalf("Read failed: ok=%v err=%v", ok, err)
	}
	if got.Timestamp != 123456789 {
		t.Fatalf("expected Timestamp=123456789, got %d", got.Timestamp)
	}
}
