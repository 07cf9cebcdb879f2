package assembly

import (
	"testing"
	"time"

	"github.com/hotpath/etherframe/burst"
	"github.com/hotpath/etherframe/dispatcher"
	"github.com/hotpath/etherframe/ether"
	"github.com/hotpath/etherframe/roster"
)

type countingComponent struct{ count int }

func (c *countingComponent) OnMessage(typeID uint32, payload []byte) { c.count++ }
func (c *countingComponent) ProcessBegin()                           {}
func (c *countingComponent) ProcessEnd()                             {}
func (c *countingComponent) ProcessBatchEnd()                        {}

func TestBuildStartStop(t *testing.T) {
	reg := ether.NewRegistry(ether.MessageType{ID: 1, Name: "ping", Size: 8})

	comp := &countingComponent{}
	cfg := Config{
		Ethers: []EtherConfig{{Name: "orders", Slots: 8, SlotSize: 8, Registry: reg}},
		Roster: &roster.Roster{
			Dispatchers: []roster.Dispatcher{{Name: "book", Core: -1, Ether: "orders"}},
			Components:  []roster.Component{{Dispatcher: "book", Kind: "counter", Order: 0}},
		},
		ComponentFactory: func(kind string, d *dispatcher.Dispatcher) (dispatcher.Component, []uint32, error) {
			return comp, []uint32{1}, nil
		},
	}

	a, err := Build(cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	a.Start()

	bus := a.Ether("orders")
	seq, payload, err := bus.Allocate(1)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	payload[0] = 1
	bus.Commit(seq)

	deadline := time.After(time.Second)
	for comp.count == 0 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for dispatch")
		default:
		}
	}

	a.Stop()

	if comp.count != 1 {
		t.Fatalf("expected 1 message delivered, got %d", comp.count)
	}
}

func TestBuildRejectsDuplicateSharedPath(t *testing.T) {
	reg := ether.NewRegistry(ether.MessageType{ID: 1, Name: "ping", Size: 8})
	cfg := Config{
		Ethers: []EtherConfig{
			{Name: "a", Slots: 8, SlotSize: 8, Registry: reg, SharedPath: "/tmp/shared"},
			{Name: "b", Slots: 8, SlotSize: 8, Registry: reg, SharedPath: "/tmp/shared"},
		},
		Roster: roster.Static(),
	}
	if _, err := Build(cfg); err == nil {
		t.Fatal("expected error for duplicate shared path")
	}
}

func TestBuildSeedsBurstParents(t *testing.T) {
	reg := ether.NewRegistry(ether.MessageType{ID: 1, Name: "ping", Size: 8})
	burstReg, err := burst.NewRegistry(16, int64(time.Second), 5, int64(time.Second), 2)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	cfg := Config{
		Ethers: []EtherConfig{{Name: "orders", Slots: 8, SlotSize: 8, Registry: reg}},
		Roster: &roster.Roster{
			Dispatchers:  []roster.Dispatcher{{Name: "book", Core: -1, Ether: "orders"}},
			BurstParents: []roster.BurstParent{{Controller: "risk", ParentID: 7}},
		},
		BurstRegistries: map[string]*burst.Registry{"risk": burstReg},
	}

	if _, err := Build(cfg); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if burstReg.ParentCount() != 1 {
		t.Fatalf("expected 1 seeded parent, got %d", burstReg.ParentCount())
	}
}
