// ─────────────────────────────────────────────────────────────────────────────
// Demo Entry Point
// ────────────────────────────────────────────────────────────────────────────
// Component: System Orchestration
//
// Wires one Assembly with a single "orders" Ether, a book dispatcher
// and a risk dispatcher, loads its roster from a SQLite database if one
// is configured (falling back to a static in-code roster otherwise),
// then runs a synthetic order workload through it until interrupted.
// ─────────────────────────────────────────────────────────────────────────────

package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"
	"unsafe"

	"github.com/hotpath/etherframe/assembly"
	"github.com/hotpath/etherframe/burst"
	"github.com/hotpath/etherframe/diag"
	"github.com/hotpath/etherframe/dispatcher"
	"github.com/hotpath/etherframe/ether"
	"github.com/hotpath/etherframe/messages"
	"github.com/hotpath/etherframe/roster"
)

// heartbeatComponent counts every OrderNew it receives. It publishes
// no OrderAck or Heartbeat and schedules no timers.
type heartbeatComponent struct {
	bus   *ether.Bus
	acked int
}

func (h *heartbeatComponent) OnMessage(typeID uint32, payload []byte) {
	if typeID != messages.OrderNewID {
		return
	}
	h.acked++
}
func (h *heartbeatComponent) ProcessBegin()    {}
func (h *heartbeatComponent) ProcessEnd()      {}
func (h *heartbeatComponent) ProcessBatchEnd() {}

// burstGateComponent rejects OrderNew messages once a parent key trips
// its burst.Controller into Cooldown.
type burstGateComponent struct {
	registry *burst.Registry
}

func (b *burstGateComponent) OnMessage(typeID uint32, payload []byte) {
	if typeID != messages.OrderNewID {
		return
	}
	order := (*messages.OrderNew)(unsafe.Pointer(&payload[0]))
	if !b.registry.AddChild(order.ParentID, order.Timestamp) {
		diag.Warn("burst_gate.rejected", nil)
	}
}
func (b *burstGateComponent) ProcessBegin()    {}
func (b *burstGateComponent) ProcessEnd()      {}
func (b *burstGateComponent) ProcessBatchEnd() {}

func main() {
	diag.Warn("init", nil)

	rst := loadRoster()

	burstReg, err := burst.NewRegistry(64, int64(time.Second), 50, int64(5*time.Second), 10)
	if err != nil {
		diag.Fatal("burst.NewRegistry", err)
	}

	asm, err := assembly.Build(assembly.Config{
		Ethers: []assembly.EtherConfig{
			{Name: "orders", Slots: 1 << 12, SlotSize: messages.SlotSize(), Registry: messages.Registry},
		},
		Roster: rst,
		ComponentFactory: func(kind string, d *dispatcher.Dispatcher) (dispatcher.Component, []uint32, error) {
			switch kind {
			case "book":
				return &heartbeatComponent{bus: nil}, []uint32{messages.OrderNewID}, nil
			case "burst_gate":
				return &burstGateComponent{registry: burstReg}, []uint32{messages.OrderNewID}, nil
			default:
				return nil, nil, assembly.ErrUnknownComponentKind
			}
		},
		BurstRegistries: map[string]*burst.Registry{"risk": burstReg},
	})
	if err != nil {
		diag.Fatal("assembly.Build", err)
	}

	diag.Warn("ready", nil)

	asm.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	bus := asm.Ether("orders")
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	var parentID uint64
	for {
		select {
		case <-sig:
			asm.Stop()
			return
		case <-ticker.C:
			parentID = (parentID + 1) % 8
			seq, msg, err := messages.Alloc[messages.OrderNew](bus, messages.OrderNewID)
			if err != nil {
				continue
			}
			msg.ParentID = parentID
			msg.Timestamp = time.Now().UnixNano()
			messages.Commit(bus, seq)
		}
	}
}

func loadRoster() *roster.Roster {
	path := os.Getenv("ETHERFRAME_ROSTER_DB")
	if path == "" {
		return staticRoster()
	}
	db, err := roster.Open(path)
	if err != nil {
		diag.Warn("roster.open", err)
		return staticRoster()
	}
	defer db.Close()

	rst, err := roster.Load(db)
	if err != nil {
		diag.Warn("roster.load", err)
		return staticRoster()
	}
	return rst
}

func staticRoster() *roster.Roster {
	return &roster.Roster{
		Dispatchers: []roster.Dispatcher{
			{Name: "book", Core: -1, Ether: "orders"},
			{Name: "risk", Core: -1, Ether: "orders"},
		},
		Components: []roster.Component{
			{Dispatcher: "book", Kind: "book", Order: 0},
			{Dispatcher: "risk", Kind: "burst_gate", Order: 0},
		},
		BurstParents: []roster.BurstParent{
			{Controller: "risk", ParentID: 0},
			{Controller: "risk", ParentID: 1},
		},
	}
}
