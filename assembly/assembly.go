// Package assembly wires together Ethers, Dispatchers, and Components
// into one running system, the Go shape of Assembly.hpp/Compartment's
// construction order: ethers first (one buffer per Ether, shared-path
// uniqueness enforced same as Assembly's constructor throwing on a
// reused shmem path), then each Dispatcher and its Components, loaded
// from a roster.Roster the way main.go's phased bootstrap loads pools
// and cycles from SQLite before starting the event loop.
package assembly

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hotpath/etherframe/burst"
	"github.com/hotpath/etherframe/clock"
	"github.com/hotpath/etherframe/diag"
	"github.com/hotpath/etherframe/dispatcher"
	"github.com/hotpath/etherframe/ether"
	"github.com/hotpath/etherframe/roster"
)

// ErrDuplicateSharedPath is returned when two EtherConfigs name the
// same SharedPath, the Go analogue of Assembly's constructor throwing
// std::invalid_argument on a reused shared-memory file.
var ErrDuplicateSharedPath = errors.New("assembly: duplicate shared ether path")

// ErrUnknownEther is returned when a roster dispatcher row names an
// Ether that was never declared in Config.Ethers.
var ErrUnknownEther = errors.New("assembly: unknown ether name")

// ErrUnknownComponentKind is returned when a roster component row
// names a kind the ComponentFactory does not recognize.
var ErrUnknownComponentKind = errors.New("assembly: unknown component kind")

// EtherConfig declares one Ether (message bus) to construct.
type EtherConfig struct {
	Name     string
	Slots    int
	SlotSize int
	Registry *ether.Registry
	// SharedPath, if non-empty, marks this Ether as externally shared
	// and must be unique across every EtherConfig in a Config — the
	// in-process stand-in for SHARED_ETHER's shmem-file uniqueness
	// check, since this module has no real shared-memory backing.
	SharedPath string
}

// ComponentFactory builds a Component for a given kind, returning the
// message type IDs it should be registered against on d.
type ComponentFactory func(kind string, d *dispatcher.Dispatcher) (dispatcher.Component, []uint32, error)

// Config is everything assembly.Build needs to construct a running
// system.
type Config struct {
	Ethers           []EtherConfig
	Roster           *roster.Roster
	ComponentFactory ComponentFactory
	// BurstRegistries maps a roster burst_parents "controller" name to
	// the live Registry that should have ParentID pre-registered at
	// boot, mirroring main.go registering every pool address before
	// InitializeArbitrageSystem starts.
	BurstRegistries map[string]*burst.Registry
	DispatcherOpts  func(name string) dispatcher.Options
}

// Assembly owns every constructed Ether and Dispatcher, plus the
// shared clock every Dispatcher and Component may read time from.
type Assembly struct {
	clock       *clock.TSC
	ethers      map[string]*ether.Bus
	dispatchers map[string]*dispatcher.Dispatcher
	wg          sync.WaitGroup
}

// Clock returns the assembly-wide calibrated clock, the Go analogue of
// Assembly::clock().
func (a *Assembly) Clock() *clock.TSC { return a.clock }

// Ether returns the named Ether's bus, or nil if unknown.
func (a *Assembly) Ether(name string) *ether.Bus { return a.ethers[name] }

// Build constructs every Ether, Dispatcher, and Component named by
// cfg, seeds burst registries from cfg.Roster.BurstParents, and
// returns the ready-to-Start Assembly. No goroutines are started yet.
func Build(cfg Config) (*Assembly, error) {
	if cfg.Roster == nil {
		cfg.Roster = roster.Static()
	}

	seenShared := make(map[string]string, len(cfg.Ethers))
	ethers := make(map[string]*ether.Bus, len(cfg.Ethers))
	for _, ec := range cfg.Ethers {
		if ec.SharedPath != "" {
			if owner, dup := seenShared[ec.SharedPath]; dup {
				return nil, fmt.Errorf("%w: %q used by %q and %q", ErrDuplicateSharedPath, ec.SharedPath, owner, ec.Name)
			}
			seenShared[ec.SharedPath] = ec.Name
		}
		bus, err := ether.New(ec.Slots, ec.SlotSize, ec.Registry)
		if err != nil {
			return nil, fmt.Errorf("assembly: ether %q: %w", ec.Name, err)
		}
		ethers[ec.Name] = bus
	}

	dispatchers := make(map[string]*dispatcher.Dispatcher, len(cfg.Roster.Dispatchers))
	for _, dc := range cfg.Roster.Dispatchers {
		bus, ok := ethers[dc.Ether]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownEther, dc.Ether)
		}
		opts := dispatcher.Options{Core: dc.Core}
		if cfg.DispatcherOpts != nil {
			opts = cfg.DispatcherOpts(dc.Name)
			opts.Core = dc.Core
		}
		cur := ether.NewCursor(bus)
		dispatchers[dc.Name] = dispatcher.New(dc.Name, cur, opts)
	}

	if cfg.ComponentFactory != nil {
		for _, cc := range cfg.Roster.Components {
			d, ok := dispatchers[cc.Dispatcher]
			if !ok {
				return nil, fmt.Errorf("assembly: component %q references unknown dispatcher %q", cc.Kind, cc.Dispatcher)
			}
			component, ids, err := cfg.ComponentFactory(cc.Kind, d)
			if err != nil {
				return nil, fmt.Errorf("%w: %q: %v", ErrUnknownComponentKind, cc.Kind, err)
			}
			d.Register(component, ids...)
		}
	}

	for _, bp := range cfg.Roster.BurstParents {
		reg, ok := cfg.BurstRegistries[bp.Controller]
		if !ok {
			continue
		}
		if err := reg.AddParent(bp.ParentID); err != nil {
			return nil, fmt.Errorf("assembly: burst parent %d on %q: %w", bp.ParentID, bp.Controller, err)
		}
	}

	return &Assembly{
		clock:       clock.New(),
		ethers:      ethers,
		dispatchers: dispatchers,
	}, nil
}

// Start launches one goroutine per Dispatcher, each running its own
// poll loop until Stop is called.
func (a *Assembly) Start() {
	for name, d := range a.dispatchers {
		d := d
		name := name
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					diag.Fatal(fmt.Sprintf("assembly.dispatcher[%s]", name), fmt.Errorf("%v", r))
				}
			}()
			d.Run()
		}()
	}
}

// Stop signals every Dispatcher to halt and waits for all of them to
// return. No partial teardown is attempted beyond this join, matching
// the no-partial-teardown discipline the Dispatcher fatal path already
// follows.
func (a *Assembly) Stop() {
	for _, d := range a.dispatchers {
		d.Stop()
	}
	a.wg.Wait()
}
