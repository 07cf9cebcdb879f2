// Package dispatcher runs one goroutine per core-pinned worker, each
// draining an ether.Cursor in adaptive-size batches, fanning every
// message out to its registered Components, and polling an embedded
// timer.Queue between batches — the Go shape of Dispatcher.hpp's
// run() loop, with the compile-time USING_ETHER/USING_TIMER/
// USING_BATCH_END trait flags re-expressed as Options fields chosen at
// construction instead of template parameters.
package dispatcher

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/hotpath/etherframe/affinity"
	"github.com/hotpath/etherframe/diag"
	"github.com/hotpath/etherframe/ether"
	"github.com/hotpath/etherframe/timer"
)

// ErrTimerQueueFull is the error logged via diag.Fatal when a
// Dispatcher's embedded timer queue is at capacity and cannot accept
// another scheduled event — an unrecoverable condition, not one a
// caller can meaningfully retry past.
var ErrTimerQueueFull = errors.New("dispatcher: timer queue at capacity")

// Component receives dispatched messages and batch lifecycle
// callbacks. A Dispatcher never calls these concurrently with itself;
// all calls happen from the Dispatcher's own run loop.
type Component interface {
	// OnMessage handles one delivered message. typeID identifies which
	// registered struct payload points at; the Component is responsible
	// for casting it back with an unsafe pointer cast, the same one
	// messages.Read applies.
	OnMessage(typeID uint32, payload []byte)
	ProcessBegin()
	ProcessEnd()
	ProcessBatchEnd()
}

// Options configures a Dispatcher's run loop. Zero-value Options is
// usable: it pins to CPU 0 (set Core to -1 for no pinning), uses the
// default batch sizing and timer capacity, and leaves the timer and
// batch-end steps disabled. There is no epoll step — unlike the timer and
// batch-end trait flags, optional socket polling has no component
// anywhere in this module to drive it, so it isn't represented here.
type Options struct {
	// Core is the logical CPU this dispatcher's run loop pins to. -1
	// means no pinning.
	Core int
	// InitialBatchSize is the starting poll batch size; it doubles when
	// the cursor's backlog exceeds the current batch size <<3 and halves back
	// down (never below InitialBatchSize) after a short batch.
	InitialBatchSize int
	// MaxBatchSize caps the adaptive doubling.
	MaxBatchSize int
	// WithTimer enables polling the embedded timer.Queue every
	// iteration.
	WithTimer bool
	// WithBatchEnd enables the ProcessBatchEnd fan-out every iteration.
	WithBatchEnd bool
	// TimerCapacity sizes the embedded timer.Queue.
	TimerCapacity int
}

func (o Options) withDefaults() Options {
	if o.InitialBatchSize <= 0 {
		o.InitialBatchSize = 64
	}
	if o.MaxBatchSize <= 0 {
		o.MaxBatchSize = 1 << 16
	}
	if o.TimerCapacity <= 0 {
		o.TimerCapacity = 1 << 10
	}
	return o
}

// Dispatcher owns one ether.Cursor, a fixed set of Components
// registered against message IDs, and an embedded timer.Queue.
type Dispatcher struct {
	name    string
	opts    Options
	cursor  *ether.Cursor
	timers  *timer.Queue
	route   map[uint32][]Component
	all     []Component
	stop    atomic.Uint32
	running atomic.Uint32
}

// New constructs a Dispatcher named name, draining cur, with its own
// timer queue sized per opts.
func New(name string, cur *ether.Cursor, opts Options) *Dispatcher {
	opts = opts.withDefaults()
	return &Dispatcher{
		name:   name,
		opts:   opts,
		cursor: cur,
		timers: timer.New(opts.TimerCapacity),
		route:  make(map[uint32][]Component),
	}
}

// Register attaches component to this dispatcher, to be invoked for
// every message whose typeID is in ids. A component with no ids is
// still tracked for ProcessBegin/ProcessEnd/ProcessBatchEnd but never
// receives OnMessage.
func (d *Dispatcher) Register(component Component, ids ...uint32) {
	d.all = append(d.all, component)
	for _, id := range ids {
		d.route[id] = append(d.route[id], component)
	}
}

// ScheduleAt arms a one-time event for the given absolute time, the Go
// analogue of Dispatcher::setTimer delegating into _timers. A full
// timer queue is fatal, logged via diag.Fatal — the caller has no
// recovery path and silently dropping the event would leave it
// believing the timer is armed when it is not.
func (d *Dispatcher) ScheduleAt(when time.Time, cb timer.Callback) {
	if !d.timers.ScheduleAt(when, cb) {
		diag.Fatal(fmt.Sprintf("dispatcher[%s].timer", d.name), ErrTimerQueueFull)
	}
}

// ScheduleAfter arms an event for now+wait, re-arming itself every
// wait if kind is timer.Recurring. A full timer queue is fatal, the
// same as ScheduleAt.
func (d *Dispatcher) ScheduleAfter(kind timer.Kind, wait time.Duration, cb timer.Callback) {
	if !d.timers.ScheduleAfter(kind, wait, cb) {
		diag.Fatal(fmt.Sprintf("dispatcher[%s].timer", d.name), ErrTimerQueueFull)
	}
}

// Stop requests the run loop exit after its current iteration.
func (d *Dispatcher) Stop() { d.stop.Store(1) }

// Running reports whether Run's loop is currently executing.
func (d *Dispatcher) Running() bool { return d.running.Load() != 0 }

// Run drains the cursor until Stop is called, or until a fatal
// condition (cursor overrun, timer queue overflow, or a panic escaping
// a Component) occurs, at which point it logs a structured diagnostic
// via diag.Fatal and the process exits — no partial teardown of peer
// dispatchers is attempted, matching the fatalExit discipline this
// package is grounded on.
func (d *Dispatcher) Run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if d.opts.Core >= 0 {
		if err := affinity.Pin(d.opts.Core); err != nil {
			diag.Fatal(fmt.Sprintf("dispatcher[%s].pin", d.name), err)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			diag.Fatal(fmt.Sprintf("dispatcher[%s].panic", d.name), fmt.Errorf("%v", r))
		}
	}()

	d.running.Store(1)
	defer d.running.Store(0)

	batchSize := d.opts.InitialBatchSize
	initial := batchSize

	d.processBegin()

	for d.stop.Load() == 0 {
		read, err := d.poll(batchSize)
		if err != nil {
			diag.Fatal(fmt.Sprintf("dispatcher[%s].poll", d.name), err)
		}

		if pending := d.cursor.Pending(); pending > uint64(batchSize<<3) {
			if next := batchSize << 1; next <= d.opts.MaxBatchSize {
				batchSize = next
			} else {
				batchSize = d.opts.MaxBatchSize
			}
		} else if read < batchSize && batchSize > initial {
			if next := batchSize >> 1; next >= initial {
				batchSize = next
			} else {
				batchSize = initial
			}
		}

		if d.opts.WithTimer {
			d.timers.Poll()
		}
		if d.opts.WithBatchEnd {
			d.processBatchEnd()
		}

		if read == 0 {
			runtime.Gosched()
		}

		d.processEnd()
	}
}

// poll drains up to max messages, dispatching each to its registered
// Components, and returns how many were delivered.
func (d *Dispatcher) poll(max int) (int, error) {
	read := 0
	for read < max {
		typeID, payload, ok, err := d.cursor.Read()
		if err != nil {
			return read, err
		}
		if !ok {
			break
		}
		for _, c := range d.route[typeID] {
			c.OnMessage(typeID, payload)
		}
		read++
	}
	return read, nil
}

func (d *Dispatcher) processBegin() {
	for _, c := range d.all {
		c.ProcessBegin()
	}
}

func (d *Dispatcher) processEnd() {
	for _, c := range d.all {
		c.ProcessEnd()
	}
}

func (d *Dispatcher) processBatchEnd() {
	for _, c := range d.all {
		c.ProcessBatchEnd()
	}
}
