package ether

import "errors"

// ErrOverrun is returned by Read when the bus has wrapped all the way
// around the cursor's unread backlog — a producer has overwritten a
// slot the cursor had not yet consumed. The cursor has no way to
// recover the lost message; dispatcher.Run treats this error as fatal.
var ErrOverrun = errors.New("ether: cursor overrun, unread slot was overwritten")

// Cursor reads a Bus in strict sequence order, starting from sequence
// number 1. Multiple Cursors may read the same Bus independently and
// concurrently; a Cursor itself is only safe for use by one goroutine
// at a time.
type Cursor struct {
	bus  *Bus
	next uint64
}

// NewCursor creates a Cursor over bus, positioned to read the first
// message ever allocated.
func NewCursor(bus *Bus) *Cursor {
	return &Cursor{bus: bus, next: 1}
}

// Read returns the next message in sequence, advancing the cursor.
// The second return value is false if no new message has been
// committed yet — this covers both the ordinary empty-bus case and
// the narrow allocate/commit race where a producer has claimed the
// slot (Bus.Allocate returned) but not yet published its payload (Bus
// .Commit has not yet run): Read treats that slot as "not yet" rather
// than spinning, so callers naturally re-poll on their own schedule.
func (c *Cursor) Read() (typeID uint32, payload []byte, ok bool, err error) {
	idx := c.next & c.bus.mask
	gotSeq := c.bus.seqs[idx].Load()

	if gotSeq < c.next {
		return 0, nil, false, nil
	}
	if gotSeq > c.next {
		return 0, nil, false, ErrOverrun
	}

	stamp := c.bus.stamps[idx].Load()
	if stamp == 0 {
		return 0, nil, false, nil
	}

	typeID = c.bus.typeIDs[idx].Load()
	start := int(idx) * c.bus.slotSize
	payload = c.bus.data[start : start+c.bus.slotSize]
	c.next++
	return typeID, payload, true, nil
}

// Pending reports how many allocated-and-committed messages this
// cursor is behind the bus's current allocation point. Approximate
// under concurrent producers — intended for monitoring, not control
// flow.
func (c *Cursor) Pending() uint64 {
	allocated := c.bus.allocSeq.Load()
	if allocated < c.next {
		return 0
	}
	return allocated - c.next + 1
}
