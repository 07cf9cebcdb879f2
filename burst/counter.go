// Package burst implements sliding-window rate limiting: a standalone
// slotted Counter, a Normal/Cooldown Controller built on top of two
// Counters, and a Registry that gives every parent key in a workload
// its own Controller without a per-call allocation.
package burst

import "errors"

// MinWindow is the shortest window Counter accepts, one millisecond.
// Anything finer loses meaningful slot resolution once divided across
// Buckets.
const MinWindow = int64(1_000_000)

// MaxLimit is the largest per-window limit Counter accepts.
const MaxLimit = 10_000

var (
	// ErrInvalidWindow is returned by NewCounter when window is below
	// MinWindow.
	ErrInvalidWindow = errors.New("burst: window must be at least 1ms")
	// ErrInvalidLimit is returned by NewCounter when limit is zero or
	// exceeds MaxLimit.
	ErrInvalidLimit = errors.New("burst: limit must be in [1, 10000]")
)

// Counter tracks how many events have been recorded in the trailing
// window of a given duration, using a fixed ring of slots rather than
// a timestamp list: each slot accumulates events for one resolution-
// wide slice of time, and slots age out as the window slides forward.
// Not safe for concurrent use.
type Counter struct {
	limit      int
	resolution int64 // nanoseconds per slot, ceil(window/len(buckets))
	buckets    []int
	lastSet    bool
	lastStamp  int64
	total      int
}

// NewCounter creates a Counter with the given sliding window (in
// nanoseconds), event limit, and number of slots the window is
// divided into. More buckets give finer aging resolution at the cost
// of more memory; 20 is a reasonable default.
func NewCounter(windowNs int64, limit int, buckets int) (*Counter, error) {
	if windowNs < MinWindow {
		return nil, ErrInvalidWindow
	}
	if limit <= 0 || limit > MaxLimit {
		return nil, ErrInvalidLimit
	}
	if buckets < 1 {
		buckets = 1
	}
	res := (windowNs + int64(buckets) - 1) / int64(buckets)
	if res == 0 {
		res = 1
	}
	return &Counter{
		limit:      limit,
		resolution: res,
		buckets:    make([]int, buckets),
	}, nil
}

// Increment rolls the window forward to timestamp and, if the total
// count within the window is still under the limit, records one event
// and returns true. Otherwise the window is still rolled forward but
// no event is recorded, and Increment returns false. Callers are
// expected to report timestamps in roughly monotonic order, but a
// timestamp older than the last one seen is not simply rejected: if
// it still falls within the trailing window (its slot has not yet
// been recycled for a newer tick), it is credited to that historical
// slot instead. Only a timestamp old enough to have aged out of the
// window entirely is a no-op, reporting false.
func (c *Counter) Increment(timestamp int64) bool {
	if c.lastSet && timestamp < c.lastStamp {
		return c.incrementHistorical(timestamp)
	}
	c.rollWindow(timestamp)

	if c.total >= c.limit {
		return false
	}

	idx := (uint64(timestamp) / uint64(c.resolution)) % uint64(len(c.buckets))
	c.buckets[idx]++
	c.total++
	c.lastStamp = timestamp
	c.lastSet = true
	return true
}

// incrementHistorical credits an out-of-order timestamp (older than
// lastStamp) to its own slot, provided that slot has not yet been
// recycled for a tick more than len(buckets) ahead of it. The window
// itself is not rolled forward — lastStamp only ever advances, never
// rewinds.
func (c *Counter) incrementHistorical(timestamp int64) bool {
	n := uint64(len(c.buckets))
	currentTick := uint64(c.lastStamp) / uint64(c.resolution)
	targetTick := uint64(timestamp) / uint64(c.resolution)
	if currentTick-targetTick >= n {
		return false // aged out of the window entirely
	}
	if c.total >= c.limit {
		return false
	}
	idx := targetTick % n
	c.buckets[idx]++
	c.total++
	return true
}

func (c *Counter) rollWindow(timestamp int64) {
	if !c.lastSet {
		c.lastStamp = timestamp
		c.lastSet = true
		return
	}
	currentTick := uint64(timestamp) / uint64(c.resolution)
	lastTick := uint64(c.lastStamp) / uint64(c.resolution)
	diff := currentTick - lastTick
	if diff == 0 {
		c.lastStamp = timestamp
		return
	}
	n := uint64(len(c.buckets))
	if diff >= n {
		for i := range c.buckets {
			c.buckets[i] = 0
		}
		c.total = 0
	} else {
		for i := uint64(1); i <= diff; i++ {
			idx := (lastTick + i) % n
			c.total -= c.buckets[idx]
			c.buckets[idx] = 0
		}
	}
	c.lastStamp = timestamp
}

// Value reports the current event count within the trailing window.
func (c *Counter) Value() int { return c.total }

// Limit reports the configured event ceiling.
func (c *Counter) Limit() int { return c.limit }

// Window reports the full window duration in nanoseconds
// (resolution * number of buckets, which may exceed the requested
// window slightly due to rounding).
func (c *Counter) Window() int64 { return c.resolution * int64(len(c.buckets)) }

// LastTimestamp reports the most recent timestamp passed to Increment.
func (c *Counter) LastTimestamp() int64 { return c.lastStamp }
