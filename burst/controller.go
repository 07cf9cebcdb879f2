package burst

// Mode is the Controller's current state.
type Mode int

const (
	// Normal mode allows events up to the heatup limit before tripping
	// into Cooldown.
	Normal Mode = iota
	// Cooldown mode rejects events until the cooldown window's own
	// count falls back at or under its max, at which point the
	// Controller returns to Normal.
	Cooldown
)

func (m Mode) String() string {
	if m == Cooldown {
		return "cooldown"
	}
	return "normal"
}

// State is a point-in-time snapshot of a Controller.
type State struct {
	Mode       Mode
	StartTime  int64 // cooldown entry timestamp; zero while Normal
	TotalCount int
}

const defaultBuckets = 20

// Controller is a two-state burst gate: it allows events in Normal
// mode up to heatupMaxCount within heatupWindow, then trips to
// Cooldown and rejects events until cooldownWindow has elapsed with
// the event count at or under cooldownMaxCount, at which point it
// returns to Normal. Not safe for concurrent use — pair one Controller
// per owning goroutine, or front it with a Registry.
type Controller struct {
	heatup   *Counter
	cooldown *Counter

	mode          Mode
	cooldownStart int64
	cooldownMaxNs int64
}

// NewController creates a Controller. heatupWindowNs/heatupMaxCount
// bound Normal mode; cooldownWindowNs/cooldownMaxCount bound Cooldown
// mode's exit condition.
func NewController(heatupWindowNs int64, heatupMaxCount int, cooldownWindowNs int64, cooldownMaxCount int) (*Controller, error) {
	heatup, err := NewCounter(heatupWindowNs, heatupMaxCount, defaultBuckets)
	if err != nil {
		return nil, err
	}
	cooldown, err := NewCounter(cooldownWindowNs, cooldownMaxCount, defaultBuckets)
	if err != nil {
		return nil, err
	}
	return &Controller{
		heatup:        heatup,
		cooldown:      cooldown,
		mode:          Normal,
		cooldownMaxNs: cooldownWindowNs,
	}, nil
}

// active returns the Counter driving the current mode.
func (c *Controller) active() *Counter {
	if c.mode == Cooldown {
		return c.cooldown
	}
	return c.heatup
}

// Evaluate reports whether an event at timestamp (nanoseconds) is
// allowed, advancing the Controller's mode as a side effect. tm need
// not be strictly monotonic across callers, but a Controller instance
// expects its own call sequence to be non-decreasing.
func (c *Controller) Evaluate(tm int64) bool {
	switch c.mode {
	case Normal:
		if c.heatup.Increment(tm) {
			return true
		}
		c.switchMode(Cooldown, tm)
		c.cooldown.Increment(tm)
		return false

	default: // Cooldown
		if tm-c.cooldownStart >= c.cooldownMaxNs && c.cooldown.Value() <= c.cooldown.Limit() {
			c.switchMode(Normal, tm)
			c.heatup.Increment(tm)
			return true
		}
		c.cooldown.Increment(tm)
		return false
	}
}

func (c *Controller) switchMode(mode Mode, now int64) {
	c.mode = mode
	c.heatup.reset()
	c.cooldown.reset()
	if mode == Cooldown {
		c.cooldownStart = now
	}
}

func (c *Counter) reset() {
	for i := range c.buckets {
		c.buckets[i] = 0
	}
	c.total = 0
}

// State returns a snapshot of the Controller's current mode, cooldown
// entry time (zero while Normal), and active counter's total.
func (c *Controller) State() State {
	start := int64(0)
	if c.mode == Cooldown {
		start = c.cooldownStart
	}
	return State{Mode: c.mode, StartTime: start, TotalCount: c.active().Value()}
}
