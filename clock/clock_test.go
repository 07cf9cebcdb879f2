package clock

import "testing"

func TestNowTracksInjectedCycles(t *testing.T) {
	c := &TSC{cycles: func() int64 { return 0 }}
	var now int64
	c.cycles = func() int64 { return now }
	c.Calibrate()

	first := c.Now()
	now += 1_000_000
	second := c.Now()
	if second <= first {
		t.Fatalf("expected Now to advance with cycles: first=%d second=%d", first, second)
	}
}

func TestCalibrateAdvancesSeqAndLeavesItEven(t *testing.T) {
	c := New()
	before := c.seq.Load()
	if before%2 != 0 {
		t.Fatalf("expected even sequence after calibration, got %d", before)
	}
	c.Calibrate()
	after := c.seq.Load()
	if after%2 != 0 {
		t.Fatalf("expected even sequence after recalibration, got %d", after)
	}
	if after <= before {
		t.Fatalf("expected sequence to advance across calibrations")
	}
}
