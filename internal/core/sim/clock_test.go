package sim

import "testing"

var testClock = ClockConfig{PeriodMs: 1000, OvertimeMs: 500}

func TestAdvanceClockThroughPeriodsAndOvertime(t *testing.T) {
	c := NewClockState()

	AdvanceClock(&c, 1000, testClock)
	if c.Period != 2 || c.Phase != PhaseRegulation {
		t.Fatalf("after 1000ms: period=%d phase=%s, want 2 regulation", c.Period, c.Phase)
	}

	AdvanceClock(&c, 2000, testClock)
	if c.Period != OvertimePeriod || c.Phase != PhaseOvertime {
		t.Fatalf("after 3000ms: period=%d phase=%s, want 4 overtime", c.Period, c.Phase)
	}

	AdvanceClock(&c, 500, testClock)
	if c.Phase != PhaseFinal {
		t.Fatalf("after overtime: phase=%s, want final", c.Phase)
	}
	if c.ClockMs != testClock.OvertimeMs {
		t.Fatalf("final clock = %v, want clamped to %v", c.ClockMs, testClock.OvertimeMs)
	}
}

func TestAdvanceClockCarriesRemainder(t *testing.T) {
	c := NewClockState()
	AdvanceClock(&c, 1250, testClock)
	if c.Period != 2 || c.ClockMs != 250 {
		t.Fatalf("period=%d clock=%v, want 2 and 250", c.Period, c.ClockMs)
	}
}

func TestAdvanceClockBelowPeriodStaysPut(t *testing.T) {
	c := NewClockState()
	AdvanceClock(&c, 999, testClock)
	if c.Period != 1 || c.ClockMs != 999 || c.Phase != PhaseRegulation {
		t.Fatalf("got %+v", c)
	}
}

func TestAdvanceClockSingleHugeStepReachesFinal(t *testing.T) {
	c := NewClockState()
	AdvanceClock(&c, 10_000, testClock)
	if c.Phase != PhaseFinal || c.Period != OvertimePeriod {
		t.Fatalf("got %+v, want final in period 4", c)
	}
	if c.ClockMs != testClock.OvertimeMs {
		t.Fatalf("clock = %v, want %v", c.ClockMs, testClock.OvertimeMs)
	}
}

func TestAdvanceClockStepIntoOvertimeKeepsRemainder(t *testing.T) {
	c := NewClockState()
	AdvanceClock(&c, 3200, testClock)
	if c.Phase != PhaseOvertime || c.ClockMs != 200 {
		t.Fatalf("got %+v, want overtime with 200ms elapsed", c)
	}
}

func TestAdvanceClockFinalIsNoOp(t *testing.T) {
	c := NewClockState()
	AdvanceClock(&c, 3500, testClock)
	if !c.IsFinal() {
		t.Fatalf("expected final, got %+v", c)
	}
	before := c
	AdvanceClock(&c, 12345, testClock)
	if c != before {
		t.Fatalf("final clock mutated: %+v -> %+v", before, c)
	}
}

func TestAdvanceClockPeriodNeverDecreases(t *testing.T) {
	c := NewClockState()
	last := c.Period
	for i := 0; i < 400; i++ {
		AdvanceClock(&c, 37, testClock)
		if c.Period < last {
			t.Fatalf("period went from %d to %d", last, c.Period)
		}
		last = c.Period
		if c.ClockMs < 0 {
			t.Fatalf("negative clock %v", c.ClockMs)
		}
	}
	if !c.IsFinal() {
		t.Fatalf("14.8s of 37ms steps should finish the match, got %+v", c)
	}
}
