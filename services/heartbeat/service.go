// Package heartbeat decides when the control loop's liveness LED toggles.
package heartbeat

import (
	"ctrlloop-go/x/timex"
)

// DefaultPeriod is one second of 1 ms ticks.
const DefaultPeriod timex.Tick = 1000

// Mode selects how the next deadline is derived after a beat.
type Mode uint8

const (
	// Drift restarts the window at the tick that fired, so loop latency
	// accumulates into the phase. This is the board's historical behaviour.
	Drift Mode = iota
	// Anchored advances by exactly one period per beat. Windows missed
	// during a stall are skipped, not replayed.
	Anchored
)

// Schedule tracks the last beat. A beat is due once strictly more than
// Period ticks have elapsed.
type Schedule struct {
	Period timex.Tick
	Mode   Mode
	last   timex.Tick
	beats  uint32
}

// New returns a drift-mode schedule starting at tick 0.
func New(period timex.Tick) *Schedule {
	if period == 0 {
		period = DefaultPeriod
	}
	return &Schedule{Period: period}
}

// Due reports whether a beat should fire at now, and if so records it.
func (s *Schedule) Due(now timex.Tick) bool {
	since := timex.Since(now, s.last)
	if since <= s.Period {
		return false
	}
	if s.Mode == Anchored {
		if since > 2*s.Period {
			s.last = now - since%s.Period
		} else {
			s.last += s.Period
		}
	} else {
		s.last = now
	}
	s.beats++
	return true
}

// Last is the tick the current window started at.
func (s *Schedule) Last() timex.Tick { return s.last }

// Beats counts fired beats.
func (s *Schedule) Beats() uint32 { return s.beats }

// Restart begins a new window at now.
func (s *Schedule) Restart(now timex.Tick) { s.last = now }
