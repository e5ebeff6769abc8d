package demo

import "github.com/go-fsm/fsmkernel"

// LightTimerID is the single timer the stoplight FSM arms and re-arms on
// every Green/Yellow/Red entry and on a guard-honored Button press. The
// supplemental timer-event generator (tickgen.go) reacts to this same
// timer rather than owning one of its own, per original_source/fsm_defs.h's
// FSM3, whose act_timer_norm/act_timer_short both operate on the single
// extern fd_timer shared with FSM1.
const LightTimerID fsmkernel.TimerID = 1

// Tick multipliers, matching spec.md §8 Scenario A's t_norm=10·tick,
// t_fast=3·tick, and the button-pressed period §8 Scenario B calls t_but
// (there fixed at one tick).
const (
	TNormTicks = 10
	TFastTicks = 3
	TButTicks  = 1
)

// Periods bundles the tick-multiplied periods (in milliseconds) the demo
// tables are built against. The command interpreter's "-t" argument
// controls tick; Periods converts it once at setup, matching spec.md §6's
// "base tick multiplier applied to all workload timeouts on setup."
type Periods struct {
	Norm int
	Fast int
	But  int
}

// NewPeriods multiplies every demo timer constant by tickMs.
func NewPeriods(tickMs int) Periods {
	return Periods{
		Norm: TNormTicks * tickMs,
		Fast: TFastTicks * tickMs,
		But:  TButTicks * tickMs,
	}
}
