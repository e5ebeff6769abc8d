package demo

import "github.com/go-fsm/fsmkernel"

// Timer-event generator states, adapted from original_source/fsm_defs.h's
// FSM3 (act_timer_norm/act_timer_short). The original declares this table
// but never spawns it in main(); it is kept here as a supplemental demo
// worker that exercises spec.md §9's "mutable timer handles shared between
// worker threads" design note literally: it is a second, independent
// consumer of the stoplight's own LightTimerID, reacting to the same
// Green/Button/Red broadcasts the stoplight and crosswalk already consume.
const (
	TickgenInit   fsmkernel.StateID = "Init"
	TickgenNormal fsmkernel.StateID = "Normal"
	TickgenShort  fsmkernel.StateID = "Short"
	TickgenDone   fsmkernel.StateID = "Done"
)

// NewTickgenTable builds the timer-event generator's transition table.
// periods.Fast stands in for the original's TIMER_T3 (the period it resets
// the shared light timer to on entering Normal); periods.Norm stands in for
// TIMER_T1 (the ceiling act_timer_short clamps the remaining time to).
func NewTickgenTable(periods Periods) (*fsmkernel.Table, error) {
	enterNormal := func(ctx *fsmkernel.ActionContext) error {
		return ctx.SetTimer(LightTimerID, periods.Fast)
	}
	enterShort := func(ctx *fsmkernel.ActionContext) error {
		rem, err := ctx.GetTimer(LightTimerID)
		if err != nil {
			return err
		}
		if rem > periods.Norm {
			return ctx.SetTimer(LightTimerID, periods.Norm)
		}
		return nil
	}
	enterDone := func(ctx *fsmkernel.ActionContext) error {
		ctx.ExitSelf()
		return nil
	}

	def := fsmkernel.NewDefinition().
		State(TickgenInit).
		State(TickgenNormal, fsmkernel.WithEnter(enterNormal)).
		State(TickgenShort, fsmkernel.WithEnter(enterShort)).
		State(TickgenDone, fsmkernel.WithEnter(enterDone)).
		Catalog(Catalog.IDs()...).
		Transition(TickgenInit, EvtInit, TickgenNormal).
		Transition(TickgenNormal, EvtGreen, TickgenShort).
		Transition(TickgenNormal, EvtButton, TickgenShort).
		Transition(TickgenShort, EvtRed, TickgenNormal).
		Transition(TickgenInit, EvtDone, TickgenDone).
		Transition(TickgenNormal, EvtDone, TickgenDone).
		Transition(TickgenShort, EvtDone, TickgenDone)

	return def.Build()
}

// SetupTickgen spawns the timer-event generator worker on rt. Callers that
// do not want this supplemental demonstration simply never call it — the
// stoplight and crosswalk alone form the reference workload spec.md §4.7
// describes.
func SetupTickgen(rt *fsmkernel.Runtime, name string, periods Periods) (*fsmkernel.Worker, error) {
	table, err := NewTickgenTable(periods)
	if err != nil {
		return nil, err
	}
	return rt.Spawn(name, table)
}
