package demo

import "github.com/go-fsm/fsmkernel"

// Crosswalk states, adapted from original_source/fsm_defs.h's FSM2.
const (
	CrosswalkInit     fsmkernel.StateID = "Init"
	CrosswalkWalk     fsmkernel.StateID = "Walk"
	CrosswalkDontWalk fsmkernel.StateID = "DontWalk"
	CrosswalkDone     fsmkernel.StateID = "Done"
)

// NewCrosswalkTable builds the crosswalk's transition table. The crosswalk
// has no timer of its own: it reacts purely to the Green/Red color events
// the stoplight broadcasts on every light change.
func NewCrosswalkTable() (*fsmkernel.Table, error) {
	enterDone := func(ctx *fsmkernel.ActionContext) error {
		ctx.ExitSelf()
		return nil
	}

	def := fsmkernel.NewDefinition().
		State(CrosswalkInit).
		State(CrosswalkWalk).
		State(CrosswalkDontWalk).
		State(CrosswalkDone, fsmkernel.WithEnter(enterDone)).
		Catalog(Catalog.IDs()...).
		Transition(CrosswalkInit, EvtInit, CrosswalkInit).
		Transition(CrosswalkInit, EvtRed, CrosswalkWalk).
		Transition(CrosswalkInit, EvtGreen, CrosswalkDontWalk).
		Transition(CrosswalkWalk, EvtGreen, CrosswalkDontWalk).
		Transition(CrosswalkDontWalk, EvtRed, CrosswalkWalk).
		Transition(CrosswalkInit, EvtDone, CrosswalkDone).
		Transition(CrosswalkWalk, EvtDone, CrosswalkDone).
		Transition(CrosswalkDontWalk, EvtDone, CrosswalkDone)

	return def.Build()
}

// SetupCrosswalk spawns the crosswalk worker on rt.
func SetupCrosswalk(rt *fsmkernel.Runtime, name string) (*fsmkernel.Worker, error) {
	table, err := NewCrosswalkTable()
	if err != nil {
		return nil, err
	}
	return rt.Spawn(name, table)
}
