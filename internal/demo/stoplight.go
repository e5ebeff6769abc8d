package demo

import "github.com/go-fsm/fsmkernel"

// Stoplight states, per spec.md §4.7.
const (
	StoplightInit            fsmkernel.StateID = "Init"
	StoplightGreen           fsmkernel.StateID = "Green"
	StoplightYellow          fsmkernel.StateID = "Yellow"
	StoplightRed             fsmkernel.StateID = "Red"
	StoplightGreenWithButton fsmkernel.StateID = "GreenWithButton"
	StoplightDone            fsmkernel.StateID = "Done"
)

// NewStoplightTable builds the stoplight's transition table. periods
// supplies the already tick-multiplied durations the Green/Yellow/Red/
// GreenWithButton entry actions arm the shared light timer to.
func NewStoplightTable(periods Periods) (*fsmkernel.Table, error) {
	enterGreen := func(ctx *fsmkernel.ActionContext) error {
		logBroadcastFailures(ctx, ctx.Broadcast(fsmkernel.Event{ID: EvtGreen}))
		return ctx.SetTimer(LightTimerID, periods.Norm)
	}
	enterYellow := func(ctx *fsmkernel.ActionContext) error {
		logBroadcastFailures(ctx, ctx.Broadcast(fsmkernel.Event{ID: EvtYellow}))
		return ctx.SetTimer(LightTimerID, periods.Fast)
	}
	enterRed := func(ctx *fsmkernel.ActionContext) error {
		logBroadcastFailures(ctx, ctx.Broadcast(fsmkernel.Event{ID: EvtRed}))
		return ctx.SetTimer(LightTimerID, periods.Norm)
	}
	enterGreenWithButton := func(ctx *fsmkernel.ActionContext) error {
		return ctx.SetTimer(LightTimerID, periods.But)
	}
	enterDone := func(ctx *fsmkernel.ActionContext) error {
		ctx.ExitSelf()
		return nil
	}

	// button honored only with more than t_but remaining on the light
	// timer, per spec.md §4.6: "reject a button press when too little
	// time remains ... preventing near-instant transitions."
	buttonGuard := func(ctx *fsmkernel.ActionContext) bool {
		rem, err := ctx.GetTimer(LightTimerID)
		if err != nil {
			return false
		}
		return rem > periods.But
	}

	def := fsmkernel.NewDefinition().
		State(StoplightInit).
		State(StoplightGreen, fsmkernel.WithEnter(enterGreen)).
		State(StoplightYellow, fsmkernel.WithEnter(enterYellow)).
		State(StoplightRed, fsmkernel.WithEnter(enterRed)).
		State(StoplightGreenWithButton, fsmkernel.WithEnter(enterGreenWithButton)).
		State(StoplightDone, fsmkernel.WithEnter(enterDone)).
		Catalog(Catalog.IDs()...).
		Transition(StoplightInit, EvtInit, StoplightGreen).
		Transition(StoplightGreen, EvtLightTimer, StoplightYellow).
		Transition(StoplightYellow, EvtLightTimer, StoplightRed).
		Transition(StoplightRed, EvtLightTimer, StoplightGreen).
		Transition(StoplightGreen, EvtButton, StoplightGreenWithButton, fsmkernel.WithGuard(buttonGuard)).
		Transition(StoplightGreenWithButton, EvtLightTimer, StoplightYellow).
		Transition(StoplightInit, EvtDone, StoplightDone).
		Transition(StoplightGreen, EvtDone, StoplightDone).
		Transition(StoplightYellow, EvtDone, StoplightDone).
		Transition(StoplightRed, EvtDone, StoplightDone).
		Transition(StoplightGreenWithButton, EvtDone, StoplightDone)

	return def.Build()
}

// SetupStoplight creates the shared light timer and spawns the stoplight
// worker on rt.
func SetupStoplight(rt *fsmkernel.Runtime, name string, periods Periods) (*fsmkernel.Worker, error) {
	if err := rt.CreateTimer(LightTimerID, EvtLightTimer); err != nil {
		return nil, err
	}
	table, err := NewStoplightTable(periods)
	if err != nil {
		return nil, err
	}
	return rt.Spawn(name, table)
}
