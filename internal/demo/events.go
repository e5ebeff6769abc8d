// Package demo holds the non-normative reference FSM tables: a stoplight, a
// crosswalk that follows it, and a supplemental timer-event generator
// adapted from the original C sources' third, unspawned FSM table.
package demo

import "github.com/go-fsm/fsmkernel"

// Event identifiers shared across the demo FSM tables.
const (
	EvtInit       fsmkernel.EventID = "Init"
	EvtDone       fsmkernel.EventID = "Done"
	EvtButton     fsmkernel.EventID = "Button"
	EvtLightTimer fsmkernel.EventID = "LightTimer"
	EvtGreen      fsmkernel.EventID = "Green"
	EvtYellow     fsmkernel.EventID = "Yellow"
	EvtRed        fsmkernel.EventID = "Red"
)

// Catalog assigns the stable numeric codes the command interpreter's "eN"
// token maps back onto, in the order the original cli.c's evt_name table
// declared them.
var Catalog = fsmkernel.NewEventCatalog(EvtInit, EvtDone, EvtButton, EvtLightTimer, EvtGreen, EvtYellow, EvtRed)

// logBroadcastFailures reports per-queue broadcast errors the way the error
// handling design requires: logged, never rolled back.
func logBroadcastFailures(ctx *fsmkernel.ActionContext, errs []error) {
	for _, err := range errs {
		ctx.Logger().Warnw("broadcast partial failure", "error", err)
	}
}
