package fsmkernel

// StepResult classifies the outcome of feeding one event into an FSM
// instance.
type StepResult int

const (
	// NoMatch means no transition exists for (current state, event); the
	// event was silently discarded.
	NoMatch StepResult = iota
	// Blocked means a transition matched but its guard returned false;
	// the event was discarded and the state is unchanged.
	Blocked
	// Transitioned means the transition fired: exit action, cursor write,
	// entry action all ran in that order.
	Transitioned
)

func (r StepResult) String() string {
	switch r {
	case NoMatch:
		return "NoMatch"
	case Blocked:
		return "Blocked"
	case Transitioned:
		return "Transitioned"
	default:
		return "Unknown"
	}
}

// Err reports the sentinel error matching r, for callers that prefer the
// error-return idiom spec.md §7 describes over switching on StepResult
// directly. It is nil for Transitioned.
func (r StepResult) Err() error {
	switch r {
	case NoMatch:
		return ErrNoMatch
	case Blocked:
		return ErrGuardRejected
	default:
		return nil
	}
}

// findTransition scans table for the unique transition matching (from,
// event). A well-formed table (Definition.Validate enforced) has at most
// one.
func findTransition(table *Table, from StateID, evt EventID) *Transition {
	for i := range table.transitions {
		t := &table.transitions[i]
		if t.From == from && t.Event == evt {
			return t
		}
	}
	return nil
}

// step implements the interpreter contract: scan for a match, evaluate any
// guard, then run exit-action-of-old, cursor-write, entry-action-of-new in
// that strict order. It returns the outcome, the state reached (unchanged
// unless Transitioned), and whether the entry action requested the worker
// exit (ActionContext.ExitSelf).
func step(table *Table, from StateID, ctx *ActionContext) (StepResult, StateID, bool) {
	match := findTransition(table, from, ctx.Event.ID)
	if match == nil {
		return NoMatch, from, false
	}

	ctx.To = match.To
	if match.Guard != nil && !match.Guard(ctx) {
		return Blocked, from, false
	}

	if fromState := table.states[from]; fromState != nil && fromState.Exit != nil {
		runAction(ctx, fromState.Exit)
	}

	to := match.To
	if ctx.Worker != nil {
		ctx.Worker.mu.Lock()
		ctx.Worker.current = to
		ctx.Worker.mu.Unlock()
	}

	exitRequested := false
	if toState := table.states[to]; toState != nil && toState.Enter != nil {
		runAction(ctx, toState.Enter)
		exitRequested = ctx.exit
	}

	return Transitioned, to, exitRequested
}

// runAction invokes fn, logging a returned error rather than propagating it
// — action failures are the user's responsibility to avoid, not a condition
// the interpreter unwinds on (error handling design, "recoverable
// conditions ... never unwound").
func runAction(ctx *ActionContext, fn ActionFunc) {
	if err := fn(ctx); err != nil && ctx.Worker != nil {
		ctx.Worker.logger.Warnw("action returned error", "worker", ctx.Worker.name, "error", err)
	}
}
