package fsmkernel

// StateID names a state within a single FSM table. Names are unique within
// a table, for diagnostics only — equality of behavior is driven by the
// transition table, not by the name.
type StateID string

// ActionFunc is a side-effecting function run on entry to or exit from a
// state. It may broadcast, arm/disarm timers, and call ActionContext.Send
// to re-enqueue into its own worker; it must not call step recursively and
// must not block indefinitely.
type ActionFunc func(ctx *ActionContext) error

// GuardFunc is a side-effect-free predicate gating a transition. Returning
// false is not an error: it means "discard this event, stay put."
type GuardFunc func(ctx *ActionContext) bool

// State is an immutable record: a name plus optional entry/exit actions.
// Hierarchical states, history pseudostates and condition/junction
// pseudostates are an explicit non-goal of this runtime.
type State struct {
	ID    StateID
	Enter ActionFunc
	Exit  ActionFunc
}

// StateOption configures a State built via Definition.State.
type StateOption func(*State)

// WithEnter sets the action run when the state is entered.
func WithEnter(fn ActionFunc) StateOption {
	return func(s *State) { s.Enter = fn }
}

// WithExit sets the action run when the state is exited.
func WithExit(fn ActionFunc) StateOption {
	return func(s *State) { s.Exit = fn }
}
