package fsmkernel

// Transition is an immutable edge in a state graph: (from, event, guard?,
// to). For any given (from, event) pair, a well-formed Table has at most
// one Transition — this is the determinism invariant the runtime assumes
// throughout (Definition.Validate enforces it at Build time).
type Transition struct {
	From  StateID
	Event EventID
	Guard GuardFunc
	To    StateID
}

// TransitionOption configures a Transition built via Definition.Transition.
type TransitionOption func(*Transition)

// WithGuard sets the predicate that must return true for the transition to
// fire. A transition with no guard always fires when matched.
func WithGuard(fn GuardFunc) TransitionOption {
	return func(t *Transition) { t.Guard = fn }
}
