package fsmkernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sA StateID = "a"
	sB StateID = "b"
	sC StateID = "c"

	evGo   EventID = "go"
	evBack EventID = "back"
)

func TestDefinitionDefaultInitialIsFirstState(t *testing.T) {
	def := NewDefinition().State(sA).State(sB).Transition(sA, evGo, sB)
	tbl, err := def.Build()
	require.NoError(t, err)
	assert.Equal(t, sA, tbl.Initial())
}

func TestDefinitionExplicitInitial(t *testing.T) {
	def := NewDefinition().State(sA).State(sB).Initial(sB)
	tbl, err := def.Build()
	require.NoError(t, err)
	assert.Equal(t, sB, tbl.Initial())
}

func TestDefinitionRejectsUnknownInitial(t *testing.T) {
	def := NewDefinition().State(sA).Initial(sB)
	_, err := def.Build()
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestDefinitionRejectsUnknownTransitionEndpoints(t *testing.T) {
	def := NewDefinition().State(sA).Transition(sA, evGo, sB)
	_, err := def.Build()
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestDefinitionDeterminismViolation(t *testing.T) {
	def := NewDefinition().
		State(sA).State(sB).State(sC).
		Transition(sA, evGo, sB).
		Transition(sA, evGo, sC)
	_, err := def.Build()
	assert.ErrorIs(t, err, ErrNonDeterministic)
}

func TestDefinitionGuardedAlternativesStillDeterministic(t *testing.T) {
	// Two transitions from the same (state, event) pair are a
	// determinism violation even if one carries a guard: spec.md's
	// invariant is "at most one transition per (from, event)", full stop.
	def := NewDefinition().
		State(sA).State(sB).State(sC).
		Transition(sA, evGo, sB, WithGuard(func(*ActionContext) bool { return true })).
		Transition(sA, evGo, sC)
	_, err := def.Build()
	assert.ErrorIs(t, err, ErrNonDeterministic)
}

func TestDefinitionRejectsNoInitialState(t *testing.T) {
	def := NewDefinition()
	_, err := def.Build()
	assert.ErrorIs(t, err, ErrNoInitialState)
}

func TestDefinitionValid(t *testing.T) {
	def := NewDefinition().
		State(sA).State(sB).
		Transition(sA, evGo, sB).
		Transition(sB, evBack, sA)
	_, err := def.Build()
	assert.NoError(t, err)
}

func TestTableAssertReachable(t *testing.T) {
	const evDone EventID = "done"
	def := NewDefinition().
		State(sA).State(sB).
		Transition(sA, evGo, sB).
		Transition(sA, evDone, sA).
		Transition(sB, evDone, sB)
	tbl, err := def.Build()
	require.NoError(t, err)
	assert.NoError(t, tbl.AssertReachable(evDone))
}

func TestTableAssertReachableFailsWhenAStateCannotReceiveIt(t *testing.T) {
	const evDone EventID = "done"
	def := NewDefinition().
		State(sA).State(sB).
		Transition(sA, evGo, sB).
		Transition(sA, evDone, sA)
	tbl, err := def.Build()
	require.NoError(t, err)
	assert.Error(t, tbl.AssertReachable(evDone))
}

func TestStepResultErr(t *testing.T) {
	assert.ErrorIs(t, NoMatch.Err(), ErrNoMatch)
	assert.ErrorIs(t, Blocked.Err(), ErrGuardRejected)
	assert.NoError(t, Transitioned.Err())
}

func TestEventCatalogRoundTrip(t *testing.T) {
	c := NewEventCatalog("Init", "Done", "Red", "Green", "Yellow")
	n, ok := c.Number("Green")
	require.True(t, ok)
	assert.Equal(t, 3, n)

	id, ok := c.ByNumber(3)
	require.True(t, ok)
	assert.Equal(t, EventID("Green"), id)

	_, ok = c.ByNumber(99)
	assert.False(t, ok)
}
