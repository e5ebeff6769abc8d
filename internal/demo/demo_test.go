package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-fsm/fsmkernel"
)

// newWorkload wires a stoplight + crosswalk pair on a fresh, isolated
// Runtime, tick-scaled the way cmd/fsmrun would from the "-t" argument.
func newWorkload(t *testing.T, tickMs int) (*fsmkernel.Runtime, *fsmkernel.Worker, *fsmkernel.Worker, Periods) {
	t.Helper()
	periods := NewPeriods(tickMs)
	rt := fsmkernel.NewRuntime()

	light, err := SetupStoplight(rt, "stoplight", periods)
	require.NoError(t, err)
	walk, err := SetupCrosswalk(rt, "crosswalk")
	require.NoError(t, err)

	rt.Start()
	return rt, light, walk, periods
}

func nap(tickMs, n int) {
	time.Sleep(time.Duration(n*tickMs) * time.Millisecond)
}

// TestScenarioANormalLightCycle mirrors spec.md §8 Scenario A.
func TestScenarioANormalLightCycle(t *testing.T) {
	const tick = 20 // scaled down from the spec's 100ms to keep the suite fast
	rt, light, walk, periods := newWorkload(t, tick)

	rt.Broadcast(fsmkernel.Event{ID: EvtInit})
	nap(tick, 10) // spec.md's "wait 1000ms" at tick=100 == 10 ticks

	assert.Equal(t, StoplightGreen, light.CurrentState())
	assert.Equal(t, CrosswalkDontWalk, walk.CurrentState())

	period, err := rt.GetPeriod(LightTimerID)
	require.NoError(t, err)
	assert.Equal(t, periods.Norm, period)

	rem, err := rt.GetTimer(LightTimerID)
	require.NoError(t, err)
	assert.True(t, rem > 0 && rem <= periods.Norm)

	shutdown(t, rt)
}

// TestScenarioBButtonPressHonored mirrors spec.md §8 Scenario B.
func TestScenarioBButtonPressHonored(t *testing.T) {
	const tick = 20
	rt, light, _, periods := newWorkload(t, tick)

	rt.Broadcast(fsmkernel.Event{ID: EvtInit})
	nap(tick, 1)
	rt.Broadcast(fsmkernel.Event{ID: EvtButton})
	nap(tick, 1)

	assert.Equal(t, StoplightGreenWithButton, light.CurrentState())
	period, err := rt.GetPeriod(LightTimerID)
	require.NoError(t, err)
	assert.Equal(t, periods.But, period)

	nap(tick, 1)
	assert.Equal(t, StoplightYellow, light.CurrentState())

	shutdown(t, rt)
}

// TestScenarioCButtonPressRejectedByGuard mirrors spec.md §8 Scenario C.
func TestScenarioCButtonPressRejectedByGuard(t *testing.T) {
	const tick = 20
	rt, light, _, _ := newWorkload(t, tick)

	rt.Broadcast(fsmkernel.Event{ID: EvtInit})
	nap(tick, 9) // leaves ~1 tick remaining on a 10-tick light timer
	rt.Broadcast(fsmkernel.Event{ID: EvtButton})
	nap(tick, 0)
	time.Sleep(5 * time.Millisecond)

	assert.Equal(t, StoplightGreen, light.CurrentState())

	shutdown(t, rt)
}

// TestScenarioDCrosswalkFollowsStoplight mirrors spec.md §8 Scenario D.
func TestScenarioDCrosswalkFollowsStoplight(t *testing.T) {
	const tick = 20
	rt, light, walk, _ := newWorkload(t, tick)

	rt.Broadcast(fsmkernel.Event{ID: EvtInit})
	nap(tick, 11) // one full Green -> Yellow, per spec.md (10-tick norm + margin)

	assert.Equal(t, StoplightYellow, light.CurrentState())
	assert.Equal(t, CrosswalkDontWalk, walk.CurrentState())

	nap(tick, 3) // Yellow -> Red (3-tick fast period)

	assert.Equal(t, StoplightRed, light.CurrentState())
	assert.Equal(t, CrosswalkWalk, walk.CurrentState())

	shutdown(t, rt)
}

// TestScenarioECleanShutdown mirrors spec.md §8 Scenario E.
func TestScenarioECleanShutdown(t *testing.T) {
	const tick = 20
	rt, light, walk, _ := newWorkload(t, tick)

	rt.Broadcast(fsmkernel.Event{ID: EvtInit})
	nap(tick, 5)

	rt.Broadcast(fsmkernel.Event{ID: EvtDone})
	require.NoError(t, rt.Shutdown(2*time.Second))

	assert.Equal(t, StoplightDone, light.CurrentState())
	assert.Equal(t, CrosswalkDone, walk.CurrentState())
}

// TestScenarioFUnknownEventDiscarded mirrors spec.md §8 Scenario F.
func TestScenarioFUnknownEventDiscarded(t *testing.T) {
	const tick = 20
	rt, light, _, _ := newWorkload(t, tick)

	rt.Broadcast(fsmkernel.Event{ID: EvtInit})
	nap(tick, 1)
	before := light.CurrentState()

	rt.Broadcast(fsmkernel.Event{ID: "99"})
	nap(tick, 1)

	assert.Equal(t, before, light.CurrentState())

	shutdown(t, rt)
}

func shutdown(t *testing.T, rt *fsmkernel.Runtime) {
	t.Helper()
	rt.Broadcast(fsmkernel.Event{ID: EvtDone})
	require.NoError(t, rt.Shutdown(2*time.Second))
}

// TestTickgenReactsToSharedLightTimer exercises the supplemental FSM3
// adaptation: on Init it enters Normal (arming the shared light timer to the
// Fast period), then moves to Short when the stoplight broadcasts Green,
// while the stoplight's own entry actions set the same timer.
func TestTickgenReactsToSharedLightTimer(t *testing.T) {
	const tick = 20
	periods := NewPeriods(tick)
	rt := fsmkernel.NewRuntime()

	_, err := SetupStoplight(rt, "stoplight", periods)
	require.NoError(t, err)
	gen, err := SetupTickgen(rt, "tickgen", periods)
	require.NoError(t, err)

	rt.Start()
	rt.Broadcast(fsmkernel.Event{ID: EvtInit})
	nap(tick, 1)

	assert.Equal(t, TickgenShort, gen.CurrentState())

	shutdown(t, rt)
}
