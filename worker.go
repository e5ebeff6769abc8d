package fsmkernel

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// ActionContext is passed to every entry/exit action and guard. It is the
// Go-idiomatic stand-in for the original design's self_handle(): Go has no
// cheap, stable way for a goroutine to learn "which OS thread am I," so
// rather than looking itself up in the registry, an action is simply
// handed a reference to its own Worker.
type ActionContext struct {
	Runtime *Runtime
	Worker  *Worker
	Event   Event
	From    StateID
	To      StateID

	exit bool
}

// Broadcast enqueues e into every worker's queue, including this one's own
// (self-delivery is deliberate, see Runtime.Broadcast).
func (c *ActionContext) Broadcast(e Event) []error {
	return c.Runtime.Broadcast(e)
}

// Send enqueues e directly into this action's own worker, without visiting
// any other worker's queue.
func (c *ActionContext) Send(e Event) error {
	return c.Worker.queue.Enqueue(e)
}

// SetTimer arms/disarms/re-periods the named timer through the runtime's
// timer service.
func (c *ActionContext) SetTimer(id TimerID, periodMs int) error {
	return c.Runtime.SetTimer(id, periodMs)
}

// ToggleTimer flips the named timer's armed state.
func (c *ActionContext) ToggleTimer(id TimerID) error {
	return c.Runtime.ToggleTimer(id)
}

// GetTimer returns the milliseconds remaining before the named timer's next
// fire, or 0 if disarmed.
func (c *ActionContext) GetTimer(id TimerID) (int, error) {
	return c.Runtime.GetTimer(id)
}

// ExitSelf requests that the worker loop terminate once the current entry
// action returns. It is how a terminal state's entry action ends the
// worker; see the interpreter's Termination contract.
func (c *ActionContext) ExitSelf() {
	c.exit = true
}

// Logger returns the logger actions use to report broadcast partial
// failures themselves, per the error handling design's "logged, never
// rolled back" policy for Broadcast.
func (c *ActionContext) Logger() *zap.SugaredLogger {
	return c.Worker.logger
}

// Worker owns exactly one EventQueue and one FSM Instance, running on its
// own goroutine. Name is stable for the life of the worker; ID is a
// registration-order identity assigned by the Registry (Go has no portable,
// cheaply-read OS thread id to use here, unlike the original's pthread_t).
type Worker struct {
	name  string
	id    int
	queue *EventQueue
	table *Table

	mu      sync.RWMutex
	current StateID

	runtime *Runtime
	logger  *zap.SugaredLogger
	done    chan struct{}
}

// Name returns the worker's stable name.
func (w *Worker) Name() string { return w.name }

// ID returns the worker's registration-order identity.
func (w *Worker) ID() int { return w.id }

// CurrentState returns the worker's current state. Safe to call from any
// goroutine; it is the only externally observable mutable field.
func (w *Worker) CurrentState() StateID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Send enqueues e into this worker's own queue.
func (w *Worker) Send(e Event) error {
	return w.queue.Enqueue(e)
}

// QueueLen reports the worker's current queue depth, for diagnostics.
func (w *Worker) QueueLen() int {
	return w.queue.Len()
}

// run is the worker loop body: enter the initial state, then dequeue and
// step forever until a terminal entry action calls ExitSelf or Dequeue
// fails because the queue was closed.
func (w *Worker) run() {
	defer close(w.done)

	if w.enterInitial() {
		return
	}

	for {
		evt, err := w.queue.Dequeue()
		if err != nil {
			return
		}
		w.logEvent(evt)
		if w.runStep(evt) {
			return
		}
	}
}

func (w *Worker) enterInitial() bool {
	state := w.table.State(w.table.Initial())

	w.mu.Lock()
	w.current = w.table.Initial()
	w.mu.Unlock()

	if state == nil || state.Enter == nil {
		return false
	}
	ctx := &ActionContext{Runtime: w.runtime, Worker: w, To: w.table.Initial()}
	runAction(ctx, state.Enter)
	return ctx.exit
}

func (w *Worker) runStep(evt Event) (exitRequested bool) {
	w.mu.RLock()
	from := w.current
	w.mu.RUnlock()

	ctx := &ActionContext{Runtime: w.runtime, Worker: w, Event: evt, From: from, To: from}
	result, to, exit := step(w.table, from, ctx)

	switch result {
	case NoMatch, Blocked:
		w.logger.Debugw(result.Err().Error(), "worker", w.name, "state", from, "event", evt.ID)
		return false
	default:
		w.mu.Lock()
		w.current = to
		w.mu.Unlock()
		w.logTransition(from, evt, to)
		if w.runtime.onStateChange != nil {
			w.runtime.onStateChange(w.name, from, to)
		}
		return exit
	}
}

func (w *Worker) logTransition(from StateID, evt Event, to StateID) {
	ts := time.Now()
	w.logger.Infow(
		"trans",
		"worker", w.name,
		"ts", ts.Unix(),
		"ts_ms", ts.Nanosecond()/1e6,
		"evt", evt.ID,
		"from", from,
		"to", to,
	)
}

func (w *Worker) logEvent(evt Event) {
	w.logger.Debugw("event", "worker", w.name, "id", w.id, "evt", evt.ID)
}
