package fsmkernel

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runtime is the explicit, non-global value bundling a Registry and a
// TimerService together with a logger. Nothing in this package reaches for
// a package-level global; every test, and every workload, constructs its
// own Runtime and may run several side by side.
type Runtime struct {
	registry *Registry
	timers   *TimerService
	logger   *zap.SugaredLogger

	onStateChange func(worker string, from, to StateID)

	ctx    context.Context
	cancel context.CancelFunc
}

// RuntimeOption configures a Runtime built via NewRuntime.
type RuntimeOption func(*Runtime)

// WithLogger sets the *zap.SugaredLogger used for every diagnostic emitted
// by the runtime, its workers and its timer service.
func WithLogger(logger *zap.SugaredLogger) RuntimeOption {
	return func(rt *Runtime) { rt.logger = logger }
}

// WithStateChangeCallback registers a callback invoked, outside any
// internal lock, after every successful transition in any worker.
func WithStateChangeCallback(fn func(worker string, from, to StateID)) RuntimeOption {
	return func(rt *Runtime) { rt.onStateChange = fn }
}

// NewRuntime constructs an empty Runtime. Workers are added with Spawn
// until Start is called, which seals the registry and begins execution.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	ctx, cancel := context.WithCancel(context.Background())
	rt := &Runtime{
		registry: newRegistry(),
		logger:   zap.NewNop().Sugar(),
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(rt)
	}
	rt.timers = newTimerService(rt, rt.logger)
	return rt
}

// Spawn registers a new worker bound to table. It fails with
// ErrWorkerExists if name is already registered or ErrRegistrySealed once
// Start has been called — registration is setup-only.
func (rt *Runtime) Spawn(name string, table *Table) (*Worker, error) {
	return rt.registry.spawn(rt, name, table, rt.logger)
}

// Start seals the registry against further Spawn calls, launches the
// timer service, and starts every registered worker's goroutine. It must
// be called exactly once.
func (rt *Runtime) Start() {
	rt.registry.seal()
	rt.timers.start(rt.ctx)
	for _, w := range rt.registry.snapshot() {
		go w.run()
	}
}

// Broadcast enqueues e into every worker's queue, in registry order,
// including the broadcaster's own queue if it is itself a worker. It
// returns one error per queue that failed to accept the event; delivery to
// the remaining queues still happens.
func (rt *Runtime) Broadcast(e Event) []error {
	return rt.registry.broadcast(e)
}

// FindByName looks up a worker by its stable name.
func (rt *Runtime) FindByName(name string) (*Worker, bool) {
	return rt.registry.findByName(name)
}

// Show returns a diagnostic snapshot of every worker's name and current
// state.
func (rt *Runtime) Show() []WorkerSnapshot {
	return rt.registry.show()
}

// CreateTimer registers a new timer bound to event.
func (rt *Runtime) CreateTimer(id TimerID, event EventID) error {
	return rt.timers.Create(id, event)
}

// SetTimer arms (periodMs > 0) or disarms (periodMs == 0) a timer.
func (rt *Runtime) SetTimer(id TimerID, periodMs int) error {
	return rt.timers.Set(id, periodMs)
}

// GetTimer returns milliseconds remaining before the timer's next fire.
func (rt *Runtime) GetTimer(id TimerID) (int, error) {
	return rt.timers.Remaining(id)
}

// GetPeriod returns the timer's currently configured period in
// milliseconds.
func (rt *Runtime) GetPeriod(id TimerID) (int, error) {
	return rt.timers.Period(id)
}

// ToggleTimer flips a timer between armed and disarmed.
func (rt *Runtime) ToggleTimer(id TimerID) error {
	return rt.timers.Toggle(id)
}

// ShowTimers returns a diagnostic snapshot of every registered timer.
func (rt *Runtime) ShowTimers() []TimerSnapshot {
	return rt.timers.Show()
}

// Shutdown stops the timer service and waits (up to timeout) for every
// worker to terminate. Callers broadcast the workload's own "done" event
// before calling Shutdown — the runtime itself has no built-in notion of
// which EventID means "terminate" (Non-goal: the interpreter never treats
// any event specially). It mirrors the original's shutdown order: cancel
// and join the timer service first, then join the workers.
func (rt *Runtime) Shutdown(timeout time.Duration) error {
	rt.cancel()
	rt.timers.waitStopped(timeout)
	return rt.registry.joinAllTimeout(timeout)
}
