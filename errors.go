package fsmkernel

import "errors"

// Sentinel errors matching the taxonomy in the design's error-handling
// section. Recoverable conditions are returned, never panicked; only
// setup failures in cmd/fsmrun terminate the process.
var (
	// ErrNoMatch is what StepResult.Err reports for NoMatch: no transition
	// exists for the current (state, event) pair. The event is discarded.
	ErrNoMatch = errors.New("fsmkernel: no matching transition for event")

	// ErrGuardRejected is what StepResult.Err reports for Blocked: a matching
	// transition's guard evaluated to false. The event is discarded, state
	// unchanged.
	ErrGuardRejected = errors.New("fsmkernel: guard rejected transition")

	// ErrDuplicateTimer is returned by CreateTimer when the id is already
	// registered.
	ErrDuplicateTimer = errors.New("fsmkernel: timer id already registered")

	// ErrUnknownTimer is returned by timer operations on an unregistered id.
	ErrUnknownTimer = errors.New("fsmkernel: timer id not registered")

	// ErrShuttingDown is returned by EventQueue.Enqueue/Dequeue once the
	// queue has been closed.
	ErrShuttingDown = errors.New("fsmkernel: queue is shutting down")

	// ErrOutOfCapacity is returned by EventQueue.Enqueue when the queue has
	// a configured maximum depth and is at capacity.
	ErrOutOfCapacity = errors.New("fsmkernel: queue is at capacity")

	// ErrUnknownState is returned when a Transition names a State that was
	// never declared.
	ErrUnknownState = errors.New("fsmkernel: state not defined")

	// ErrNoInitialState is returned by Validate when no initial state was
	// ever set.
	ErrNoInitialState = errors.New("fsmkernel: no initial state defined")

	// ErrNonDeterministic is returned by Validate when more than one
	// transition exists for the same (from, event) pair.
	ErrNonDeterministic = errors.New("fsmkernel: duplicate transition for (state, event)")

	// ErrWorkerExists is returned by Runtime.Spawn when the name is already
	// registered.
	ErrWorkerExists = errors.New("fsmkernel: worker name already registered")

	// ErrRegistrySealed is returned by Runtime.Spawn once Start has been
	// called; workers may only be registered during setup.
	ErrRegistrySealed = errors.New("fsmkernel: registry sealed, cannot add workers")

	// ErrJoinTimeout is returned by Shutdown when workers do not terminate
	// within the supplied bound.
	ErrJoinTimeout = errors.New("fsmkernel: join did not complete within bound")
)
