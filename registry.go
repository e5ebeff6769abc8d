package fsmkernel

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WorkerSnapshot is a diagnostic snapshot of one worker's identity and
// current state, returned by Registry.Show / Runtime.Show.
type WorkerSnapshot struct {
	Name  string
	ID    int
	State StateID
}

// Registry is the process-wide — but never global — ordered collection of
// workers that enables broadcast and lifecycle operations. It lives inside
// an explicit *Runtime value; nothing reads or mutates it through a package
// global (design note "Global registry").
//
// The registry may only be mutated during setup, before Seal is called by
// Runtime.Start. After sealing it is read lock-free: Broadcast and
// JoinAll iterate a snapshot of the slice taken under the mutex, then
// release it before touching any worker, so no lock is held across an
// enqueue or a join.
type Registry struct {
	mu      sync.Mutex
	workers []*Worker
	sealed  bool
	nextID  int
}

func newRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) spawn(rt *Runtime, name string, table *Table, logger *zap.SugaredLogger) (*Worker, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return nil, ErrRegistrySealed
	}
	for _, w := range r.workers {
		if w.name == name {
			return nil, ErrWorkerExists
		}
	}

	w := &Worker{
		name:    name,
		id:      r.nextID,
		queue:   NewEventQueue(0),
		table:   table,
		runtime: rt,
		logger:  logger,
		done:    make(chan struct{}),
	}
	r.nextID++
	r.workers = append(r.workers, w)
	return w, nil
}

func (r *Registry) seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

func (r *Registry) snapshot() []*Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Worker(nil), r.workers...)
}

// broadcast enqueues e into every worker's queue, in registry order. A
// per-queue enqueue failure is collected and returned but does not stop
// delivery to the remaining workers — broadcast partial failure is logged
// by the caller, never rolled back.
func (r *Registry) broadcast(e Event) []error {
	workers := r.snapshot()
	var errs []error
	for _, w := range workers {
		if err := w.queue.Enqueue(e); err != nil {
			errs = append(errs, fmt.Errorf("worker %s: %w", w.name, err))
		}
	}
	return errs
}

func (r *Registry) findByName(name string) (*Worker, bool) {
	for _, w := range r.snapshot() {
		if w.name == name {
			return w, true
		}
	}
	return nil, false
}

func (r *Registry) joinAll() {
	for _, w := range r.snapshot() {
		<-w.done
	}
}

// joinAllTimeout blocks until every worker has terminated or timeout
// elapses, whichever comes first. It never leaks the background join
// goroutine on timeout past the point the workers actually finish, because
// the goroutine itself doesn't exit until joinAll() returns — it simply
// stops being observed.
func (r *Registry) joinAllTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		r.joinAll()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%w (%s)", ErrJoinTimeout, timeout)
	}
}

func (r *Registry) show() []WorkerSnapshot {
	workers := r.snapshot()
	out := make([]WorkerSnapshot, 0, len(workers))
	for _, w := range workers {
		out = append(out, WorkerSnapshot{Name: w.name, ID: w.id, State: w.CurrentState()})
	}
	return out
}
