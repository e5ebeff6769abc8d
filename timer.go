package fsmkernel

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimerID uniquely identifies a timer within one TimerService's table.
type TimerID int

// timerCancelPoll bounds how long the multiplexing loop can go between
// checks for cooperative cancellation, per the "Multiplexing design"
// contract (≤200ms).
const timerCancelPoll = 150 * time.Millisecond

type timerState struct {
	event        EventID
	periodMs     int
	prevPeriodMs int
	armed        bool
	handle       *time.Timer // the os_timer_handle
	deadline     time.Time
}

// TimerSnapshot is a diagnostic snapshot of one timer, returned by
// TimerService.Show / Runtime.ShowTimers.
type TimerSnapshot struct {
	ID          TimerID
	Event       EventID
	PeriodMs    int
	RemainingMs int
	Armed       bool
}

// TimerService multiplexes every armed timer's expiry on a single
// goroutine, mirroring the original design's single thread multiplexing
// OS timer expirations via epoll over per-timer timerfds. Go's analogue of
// that dynamic multiplex is reflect.Select over the current set of armed
// timers' channels, rebuilt on every wake.
type TimerService struct {
	mu     sync.Mutex
	timers map[TimerID]*timerState
	order  []TimerID

	rt     *Runtime
	logger *zap.SugaredLogger

	stopped chan struct{}
}

func newTimerService(rt *Runtime, logger *zap.SugaredLogger) *TimerService {
	return &TimerService{
		timers:  make(map[TimerID]*timerState),
		rt:      rt,
		logger:  logger,
		stopped: make(chan struct{}),
	}
}

// Create registers a new timer, disarmed, bound to the given event. It
// fails with ErrDuplicateTimer if id is already registered — the
// non-fatal variant the design's Open Question resolves in favor of,
// rather than aborting the process as one source variant did.
func (s *TimerService) Create(id TimerID, event EventID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.timers[id]; exists {
		return fmt.Errorf("timer %d: %w", id, ErrDuplicateTimer)
	}
	s.timers[id] = &timerState{event: event}
	s.order = append(s.order, id)
	return nil
}

// Set arms the timer to fire periodically every periodMs; periodMs == 0
// disarms it. Repeated disarms are idempotent.
func (s *TimerService) Set(id TimerID, periodMs int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return fmt.Errorf("timer %d: %w", id, ErrUnknownTimer)
	}
	if periodMs <= 0 {
		s.disarmLocked(t)
		return nil
	}
	s.armLocked(t, periodMs)
	return nil
}

// Toggle disarms an armed timer (remembering its period) or re-arms a
// disarmed one to the period it had before the last disarm.
func (s *TimerService) Toggle(id TimerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return fmt.Errorf("timer %d: %w", id, ErrUnknownTimer)
	}
	if t.armed {
		s.disarmLocked(t)
		return nil
	}
	if t.prevPeriodMs > 0 {
		s.armLocked(t, t.prevPeriodMs)
	}
	return nil
}

// Remaining returns the milliseconds before the timer's next fire, or 0 if
// disarmed.
func (s *TimerService) Remaining(id TimerID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return 0, fmt.Errorf("timer %d: %w", id, ErrUnknownTimer)
	}
	if !t.armed {
		return 0, nil
	}
	if rem := time.Until(t.deadline); rem > 0 {
		return int(rem / time.Millisecond), nil
	}
	return 0, nil
}

// Period returns the timer's currently configured period in milliseconds
// (0 if disarmed).
func (s *TimerService) Period(id TimerID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.timers[id]
	if !ok {
		return 0, fmt.Errorf("timer %d: %w", id, ErrUnknownTimer)
	}
	return t.periodMs, nil
}

// Show returns a diagnostic snapshot of every registered timer, in
// registration order.
func (s *TimerService) Show() []TimerSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TimerSnapshot, 0, len(s.order))
	for _, id := range s.order {
		t := s.timers[id]
		rem := 0
		if t.armed {
			if r := time.Until(t.deadline); r > 0 {
				rem = int(r / time.Millisecond)
			}
		}
		out = append(out, TimerSnapshot{
			ID:          id,
			Event:       t.event,
			PeriodMs:    t.periodMs,
			RemainingMs: rem,
			Armed:       t.armed,
		})
	}
	return out
}

func (s *TimerService) armLocked(t *timerState, periodMs int) {
	d := time.Duration(periodMs) * time.Millisecond
	if t.handle != nil {
		if !t.handle.Stop() {
			select {
			case <-t.handle.C:
			default:
			}
		}
		t.handle.Reset(d)
	} else {
		t.handle = time.NewTimer(d)
	}
	t.deadline = time.Now().Add(d)
	t.periodMs = periodMs
	t.armed = true
}

func (s *TimerService) disarmLocked(t *timerState) {
	if t.handle != nil {
		t.handle.Stop()
		t.handle = nil
	}
	if t.periodMs > 0 {
		t.prevPeriodMs = t.periodMs
	}
	t.periodMs = 0
	t.armed = false
}

// start launches the single multiplexing goroutine and returns at once; the
// goroutine itself runs until ctx is cancelled.
func (s *TimerService) start(ctx context.Context) {
	go s.loop(ctx)
}

// loop is the timer service's one thread. Each iteration rebuilds the set
// of cases to wait on — every armed timer's fire channel, a cancellation
// channel, and a bounded wake — so that a timer armed or disarmed between
// wakes is picked up promptly without the loop ever blocking longer than
// timerCancelPoll with no armed timers at all.
func (s *TimerService) loop(ctx context.Context) {
	defer close(s.stopped)

	for {
		cases, ids := s.buildCases(ctx)
		chosen, _, _ := reflect.Select(cases)

		switch chosen {
		case 0: // ctx.Done()
			return
		case 1: // bounded wake, just rebuild and recheck
			continue
		default:
			s.fire(ids[chosen-2])
		}
	}
}

func (s *TimerService) buildCases(ctx context.Context) ([]reflect.SelectCase, []TimerID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cases := make([]reflect.SelectCase, 0, len(s.order)+2)
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(ctx.Done())})
	cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(time.After(timerCancelPoll))})

	ids := make([]TimerID, 0, len(s.order))
	for _, id := range s.order {
		t := s.timers[id]
		if t.armed && t.handle != nil {
			cases = append(cases, reflect.SelectCase{Dir: reflect.SelectRecv, Chan: reflect.ValueOf(t.handle.C)})
			ids = append(ids, id)
		}
	}
	return cases, ids
}

// fire handles one timer's expiry: re-arm it for the next period (timers
// are periodic until disarmed) and broadcast its event. The timer table's
// lock is released before broadcasting, so no lock is held across the
// broadcast call.
func (s *TimerService) fire(id TimerID) {
	s.mu.Lock()
	t, ok := s.timers[id]
	if !ok || !t.armed {
		s.mu.Unlock()
		return
	}
	event := t.event
	period := t.periodMs
	s.armLocked(t, period)
	s.mu.Unlock()

	s.logger.Debugw("timer fired", "timer", id, "event", event)
	for _, err := range s.rt.Broadcast(Event{ID: event}) {
		s.logger.Warnw("broadcast partial failure on timer expiry", "timer", id, "error", err)
	}
}

// waitStopped blocks until the multiplexing goroutine has exited (after
// its context was cancelled) or timeout elapses.
func (s *TimerService) waitStopped(timeout time.Duration) {
	select {
	case <-s.stopped:
	case <-time.After(timeout):
	}
}
