package fsmkernel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueueFIFO(t *testing.T) {
	q := NewEventQueue(0)
	require.NoError(t, q.Enqueue(Event{ID: "a"}))
	require.NoError(t, q.Enqueue(Event{ID: "b"}))
	require.NoError(t, q.Enqueue(Event{ID: "c"}))

	for _, want := range []EventID{"a", "b", "c"} {
		e, err := q.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, e.ID)
	}
}

func TestEventQueueNoCoalescing(t *testing.T) {
	q := NewEventQueue(0)
	for i := 0; i < 3; i++ {
		require.NoError(t, q.Enqueue(Event{ID: "Timer"}))
	}
	assert.Equal(t, 3, q.Len())
}

func TestEventQueueBlockingDequeue(t *testing.T) {
	q := NewEventQueue(0)
	received := make(chan Event, 1)

	go func() {
		e, err := q.Dequeue()
		if err == nil {
			received <- e
		}
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, q.Enqueue(Event{ID: "woke"}))

	select {
	case e := <-received:
		assert.Equal(t, EventID("woke"), e.ID)
	case <-time.After(time.Second):
		t.Fatal("dequeue never woke up")
	}
}

func TestEventQueueOutOfCapacity(t *testing.T) {
	q := NewEventQueue(1)
	require.NoError(t, q.Enqueue(Event{ID: "a"}))
	err := q.Enqueue(Event{ID: "b"})
	assert.ErrorIs(t, err, ErrOutOfCapacity)
}

func TestEventQueueShuttingDown(t *testing.T) {
	q := NewEventQueue(0)
	q.Close()

	assert.ErrorIs(t, q.Enqueue(Event{ID: "a"}), ErrShuttingDown)

	_, err := q.Dequeue()
	assert.ErrorIs(t, err, ErrShuttingDown)
}

func TestEventQueueCloseWakesBlockedDequeue(t *testing.T) {
	q := NewEventQueue(0)
	errCh := make(chan error, 1)

	go func() {
		_, err := q.Dequeue()
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrShuttingDown)
	case <-time.After(time.Second):
		t.Fatal("close did not wake blocked dequeue")
	}
}

// TestEventQueueConcurrentProducersFIFOPerProducer exercises the
// serialization guarantee: many producers race to enqueue, and every
// event that was enqueued is eventually dequeued exactly once.
func TestEventQueueConcurrentProducersDeliverAll(t *testing.T) {
	q := NewEventQueue(0)
	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = q.Enqueue(Event{ID: EventID(rune('A' + p))})
			}
		}(p)
	}
	wg.Wait()

	got := 0
	for q.Len() > 0 {
		_, err := q.Dequeue()
		require.NoError(t, err)
		got++
	}
	assert.Equal(t, producers*perProducer, got)
}
