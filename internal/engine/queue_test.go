package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubmission(id string) submission {
	return submission{req: Request{ID: id, Kind: KindRegisterUser}, reply: make(chan submitResult, 1)}
}

func TestRequestQueue_FIFO(t *testing.T) {
	q := newRequestQueue()

	for _, id := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(testSubmission(id)))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.req.ID)
	}
	assert.Equal(t, 0, q.Len())
}

func TestRequestQueue_TryDequeue_Empty(t *testing.T) {
	q := newRequestQueue()

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestRequestQueue_WaitSignals(t *testing.T) {
	q := newRequestQueue()

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.Enqueue(testSubmission("late"))
	}()

	select {
	case <-q.Wait():
	case <-time.After(time.Second):
		t.Fatal("Wait did not signal")
	}
	got, ok := q.TryDequeue()
	require.True(t, ok)
	assert.Equal(t, "late", got.req.ID)
}

func TestRequestQueue_Close(t *testing.T) {
	q := newRequestQueue()
	require.True(t, q.Enqueue(testSubmission("kept")))

	q.Close()
	q.Close() // idempotent

	assert.False(t, q.Enqueue(testSubmission("rejected")), "closed queue rejects enqueue")

	assert.True(t, q.Closed())
	for range q.Wait() {
		// consume the pending enqueue signal; the loop ends once the channel is closed
	}

	got, ok := q.TryDequeue()
	require.True(t, ok, "queued submissions survive close")
	assert.Equal(t, "kept", got.req.ID)
}

func TestRequestQueue_StaleSignalDoesNotMeanClosed(t *testing.T) {
	q := newRequestQueue()
	require.True(t, q.Enqueue(testSubmission("a")))
	_, ok := q.TryDequeue()
	require.True(t, ok)

	// The enqueue signal is still buffered after the dequeue.
	<-q.Wait()
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.Closed())
}

func TestRequestQueue_ConcurrentEnqueue(t *testing.T) {
	q := newRequestQueue()
	const goroutines = 20
	const perGoroutine = 50

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				q.Enqueue(testSubmission("x"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, q.Len())
}
