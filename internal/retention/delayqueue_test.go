package retention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelayQueueReleasesInDueOrder(t *testing.T) {
	t.Parallel()

	q := newDelayQueue()
	now := time.Now()
	q.push(newRequest("t", "c", "c", now.Add(30*time.Millisecond)))
	q.push(newRequest("t", "a", "a", now.Add(10*time.Millisecond)))
	q.push(newRequest("t", "b", "b", now.Add(20*time.Millisecond)))

	var keys []string
	for i := 0; i < 3; i++ {
		r, ok := q.take()
		require.True(t, ok)
		keys = append(keys, r.key)
		assert.False(t, time.Now().Before(r.due))
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestDelayQueueBreaksTiesByKey(t *testing.T) {
	t.Parallel()

	q := newDelayQueue()
	due := time.Now()
	q.push(newRequest("t", "z", "z", due))
	q.push(newRequest("t", "a", "a", due))
	q.push(newRequest("t", "m", "m", due))

	var keys []string
	for i := 0; i < 3; i++ {
		r, ok := q.take()
		require.True(t, ok)
		keys = append(keys, r.key)
	}
	assert.Equal(t, []string{"a", "m", "z"}, keys)
}

func TestDelayQueueCloseAndDrain(t *testing.T) {
	t.Parallel()

	q := newDelayQueue()
	far := time.Now().Add(time.Hour)
	q.push(newRequest("t", "b", "b", far))
	q.push(newRequest("t", "a", "a", far))

	q.close()
	_, ok := q.take()
	assert.False(t, ok)

	drained := q.drain()
	require.Len(t, drained, 2)
	assert.Equal(t, "a", drained[0].key)
	assert.Equal(t, "b", drained[1].key)
	assert.Empty(t, q.drain())
}

func TestDelayQueueRefusesPushAfterClose(t *testing.T) {
	t.Parallel()

	q := newDelayQueue()
	assert.True(t, q.push(newRequest("t", "a", "a", time.Now().Add(time.Hour))))

	q.close()
	// A push that loses the race against close must be refused, not parked
	// where no scheduler or drain will ever find it.
	assert.False(t, q.push(newRequest("t", "b", "b", time.Now())))

	drained := q.drain()
	require.Len(t, drained, 1)
	assert.Equal(t, "a", drained[0].key)
}

func TestDelayQueueTakeWakesOnPush(t *testing.T) {
	t.Parallel()

	q := newDelayQueue()
	got := make(chan string, 1)
	go func() {
		r, ok := q.take()
		if ok {
			got <- r.key
		}
	}()

	time.Sleep(10 * time.Millisecond)
	q.push(newRequest("t", "a", "a", time.Now()))

	select {
	case key := <-got:
		assert.Equal(t, "a", key)
	case <-time.After(2 * time.Second):
		t.Fatal("take did not wake on push")
	}
}
