package controller

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkQueueDeduplicates(t *testing.T) {
	q := NewWorkQueue()
	defer q.Close()

	q.Add("a")
	q.Add("a")
	q.Add("b")
	assert.Equal(t, 2, q.Len())

	key, ok := q.Get()
	require.True(t, ok)
	assert.Equal(t, "a", key)
	q.Done("a")

	key, ok = q.Get()
	require.True(t, ok)
	assert.Equal(t, "b", key)
	q.Done("b")

	assert.Equal(t, 0, q.Len())
}

func TestWorkQueueReaddWhileProcessing(t *testing.T) {
	q := NewWorkQueue()
	defer q.Close()

	q.Add("a")
	key, ok := q.Get()
	require.True(t, ok)

	q.Add(key)
	q.Add(key)
	assert.Equal(t, 0, q.Len(), "not queued while processing")

	q.Done(key)
	assert.Equal(t, 1, q.Len(), "queued once after Done")

	key, ok = q.Get()
	require.True(t, ok)
	q.Done(key)
	assert.Equal(t, 0, q.Len(), "no phantom requeue")
}

func TestWorkQueueRequeueBacksOff(t *testing.T) {
	q := NewWorkQueue()
	defer q.Close()

	q.Add("a")
	key, _ := q.Get()
	q.Requeue(key)
	assert.Equal(t, 1, q.Retries("a"))

	start := time.Now()
	key, ok := q.Get()
	require.True(t, ok)
	assert.Equal(t, "a", key)
	assert.GreaterOrEqual(t, time.Since(start), initialBackoff/2)

	q.Forget(key)
	q.Done(key)
	assert.Equal(t, 0, q.Retries("a"))
}

func TestWorkQueueCloseUnblocksGet(t *testing.T) {
	q := NewWorkQueue()

	done := make(chan bool)
	go func() {
		_, ok := q.Get()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Get did not return after Close")
	}

	q.Add("ignored")
	assert.Equal(t, 0, q.Len())
}
