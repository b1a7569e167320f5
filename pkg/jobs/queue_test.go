package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 2)
	q := NewQueue("invalidation", func(ctx context.Context, job Job) error {
		done <- job.Key
		return nil
	}, QueueConfig{Workers: 2})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1", Kind: "tenant", Key: "tenant-1"}))
	require.NoError(t, q.TryEnqueue(Job{ID: "2", Kind: "tenant", Key: "tenant-2"}))

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case v := <-done:
			got[v] = true
		case <-time.After(2 * time.Second):
			t.Fatal("job not processed")
		}
	}
	assert.True(t, got["tenant-1"])
	assert.True(t, got["tenant-2"])
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var attempts int32
	succeeded := make(chan struct{})
	q := NewQueue("invalidation", func(ctx context.Context, job Job) error {
		if atomic.AddInt32(&attempts, 1) < 2 {
			return errors.New("redis unavailable")
		}
		close(succeeded)
		return nil
	}, QueueConfig{Workers: 1, RetryDelay: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "1"}))
	select {
	case <-succeeded:
	case <-time.After(2 * time.Second):
		t.Fatal("job was not retried")
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestQueueRejectsBeforeStart(t *testing.T) {
	q := NewQueue("invalidation", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "1"}))
	assert.Error(t, q.TryEnqueue(Job{ID: "1"}))
}

func TestTryEnqueueReportsFullBuffer(t *testing.T) {
	block := make(chan struct{})
	q := NewQueue("invalidation", func(ctx context.Context, job Job) error {
		<-block
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(block)

	require.NoError(t, q.Enqueue(Job{ID: "busy"}))
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.TryEnqueue(Job{ID: "buffered"}))
	err := q.TryEnqueue(Job{ID: "overflow"})
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestQueueCoalescesWaitingKeys(t *testing.T) {
	block := make(chan struct{})
	var handled int32
	q := NewQueue("invalidation", func(ctx context.Context, job Job) error {
		if job.ID == "busy" {
			<-block
		}
		atomic.AddInt32(&handled, 1)
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 4})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "busy"}))
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, q.TryEnqueue(Job{ID: "a", Key: "tenant-1"}))
	require.NoError(t, q.TryEnqueue(Job{ID: "b", Key: "tenant-1"}))
	require.NoError(t, q.TryEnqueue(Job{ID: "c", Key: "tenant-2"}))
	assert.Equal(t, 2, q.Pending())

	close(block)
	require.Eventually(t, func() bool { return atomic.LoadInt32(&handled) == 3 }, time.Second, 5*time.Millisecond)
}
