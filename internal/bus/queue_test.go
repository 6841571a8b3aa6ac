package bus

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marketspread/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryPublish(t *testing.T) {
	q := NewQueue(1)
	require.NoError(t, q.TryPublish(Inbound{Seq: 1}))
	assert.ErrorIs(t, q.TryPublish(Inbound{Seq: 2}), exception.ErrQueueFull)
	assert.Equal(t, 1, q.Len())

	q.Close()
	q.Close()
	assert.ErrorIs(t, q.TryPublish(Inbound{Seq: 3}), exception.ErrQueueClosed)
	assert.ErrorIs(t, q.Publish(context.Background(), Inbound{Seq: 3}), exception.ErrQueueClosed)
}

func TestPublishContext(t *testing.T) {
	q := NewQueue(1)
	require.NoError(t, q.Publish(context.Background(), Inbound{Seq: 1}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Publish(ctx, Inbound{Seq: 2}), context.DeadlineExceeded)
}

func TestRunDrainsAfterClose(t *testing.T) {
	q := NewQueue(16)
	for i := 1; i <= 10; i++ {
		require.NoError(t, q.TryPublish(Inbound{Seq: uint64(i), Raw: []byte{byte(i)}}))
	}
	q.Close()

	var seen []uint64
	q.Run(context.Background(), func(in Inbound) {
		seen = append(seen, in.Seq)
	})
	assert.Len(t, seen, 10)
	assert.Equal(t, uint64(1), seen[0])
	assert.Equal(t, uint64(10), seen[9])
}

func TestRunWorkers(t *testing.T) {
	q := NewQueue(8)
	var handled atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Run(context.Background(), func(Inbound) { handled.Add(1) })
		}()
	}

	for i := 0; i < 1000; i++ {
		require.NoError(t, q.Publish(context.Background(), Inbound{Seq: uint64(i)}))
	}
	q.Close()
	wg.Wait()
	assert.Equal(t, int64(1000), handled.Load())
}

func TestRunStopsOnCancel(t *testing.T) {
	q := NewQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(ctx, func(Inbound) {})
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not stop")
	}
}
