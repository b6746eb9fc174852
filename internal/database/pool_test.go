package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_InvalidURI(t *testing.T) {
	p := NewPool("not-a-mongodb-uri", "staffhub", time.Second)
	ctx := context.Background()

	_, err := p.Client(ctx)
	require.Error(t, err)

	// failures are not cached
	_, err = p.Database(ctx)
	require.Error(t, err)
	assert.Error(t, p.Ping(ctx))
}

func TestPool_ConcurrentCallersShareFailure(t *testing.T) {
	p := NewPool("not-a-mongodb-uri", "staffhub", time.Second)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = p.Client(context.Background())
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.Error(t, err)
	}
}

func TestPool_CloseWithoutConnect(t *testing.T) {
	p := NewPool("mongodb://localhost:27017", "staffhub", time.Second)
	assert.NoError(t, p.Close(context.Background()))
}

func TestPool_CancelledCallerDoesNotFailOthers(t *testing.T) {
	// Nothing listens on port 1, so the shared attempt runs until the pool's
	// server selection timeout.
	p := NewPool("mongodb://127.0.0.1:1", "staffhub", 500*time.Millisecond)

	cancelled, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		_, err := p.Client(cancelled)
		done <- err
	}()
	<-started
	cancel()

	_, err := p.Client(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled), "shared attempt used a cancelled caller context: %v", err)

	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPool_ClientHonorsCallerDeadline(t *testing.T) {
	p := NewPool("mongodb://127.0.0.1:1", "staffhub", 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := p.Client(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}
