package worker

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolBoundsConcurrency(t *testing.T) {
	const size = 3
	pool := NewPool(size)

	var active, peak int64
	var mu sync.Mutex

	release := make(chan struct{})
	for i := 0; i < 10; i++ {
		submitted := pool.TrySubmit(func() {
			current := atomic.AddInt64(&active, 1)
			mu.Lock()
			if current > peak {
				peak = current
			}
			mu.Unlock()

			<-release
			atomic.AddInt64(&active, -1)
		})

		if i < size {
			assert.True(t, submitted)
		}
	}

	assert.Equal(t, 0, pool.Capacity())
	assert.False(t, pool.TrySubmit(func() {}))

	close(release)
	pool.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.LessOrEqual(t, peak, int64(size))
	assert.Equal(t, size, pool.Capacity())
}

func TestPoolSlotFreesAfterExecution(t *testing.T) {
	pool := NewPool(1)
	release := make(chan struct{})

	require.True(t, pool.TrySubmit(func() { <-release }))
	require.False(t, pool.TrySubmit(func() {}))

	close(release)
	pool.Wait()

	require.True(t, pool.TrySubmit(func() {}))
	pool.Wait()
}

func TestPoolMinimumSize(t *testing.T) {
	pool := NewPool(0)
	assert.Equal(t, 1, pool.Capacity())
}
