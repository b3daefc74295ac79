package scanner

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_BoundsConcurrentWork(t *testing.T) {
	const workers = 3
	p := newPool(workers)

	var (
		wg      sync.WaitGroup
		running atomic.Int64
		peak    atomic.Int64
		ran     atomic.Int64
	)

	task := func() {
		n := running.Add(1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		ran.Add(1)
	}

	for i := 0; i < 60; i++ {
		p.fork(&wg, task)
	}
	wg.Wait()

	assert.EqualValues(t, 60, ran.Load())
	// pooled goroutines plus the caller running overflow inline
	assert.LessOrEqual(t, peak.Load(), int64(workers+1))
}

func TestPool_NestedForksDoNotDeadlock(t *testing.T) {
	p := newPool(1)

	var leaves atomic.Int64
	var recurse func(depth int)
	recurse = func(depth int) {
		if depth == 0 {
			leaves.Add(1)
			return
		}
		var wg sync.WaitGroup
		for i := 0; i < 3; i++ {
			p.fork(&wg, func() { recurse(depth - 1) })
		}
		wg.Wait()
	}

	done := make(chan struct{})
	go func() {
		recurse(5)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		require.FailNow(t, "nested fork-join did not finish")
	}
	assert.EqualValues(t, 243, leaves.Load())
}

func TestGuard_RecoversPanics(t *testing.T) {
	err := guard(func() { panic("kaboom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")

	assert.NoError(t, guard(func() {}))
}

func TestDefaultWorkers_IsClamped(t *testing.T) {
	w := DefaultWorkers()
	assert.GreaterOrEqual(t, w, minWorkers)
	assert.LessOrEqual(t, w, maxWorkers)
}
