package scanner

import (
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/semaphore"
)

const (
	minWorkers = 8
	maxWorkers = 16
)

// DefaultWorkers returns twice the CPU count clamped to [8, 16].
func DefaultWorkers() int {
	workers := runtime.NumCPU() * 2
	if workers < minWorkers {
		workers = minWorkers
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	return workers
}

// pool bounds how many directory subtrees are computed on extra goroutines.
// When every slot is taken the caller computes the subtree itself, so a
// parent waiting on its children never blocks on slot availability.
type pool struct {
	sem     *semaphore.Weighted
	workers int
}

func newPool(workers int) *pool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	return &pool{sem: semaphore.NewWeighted(int64(workers)), workers: workers}
}

// fork runs fn on a pooled goroutine if a slot is free, inline otherwise.
// The caller joins through wg.
func (p *pool) fork(wg *sync.WaitGroup, fn func()) {
	if !p.sem.TryAcquire(1) {
		fn()
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer p.sem.Release(1)
		fn()
	}()
}

// guard runs fn and converts a panic into an error.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()
	fn()
	return nil
}
