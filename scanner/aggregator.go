package scanner

import (
	"cmp"
	"slices"
	"strings"
	"sync"
)

// Aggregator keeps emitted results ordered by size. Accept is safe to call
// from many goroutines; readers take copies through Snapshot.
//
// Every Accept is an O(n) insert, which is fine for the hundreds of results a
// sensible threshold produces. Readers are expected to debounce on Updates
// instead of redrawing per result.
type Aggregator struct {
	mu      sync.RWMutex
	results []Result
	updates chan struct{}
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		results: make([]Result, 0, 64),
		updates: make(chan struct{}, 1),
	}
}

func compareResults(a, b Result) int {
	if c := cmp.Compare(b.Size, a.Size); c != 0 {
		return c
	}
	return strings.Compare(a.Path, b.Path)
}

// Accept inserts r at its sorted position. A repeated path is kept as an
// independent record.
func (a *Aggregator) Accept(r Result) {
	a.mu.Lock()
	i, _ := slices.BinarySearchFunc(a.results, r, compareResults)
	a.results = slices.Insert(a.results, i, r)
	a.mu.Unlock()

	a.notify()
}

// Snapshot returns a copy of the current results.
func (a *Aggregator) Snapshot() ResultSet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return slices.Clone(ResultSet(a.results))
}

func (a *Aggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.results)
}

// Reset drops all results.
func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.results = a.results[:0:0]
	a.mu.Unlock()

	a.notify()
}

// Updates receives a value after one or more changes. Signals coalesce, so a
// slow reader sees at most one pending notification.
func (a *Aggregator) Updates() <-chan struct{} {
	return a.updates
}

func (a *Aggregator) notify() {
	select {
	case a.updates <- struct{}{}:
	default:
	}
}
