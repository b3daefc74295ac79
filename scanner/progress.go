package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// ProgressMode selects how the total directory count is estimated.
type ProgressMode string

const (
	// ProgressDiscovered estimates the total from directories seen in
	// listings so far. No extra filesystem work.
	ProgressDiscovered ProgressMode = "discovered"
	// ProgressPrescan additionally counts directories with a concurrent
	// fastwalk pass and uses whichever estimate is larger.
	ProgressPrescan ProgressMode = "prescan"
)

// ParseProgressMode validates a mode string; empty means ProgressDiscovered.
func ParseProgressMode(mode string) (ProgressMode, error) {
	switch ProgressMode(mode) {
	case "", ProgressDiscovered:
		return ProgressDiscovered, nil
	case ProgressPrescan:
		return ProgressPrescan, nil
	default:
		return "", fmt.Errorf("unknown progress mode %q", mode)
	}
}

// tracker holds the counters shared by all traversal goroutines.
type tracker struct {
	visited    atomic.Int64
	discovered atomic.Int64
	prescanned atomic.Int64
	files      atomic.Int64
	bytes      atomic.Int64
	errors     atomic.Int64
	finished   atomic.Bool
}

func newTracker() *tracker {
	t := &tracker{}
	// the root counts as discovered
	t.discovered.Store(1)
	return t
}

func (t *tracker) snapshot(results int) Progress {
	visited := t.visited.Load()
	known := max(t.discovered.Load(), t.prescanned.Load(), visited)

	p := Progress{
		DirsVisited: visited,
		DirsKnown:   known,
		Bytes:       t.bytes.Load(),
		Results:     results,
	}

	switch {
	case t.finished.Load():
		p.Fraction = 1
	case known > 0:
		p.Fraction = float64(visited) / float64(known)
		if p.Fraction > 0.99 {
			p.Fraction = 0.99
		}
	}

	return p
}

// prescan counts directories below root until ctx is done. The walk is
// approximate by nature: the tree may change while the scan runs.
func (t *tracker) prescan(ctx context.Context, root string, workers int) error {
	conf := fastwalk.Config{Follow: false, NumWorkers: workers}

	walkFn := func(_ string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			t.prescanned.Add(1)
		}
		return nil
	}

	return fastwalk.Walk(&conf, root, walkFn)
}
