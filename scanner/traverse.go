package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Options configures a traversal.
type Options struct {
	// Threshold is the minimum aggregate size, in bytes, for a directory to be
	// emitted. Must be greater than zero.
	Threshold int64
	// Workers bounds concurrent subtree computations (0 = DefaultWorkers).
	Workers int
	// OnError receives every entry-scoped failure. Called concurrently.
	OnError func(error)
	// Recorder receives metrics events; may be nil.
	Recorder Recorder

	tracker *tracker
}

// Recorder observes traversal events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	DirVisited()
	EntryFailed(err error)
	ResultEmitted(r Result)
}

// readDir is replaced in tests to simulate entries changing mid-scan.
var readDir = os.ReadDir

type nopRecorder struct{}

func (nopRecorder) DirVisited()          {}
func (nopRecorder) EntryFailed(error)    {}
func (nopRecorder) ResultEmitted(Result) {}

type walker struct {
	threshold int64
	pool      *pool
	emit      func(Result)
	onError   func(error)
	recorder  Recorder
	tracker   *tracker
}

// Traverse computes the aggregate size of every directory under root,
// children first, and calls emit for each directory whose complete subtree
// size is at least opts.Threshold. emit is called concurrently.
//
// Cancellation is checked on entry to every directory. Directories whose
// subtree was not fully visited are never emitted.
func Traverse(ctx context.Context, root string, opts Options, emit func(Result)) Summary {
	w := &walker{
		threshold: opts.Threshold,
		pool:      newPool(opts.Workers),
		emit:      emit,
		onError:   opts.OnError,
		recorder:  opts.Recorder,
		tracker:   opts.tracker,
	}
	if w.recorder == nil {
		w.recorder = nopRecorder{}
	}
	if w.tracker == nil {
		w.tracker = newTracker()
	}
	if w.emit == nil {
		w.emit = func(Result) {}
	}

	summary := Summary{Root: root, StartedAt: time.Now()}

	var (
		size     int64
		complete = true
	)

	switch e := Probe(root); e.Kind {
	case KindDir:
		size, complete = w.subtree(ctx, root)
	case KindFile:
		w.tracker.files.Add(1)
		w.tracker.bytes.Add(e.Size)
		size = e.Size
	case KindInaccessible:
		w.fail(e.Err)
	}

	summary.TotalSize = size
	summary.Complete = complete && ctx.Err() == nil
	summary.Dirs = w.tracker.visited.Load()
	summary.Files = w.tracker.files.Load()
	summary.Errors = w.tracker.errors.Load()
	summary.FinishedAt = time.Now()

	return summary
}

// visit returns the aggregate size of dir and whether its whole subtree was
// visited without cancellation.
func (w *walker) visit(ctx context.Context, dir string) (int64, bool) {
	if ctx.Err() != nil {
		return 0, false
	}

	w.tracker.visited.Add(1)
	w.recorder.DirVisited()

	entries, err := readDir(dir)
	if err != nil {
		w.fail(newEntryError("readdir", dir, err))
		return 0, true
	}

	var (
		wg       sync.WaitGroup
		files    int64
		subtrees atomic.Int64
		partial  atomic.Bool
	)
	// children are joined even when a hook panics below
	defer wg.Wait()

	for _, d := range entries {
		child := filepath.Join(dir, d.Name())
		e := probeDirEntry(child, d)

		switch e.Kind {
		case KindFile:
			files += e.Size
			w.tracker.files.Add(1)
			w.tracker.bytes.Add(e.Size)
		case KindDir:
			w.tracker.discovered.Add(1)
			w.pool.fork(&wg, func() {
				size, ok := w.subtree(ctx, child)
				subtrees.Add(size)
				if !ok {
					partial.Store(true)
				}
			})
		case KindInaccessible:
			w.fail(e.Err)
		}
		// symlinks and special files contribute nothing
	}

	wg.Wait()

	total := files + subtrees.Load()
	if partial.Load() || ctx.Err() != nil {
		return total, false
	}

	if total >= w.threshold {
		r := Result{Path: dir, Size: total}
		w.recorder.ResultEmitted(r)
		w.emit(r)
	}

	return total, true
}

// subtree visits dir, turning a panic into an unreadable entry that
// contributes nothing.
func (w *walker) subtree(ctx context.Context, dir string) (size int64, ok bool) {
	ok = true
	if err := guard(func() { size, ok = w.visit(ctx, dir) }); err != nil {
		w.fail(&EntryError{Path: dir, Op: "walk", Class: ErrUnreadable, Err: err})
		return 0, true
	}
	return size, ok
}

func (w *walker) fail(err error) {
	w.tracker.errors.Add(1)
	w.recorder.EntryFailed(err)
	if w.onError != nil {
		w.onError(err)
	}
}
