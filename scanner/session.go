package scanner

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// State is the lifecycle position of a Session.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled
}

const (
	DefaultProgressInterval = 250 * time.Millisecond

	// maxKeptErrors bounds the diagnostics a session retains; the total is
	// still counted in the summary.
	maxKeptErrors = 1000
)

// Hooks are the notifications a front-end can subscribe to. They are called
// from scan goroutines and must not block for long; OnResult runs on the
// traversal workers themselves.
type Hooks struct {
	OnResult   func(Result)
	OnProgress func(Progress)
	OnComplete func(Summary)
	OnError    func(error)
}

// SessionOptions configures a Session beyond root and threshold.
type SessionOptions struct {
	Workers          int
	ProgressMode     ProgressMode
	ProgressInterval time.Duration
	Recorder         SessionRecorder
	Hooks            Hooks
}

// SessionRecorder is a Recorder that also observes session lifecycle.
type SessionRecorder interface {
	Recorder
	SessionStarted()
	SessionFinished(state State, summary Summary)
}

// Session is one scan of one root. It moves from Idle to Running on Start
// and ends in Completed or Cancelled; it is never restarted.
type Session struct {
	root      string
	threshold int64
	opts      SessionOptions

	results *Aggregator
	tracker *tracker

	state atomic.Int32

	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	reporter chan struct{}

	mu       sync.Mutex
	summary  Summary
	errs     []error
	started  time.Time
	finished time.Time
}

// NewSession prepares a scan of root. The root itself is resolved if it is a
// symlink; nothing below it is ever followed. results may be shared with
// other sessions as long as they never run at the same time.
func NewSession(root string, threshold int64, opts SessionOptions, results *Aggregator) (*Session, error) {
	if root == "" {
		return nil, ErrEmptyRoot
	}
	if threshold <= 0 {
		return nil, ErrInvalidThreshold
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.ProgressMode == "" {
		opts.ProgressMode = ProgressDiscovered
	}
	if results == nil {
		results = NewAggregator()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		root:      abs,
		threshold: threshold,
		opts:      opts,
		results:   results,
		tracker:   newTracker(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		reporter:  make(chan struct{}),
	}, nil
}

// Start resets the result set and launches the traversal.
func (s *Session) Start() error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrSessionUsed
	}

	s.results.Reset()

	s.mu.Lock()
	s.started = time.Now()
	s.mu.Unlock()

	if s.opts.Recorder != nil {
		s.opts.Recorder.SessionStarted()
	}

	log.Infof("Scanning %s (threshold %d bytes, %s progress)", s.root, s.threshold, s.opts.ProgressMode)

	if s.opts.ProgressMode == ProgressPrescan {
		go func() {
			if err := s.tracker.prescan(s.ctx, s.root, s.workers()); err != nil {
				log.Debugf("Directory pre-count for %s stopped: %v", s.root, err)
			}
		}()
	}

	go s.reportProgress()
	go s.run()

	return nil
}

func (s *Session) run() {
	defer close(s.done)

	opts := Options{
		Threshold: s.threshold,
		Workers:   s.workers(),
		OnError:   s.recordError,
		Recorder:  s.opts.Recorder,
		tracker:   s.tracker,
	}

	summary := Traverse(s.ctx, s.root, opts, s.accept)

	s.tracker.finished.Store(true)

	state := StateCompleted
	if !summary.Complete {
		state = StateCancelled
	}

	s.mu.Lock()
	s.summary = summary
	s.finished = time.Now()
	s.mu.Unlock()

	s.state.Store(int32(state))
	// release the context in every case so the progress reporter and the
	// pre-count stop
	s.cancel()

	if s.opts.Recorder != nil {
		s.opts.Recorder.SessionFinished(state, summary)
	}

	<-s.reporter
	if s.opts.Hooks.OnProgress != nil {
		s.opts.Hooks.OnProgress(s.Progress())
	}

	log.Infof("Scan of %s %s: %d dirs, %d files, %d errors, %d results in %s",
		s.root, state, summary.Dirs, summary.Files, summary.Errors, s.results.Len(),
		summary.Elapsed().Round(time.Millisecond))

	if state == StateCompleted && s.opts.Hooks.OnComplete != nil {
		s.opts.Hooks.OnComplete(summary)
	}
}

// accept forwards a result unless the session has been cancelled.
func (s *Session) accept(r Result) {
	if s.ctx.Err() != nil {
		return
	}
	s.results.Accept(r)
	if s.opts.Hooks.OnResult != nil {
		s.opts.Hooks.OnResult(r)
	}
}

func (s *Session) recordError(err error) {
	log.Debugf("Skipping: %v", err)

	s.mu.Lock()
	if len(s.errs) < maxKeptErrors {
		s.errs = append(s.errs, err)
	}
	s.mu.Unlock()

	if s.opts.Hooks.OnError != nil {
		s.opts.Hooks.OnError(err)
	}
}

func (s *Session) reportProgress() {
	defer close(s.reporter)

	if s.opts.Hooks.OnProgress == nil {
		return
	}

	ticker := time.NewTicker(s.opts.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.opts.Hooks.OnProgress(s.Progress())
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Session) workers() int {
	if s.opts.Workers > 0 {
		return s.opts.Workers
	}
	return DefaultWorkers()
}

// Cancel signals the traversal to stop. It does not wait; use Wait or Stop
// to join. Cancelling an idle session makes it Cancelled immediately.
func (s *Session) Cancel() {
	if s.state.CompareAndSwap(int32(StateIdle), int32(StateCancelled)) {
		s.cancel()
		close(s.done)
		return
	}
	s.cancel()
}

// Wait blocks until the session reaches a terminal state.
func (s *Session) Wait() {
	<-s.done
}

// Stop cancels the session and waits for all workers to unwind, giving up
// when ctx is done.
func (s *Session) Stop(ctx context.Context) error {
	s.Cancel()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for scan of %s to stop: %w", s.root, ctx.Err())
	}
}

// Done is closed once the session is Completed or Cancelled.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) IsRunning() bool {
	return s.State() == StateRunning
}

func (s *Session) Root() string {
	return s.root
}

func (s *Session) Threshold() int64 {
	return s.threshold
}

// Snapshot returns the current ordered results.
func (s *Session) Snapshot() ResultSet {
	return s.results.Snapshot()
}

// Progress returns a best-effort progress estimate.
func (s *Session) Progress() Progress {
	return s.tracker.snapshot(s.results.Len())
}

// Summary returns the traversal summary. Before the session finishes only
// the live counters are filled in.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.finished.IsZero() {
		return s.summary
	}

	return Summary{
		Root:      s.root,
		TotalSize: s.tracker.bytes.Load(),
		Dirs:      s.tracker.visited.Load(),
		Files:     s.tracker.files.Load(),
		Errors:    s.tracker.errors.Load(),
		StartedAt: s.started,
	}
}

// Errors returns the recorded entry failures (at most the first 1000).
func (s *Session) Errors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]error, len(s.errs))
	copy(out, s.errs)
	return out
}

// Elapsed is the time since Start, frozen once the session finishes.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.started.IsZero():
		return 0
	case s.finished.IsZero():
		return time.Since(s.started)
	default:
		return s.finished.Sub(s.started)
	}
}
