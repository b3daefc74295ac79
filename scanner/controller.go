package scanner

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultStopTimeout bounds how long a restart waits for the previous scan to
// unwind.
const DefaultStopTimeout = 30 * time.Second

// Controller owns the scan of one front-end instance. Starting a new scan
// always stops and joins the previous one first, so two sessions never feed
// the shared result set at the same time.
//
// Hooks may read from the Controller; only Start and Close serialize.
type Controller struct {
	opts        SessionOptions
	results     *Aggregator
	stopTimeout time.Duration

	mu      sync.Mutex
	current atomic.Pointer[Session]
}

func NewController(opts SessionOptions) *Controller {
	return &Controller{
		opts:        opts,
		results:     NewAggregator(),
		stopTimeout: DefaultStopTimeout,
	}
}

// Start stops the current session, if any, and starts a fresh one.
func (c *Controller) Start(root string, threshold int64) (*Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.stopLocked(); err != nil {
		return nil, err
	}

	s, err := NewSession(root, threshold, c.opts, c.results)
	if err != nil {
		return nil, err
	}
	if err := s.Start(); err != nil {
		return nil, err
	}

	c.current.Store(s)
	return s, nil
}

// Cancel signals the current session without waiting.
func (c *Controller) Cancel() {
	if s := c.current.Load(); s != nil {
		s.Cancel()
	}
}

// Close stops the current session and waits for it, bounded by ctx.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s := c.current.Load(); s != nil {
		return s.Stop(ctx)
	}
	return nil
}

func (c *Controller) stopLocked() error {
	s := c.current.Load()
	if s == nil {
		return nil
	}

	// a session that is already Completed may still be running its hooks
	if s.IsRunning() {
		log.Debugf("Stopping scan of %s before restart", s.Root())
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.stopTimeout)
	defer cancel()

	return s.Stop(ctx)
}

// Current returns the latest session, or nil before the first Start.
func (c *Controller) Current() *Session {
	return c.current.Load()
}

func (c *Controller) IsRunning() bool {
	s := c.Current()
	return s != nil && s.IsRunning()
}

// Snapshot returns the results of the latest session.
func (c *Controller) Snapshot() ResultSet {
	return c.results.Snapshot()
}

// Updates signals result set changes across sessions.
func (c *Controller) Updates() <-chan struct{} {
	return c.results.Updates()
}
