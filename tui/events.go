package tui

import (
	"context"
	"time"

	"codeberg.org/tslocum/cview"

	"github.com/riadafridishibly/bigdirs/scanner"
)

func (a *App) trySendUIUpdate(f func()) {
	select {
	case a.uiUpdates <- f:
	default:
	}
}

// setRoot queues a SetRoot operation to avoid data races
func (a *App) setRoot(primitive cview.Primitive, focus bool) {
	a.app.QueueUpdateDraw(func() {
		a.app.SetRoot(primitive, focus)
	})
}

// processResultUpdates redraws the table at most once per refresh interval
// while the result set keeps changing.
func (a *App) processResultUpdates(ctx context.Context) {
	ticker := time.NewTicker(a.opts.RefreshInterval)
	defer ticker.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.ctrl.Updates():
			dirty = true
		case <-ticker.C:
			if !dirty {
				continue
			}
			dirty = false
			results := a.ctrl.Snapshot()
			a.trySendUIUpdate(func() {
				a.items = results
				a.buildTable()
			})
		}
	}
}

// watchSession refreshes the status line once s ends, whichever way.
func (a *App) watchSession(ctx context.Context, s *scanner.Session) {
	select {
	case <-ctx.Done():
	case <-s.Done():
		results := a.ctrl.Snapshot()
		a.trySendUIUpdate(func() {
			a.items = results
			a.buildTable()
			a.updateFinalStatus()
		})
	}
}
