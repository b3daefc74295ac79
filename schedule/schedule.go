// Package schedule runs a job on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorhill/cronexpr"
	log "github.com/sirupsen/logrus"
)

// Parse validates a cron expression. Five, six and seven field forms and the
// @daily style shortcuts are accepted.
func Parse(expr string) (*cronexpr.Expression, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("empty cron expression")
	}
	cron, err := cronexpr.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron expression %q: %w", expr, err)
	}
	return cron, nil
}

// NextAfter returns the next activation strictly after moment, or the zero
// time when the expression never fires again.
func NextAfter(cron *cronexpr.Expression, moment time.Time) time.Time {
	if cron == nil {
		return time.Time{}
	}
	return cron.Next(moment)
}

// Run calls job at every activation of cron until ctx is done. Activations
// that fall due while job is still running are skipped.
func Run(ctx context.Context, cron *cronexpr.Expression, job func()) {
	for {
		next := NextAfter(cron, time.Now())
		if next.IsZero() {
			log.Info("Rescan schedule has no further activations")
			return
		}

		log.Debugf("Next scheduled rescan at %s", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			job()
		}
	}
}
