package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/riadafridishibly/bigdirs/scanner"
)

// Recorder implements scanner.SessionRecorder.
type Recorder struct {
	dirsVisited   prometheus.Counter
	entryErrors   *prometheus.CounterVec
	resultsTotal  prometheus.Counter
	sessions      *prometheus.CounterVec
	running       prometheus.Gauge
	lastBytes     prometheus.Gauge
	lastDuration  prometheus.Gauge
	lastTimestamp prometheus.Gauge
}

var _ scanner.SessionRecorder = (*Recorder)(nil)

func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		dirsVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "directories_visited_total",
			Help:      "Directories listed by all scans",
		}),
		entryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "entry_errors_total",
			Help:      "Entries skipped because they could not be read",
		}, []string{"class"}),
		resultsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "results_total",
			Help:      "Directories reported at or above the threshold",
		}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sessions_total",
			Help:      "Finished scan sessions by final state",
		}, []string{"state"}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "running",
			Help:      "Scan sessions currently running",
		}),
		lastBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_total_bytes",
			Help:      "Total size of the root measured by the last completed scan",
		}),
		lastDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_duration_seconds",
			Help:      "Wall time of the last completed scan",
		}),
		lastTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_completed_timestamp_seconds",
			Help:      "Unix time the last completed scan finished",
		}),
	}

	// pre-create the label values so they export as zero
	for _, class := range []error{scanner.ErrPermissionDenied, scanner.ErrPathVanished, scanner.ErrUnreadable} {
		r.entryErrors.WithLabelValues(scanner.ClassName(class))
	}
	for _, state := range []scanner.State{scanner.StateCompleted, scanner.StateCancelled} {
		r.sessions.WithLabelValues(state.String())
	}

	reg.MustRegister(
		r.dirsVisited,
		r.entryErrors,
		r.resultsTotal,
		r.sessions,
		r.running,
		r.lastBytes,
		r.lastDuration,
		r.lastTimestamp,
	)

	return r
}

func (r *Recorder) DirVisited() {
	r.dirsVisited.Inc()
}

func (r *Recorder) EntryFailed(err error) {
	r.entryErrors.WithLabelValues(scanner.ClassName(err)).Inc()
}

func (r *Recorder) ResultEmitted(scanner.Result) {
	r.resultsTotal.Inc()
}

func (r *Recorder) SessionStarted() {
	r.running.Inc()
}

func (r *Recorder) SessionFinished(state scanner.State, summary scanner.Summary) {
	r.running.Dec()
	r.sessions.WithLabelValues(state.String()).Inc()

	if state != scanner.StateCompleted {
		return
	}
	r.lastBytes.Set(float64(summary.TotalSize))
	r.lastDuration.Set(summary.Elapsed().Seconds())
	r.lastTimestamp.Set(float64(summary.FinishedAt.Unix()))
}
