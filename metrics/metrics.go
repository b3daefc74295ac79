// Package metrics exposes scan activity to Prometheus.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "bigdirs"
	subsystem = "scan"
)

var (
	registry = prometheus.NewRegistry()
	handler  = promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})

	defaultRecorder *Recorder
	once            sync.Once
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the process wide registry.
func Handler() http.Handler {
	return handler
}

// HandlerFor serves a custom registry.
func HandlerFor(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// Default returns the Recorder registered on the process wide registry.
func Default() *Recorder {
	once.Do(func() {
		defaultRecorder = NewRecorder(registry)
	})
	return defaultRecorder
}
