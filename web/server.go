// Package web serves a scan controller over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goji/httpauth"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/riadafridishibly/bigdirs/config"
	"github.com/riadafridishibly/bigdirs/metrics"
	"github.com/riadafridishibly/bigdirs/scanner"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	// Root and Threshold are used when a scan request leaves them out.
	Root      string
	Threshold int64
	BasicAuth *config.BasicAuth
	// Metrics defaults to the process wide registry.
	Metrics http.Handler
}

type Server struct {
	ctrl      *scanner.Controller
	opts      Options
	listRoots func() ([]string, error)
}

func New(ctrl *scanner.Controller, opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Handler()
	}
	return &Server{ctrl: ctrl, opts: opts, listRoots: scanner.ListRoots}
}

// Routes returns the HTTP handler that exposes the API and metrics.
func (s *Server) Routes() http.Handler {
	router := mux.NewRouter()
	router.StrictSlash(true)

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.Handle("/metrics", s.opts.Metrics).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/results", s.handleResults).Methods(http.MethodGet)
	api.HandleFunc("/roots", s.handleRoots).Methods(http.MethodGet)
	api.HandleFunc("/scan", s.handleStartScan).Methods(http.MethodPost)
	api.HandleFunc("/scan", s.handleCancelScan).Methods(http.MethodDelete)

	if auth := s.opts.BasicAuth; auth != nil {
		return httpauth.SimpleBasicAuth(auth.Username, auth.Password)(router)
	}
	return router
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Infof("Starting webserver on %s", addr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		} else {
			errCh <- nil
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return <-errCh
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api/status", http.StatusFound)
}
