package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/riadafridishibly/bigdirs/config"
	"github.com/riadafridishibly/bigdirs/scanner"
)

type status struct {
	State     string            `json:"state"`
	Root      string            `json:"root,omitempty"`
	Threshold int64             `json:"threshold,omitempty"`
	Elapsed   string            `json:"elapsed,omitempty"`
	Progress  *scanner.Progress `json:"progress,omitempty"`
	Summary   *scanner.Summary  `json:"summary,omitempty"`
}

type scanRequest struct {
	Root string `json:"root"`
	// Threshold accepts the same strings as the configuration, e.g. "500MiB".
	Threshold string `json:"threshold"`
}

func currentStatus(s *scanner.Session) status {
	if s == nil {
		return status{State: scanner.StateIdle.String()}
	}

	progress := s.Progress()
	summary := s.Summary()
	return status{
		State:     s.State().String(),
		Root:      s.Root(),
		Threshold: s.Threshold(),
		Elapsed:   s.Elapsed().String(),
		Progress:  &progress,
		Summary:   &summary,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, currentStatus(s.ctrl.Current()))
}

func (s *Server) handleResults(w http.ResponseWriter, _ *http.Request) {
	results := s.ctrl.Snapshot()
	if results == nil {
		results = scanner.ResultSet{}
	}
	writeData(w, http.StatusOK, results)
}

func (s *Server) handleRoots(w http.ResponseWriter, _ *http.Request) {
	roots, err := s.listRoots()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeData(w, http.StatusOK, roots)
}

func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
			return
		}
	}

	root := req.Root
	if root == "" {
		root = s.opts.Root
	}
	threshold := s.opts.Threshold
	if req.Threshold != "" {
		b, err := config.ParseBytes(req.Threshold)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		threshold = int64(b)
	}

	session, err := s.ctrl.Start(root, threshold)
	switch {
	case errors.Is(err, scanner.ErrEmptyRoot), errors.Is(err, scanner.ErrInvalidThreshold):
		writeError(w, http.StatusBadRequest, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	log.Infof("Scan of %s requested by %s", session.Root(), r.RemoteAddr)
	writeData(w, http.StatusAccepted, currentStatus(session))
}

func (s *Server) handleCancelScan(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.Cancel()
	writeData(w, http.StatusAccepted, currentStatus(s.ctrl.Current()))
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeData(w, code, map[string]string{"error": err.Error()})
}

func writeData(w http.ResponseWriter, code int, data any) {
	b, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
