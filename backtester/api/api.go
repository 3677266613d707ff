// Package api serves strategy runs over HTTP. Runs execute synchronously
// within the request and are kept in memory until deleted.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/benchmark"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/common"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/engine"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/report"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/statistics"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
	"github.com/gofrs/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// New creates a server running strategies on b. Submitted runs start from
// the default settings, benchmark and statistics given here.
func New(b *engine.Backtester, s engine.Settings, benchmarkName string, st statistics.Settings) (*Server, error) {
	if b == nil {
		return nil, fmt.Errorf("%w Backtester", common.ErrNilPointer)
	}
	if benchmarkName == "" {
		benchmarkName = benchmark.EqualWeighted
	}
	srv := &Server{
		backtester: b,
		manager:    engine.NewTaskManager(b),
		defaults:   RunRequest{Settings: s, Benchmark: benchmarkName, Statistics: st},
		registry:   prometheus.NewRegistry(),
	}
	srv.metrics = newMetrics(srv.registry, srv.manager)
	srv.router = srv.newRouter()
	return srv, nil
}

func (s *Server) routes() []Route {
	return []Route{
		{"SubmitRun", http.MethodPost, "/v1/runs", s.submitRun},
		{"ListRuns", http.MethodGet, "/v1/runs", s.listRuns},
		{"ClearRuns", http.MethodDelete, "/v1/runs", s.clearRuns},
		{"GetRun", http.MethodGet, "/v1/runs/{id}", s.getRun},
		{"GetRunReport", http.MethodGet, "/v1/runs/{id}/report", s.getRunReport},
		{"DeleteRun", http.MethodDelete, "/v1/runs/{id}", s.deleteRun},
	}
}

func (s *Server) newRouter() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	for _, route := range s.routes() {
		router.
			Methods(route.Method).
			Path(route.Pattern).
			Name(route.Name).
			Handler(s.instrument(route.HandlerFunc, route.Name))
	}
	router.
		Methods(http.MethodGet).
		Path("/metrics").
		Name("Metrics").
		Handler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	return router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	hs := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}
	errs := make(chan error, 1)
	go func() {
		log.Infof(log.APIServer, "HTTP server listening on %s", addr)
		errs <- hs.ListenAndServe()
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	log.Infoln(log.APIServer, "HTTP server shutting down")
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) submitRun(w http.ResponseWriter, r *http.Request) {
	req := s.defaults
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w: %v", errInvalidBody, err), nil)
		return
	}
	sum, err := s.manager.AddTask(req.Settings, req.Benchmark, req.Statistics)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err, nil)
		return
	}
	start := time.Now()
	sum, err = s.manager.ExecuteTask(r.Context(), sum.ID)
	s.metrics.runDuration.Observe(time.Since(start).Seconds())
	if sum != nil {
		s.metrics.runs.WithLabelValues(sum.Status).Inc()
	}
	if err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, err, sum)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, sum)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	list, err := s.manager.List()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err, nil)
		return
	}
	s.writeJSON(w, r, http.StatusOK, list)
}

func (s *Server) clearRuns(w http.ResponseWriter, r *http.Request) {
	cleared, remaining, err := s.manager.ClearAllTasks()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err, nil)
		return
	}
	s.writeJSON(w, r, http.StatusOK, ClearResponse{Cleared: cleared, Remaining: remaining})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	sum, err := s.manager.GetSummary(id)
	if err != nil {
		s.writeError(w, r, statusOf(err), err, nil)
		return
	}
	s.writeJSON(w, r, http.StatusOK, sum)
}

// getRunReport writes the report of a finished run in the format named by
// the format query value, JSON by default
func (s *Server) getRunReport(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	format := report.JSON
	if q := r.URL.Query().Get("format"); q != "" {
		var err error
		if format, err = report.ParseFormat(q); err != nil {
			s.writeError(w, r, http.StatusBadRequest, err, nil)
			return
		}
	}
	sum, err := s.manager.GetSummary(id)
	if err != nil {
		s.writeError(w, r, statusOf(err), err, nil)
		return
	}
	res, rep, err := s.manager.GetResult(id)
	if err != nil {
		s.writeError(w, r, http.StatusConflict, err, sum)
		return
	}
	set, err := s.backtester.Benchmarks()
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err, sum)
		return
	}
	d, err := report.New(res, set, sum.Benchmark, rep)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, err, sum)
		return
	}
	switch format {
	case report.JSON:
		w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	case report.HTML:
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=UTF-8")
	}
	if err = d.Write(w, format); err != nil {
		log.Errorf(log.APIServer, "%s %s: failed to write report: %v", r.Method, r.URL.Path, err)
	}
}

func (s *Server) deleteRun(w http.ResponseWriter, r *http.Request) {
	id, ok := s.runID(w, r)
	if !ok {
		return
	}
	if err := s.manager.ClearTask(id); err != nil {
		s.writeError(w, r, statusOf(err), err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.FromString(mux.Vars(r)[idParam])
	if err != nil || id.IsNil() {
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("%w '%s'", errInvalidID, mux.Vars(r)[idParam]), nil)
		return uuid.Nil, false
	}
	return id, true
}

func statusOf(err error) int {
	if errors.Is(err, engine.ErrTaskNotFound) {
		return http.StatusNotFound
	}
	return http.StatusConflict
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf(log.APIServer, "%s %s: failed to send JSON response: %v", r.Method, r.URL.Path, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code int, err error, sum *engine.TaskSummary) {
	log.Warnf(log.APIServer, "%s %s: %d %v", r.Method, r.URL.Path, code, err)
	s.writeJSON(w, r, code, ErrorResponse{Error: err.Error(), Run: sum})
}
