package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/engine"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/statistics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace  = "cmp"
	maxBodyBytes      = 1 << 20
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
	idParam           = "id"
)

var (
	errInvalidID   = errors.New("invalid run id")
	errInvalidBody = errors.New("invalid request body")
)

// Route is a sub type that holds the request routes
type Route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc http.HandlerFunc
}

// RunRequest is the body of a run submission. Omitted settings keep the
// server defaults.
type RunRequest struct {
	Settings   engine.Settings     `json:"settings"`
	Benchmark  string              `json:"benchmark"`
	Statistics statistics.Settings `json:"statistics"`
}

// ErrorResponse is returned with every non 2xx status
type ErrorResponse struct {
	Error string              `json:"error"`
	Run   *engine.TaskSummary `json:"run,omitempty"`
}

// ClearResponse lists the runs removed and kept by a clear all request
type ClearResponse struct {
	Cleared   []*engine.TaskSummary `json:"cleared"`
	Remaining []*engine.TaskSummary `json:"remaining"`
}

// Server exposes strategy runs over one universe through HTTP
type Server struct {
	backtester *engine.Backtester
	manager    *engine.TaskManager
	defaults   RunRequest
	router     *mux.Router
	registry   *prometheus.Registry
	metrics    *metrics
}

type metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	runs            *prometheus.CounterVec
	runDuration     prometheus.Histogram
	tasks           prometheus.GaugeFunc
	logs            *prometheus.CounterVec
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}
