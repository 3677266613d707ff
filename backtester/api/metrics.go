package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/BaptisteZloch/Crypto-momentum-portfolios/backtester/engine"
	"github.com/BaptisteZloch/Crypto-momentum-portfolios/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func newMetrics(reg *prometheus.Registry, manager *engine.TaskManager) *metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		runs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_total",
			Help:      "Strategy runs by final status",
		}, []string{"status"}),
		runDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Strategy run and evaluation time",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
		tasks: f.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "runs_stored",
			Help:      "Runs held in memory",
		}, func() float64 {
			list, err := manager.List()
			if err != nil {
				return 0
			}
			return float64(len(list))
		}),
		logs: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "log_messages_total",
			Help:      "Log lines by sub logger and level",
		}, []string{"sublogger", "level"}),
	}
}

// LogHook counts every log line into the server's metrics. It never bypasses
// the configured log writers.
func (s *Server) LogHook() log.CustomLogHook {
	return func(e log.Entry) bool {
		s.metrics.logs.WithLabelValues(e.SubLogger, e.Level).Inc()
		return false
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs each request and records its metrics under the route name
func (s *Server) instrument(inner http.Handler, name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		inner.ServeHTTP(rec, r)
		elapsed := time.Since(start)
		s.metrics.requests.WithLabelValues(name, r.Method, strconv.Itoa(rec.status)).Inc()
		s.metrics.requestDuration.WithLabelValues(name).Observe(elapsed.Seconds())
		log.Debugf(log.APIServer, "%s\t%s\t%s\t%d\t%s", r.Method, r.RequestURI, name, rec.status, elapsed)
	})
}
