// Package metrics exposes Prometheus counters and gauges for the
// evaluator's job and signal activity, and an optional debug HTTP server
// to scrape them. This is ambient observability; nothing in the
// evaluator's correctness depends on it.
package metrics

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	jobsLaunchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gosh_jobs_launched_total",
		Help: "Total number of jobs launched by the evaluator.",
	}, []string{"background"})

	jobsOverflowedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gosh_jobs_overflowed_total",
		Help: "Total number of job launches rejected because the job table was full.",
	})

	jobsRunningGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gosh_jobs_running",
		Help: "Number of jobs currently tracked in a non-Done state.",
	})

	signalsHandledTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gosh_signals_handled_total",
		Help: "Total number of signals routed by the signal dispatcher, by signal name.",
	}, []string{"signal"})

	builtinsExecutedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gosh_builtins_executed_total",
		Help: "Total number of builtin commands executed, by name.",
	}, []string{"name"})

	reapsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gosh_reaps_total",
		Help: "Total number of child processes reaped.",
	})
)

// JobsLaunched increments the launch counter for a foreground or background job.
func JobsLaunched(background bool) {
	jobsLaunchedTotal.WithLabelValues(boolLabel(background)).Inc()
}

// JobsOverflowed increments the overflow counter.
func JobsOverflowed() {
	jobsOverflowedTotal.Inc()
}

// JobsRunning sets the running-jobs gauge.
func JobsRunning(n int) {
	jobsRunningGauge.Set(float64(n))
}

// SignalHandled increments the per-signal routing counter.
func SignalHandled(name string) {
	signalsHandledTotal.WithLabelValues(name).Inc()
}

// BuiltinExecuted increments the per-builtin execution counter.
func BuiltinExecuted(name string) {
	builtinsExecutedTotal.WithLabelValues(name).Inc()
}

// Reaped increments the reap counter.
func Reaped() {
	reapsTotal.Inc()
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// StartDebugServer starts an HTTP server on addr routing GET /metrics to
// the Prometheus handler, using gorilla/mux the way Pebble's
// internals/metrics package routes its own registry. It returns
// immediately; the caller is responsible for calling Shutdown on the
// returned server during cleanup.
func StartDebugServer(addr string) (*http.Server, error) {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	go func() {
		_ = srv.Serve(ln)
	}()
	return srv, nil
}

// Shutdown gracefully stops a server started by StartDebugServer.
func Shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}
