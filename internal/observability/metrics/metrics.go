// Package metrics exposes Prometheus instrumentation for backend calls and auth flows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	obserrors "github.com/flowstate/flowstate-dashboard/internal/observability/errors"
)

// Result constants for metric labels.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Auth event names.
const (
	EventLogin      = "login"
	EventRegister   = "register"
	EventLogout     = "logout"
	EventInvalidate = "invalidate"
)

// Recorder owns a private Prometheus registry. The zero value is not usable; use New.
// A nil *Recorder is a valid no-op.
type Recorder struct {
	registry        *prometheus.Registry
	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	authEvents      *prometheus.CounterVec
	dashboardViews  *prometheus.CounterVec
}

// New creates a Recorder with Go runtime and process collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowstate",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Requests sent to the FlowState backend.",
		}, []string{"op", "status", "result", "error_class"}),
		backendDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flowstate",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Latency of FlowState backend requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowstate",
			Subsystem: "auth",
			Name:      "events_total",
			Help:      "Auth flow outcomes.",
		}, []string{"event", "result", "error_class"}),
		dashboardViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowstate",
			Subsystem: "dashboard",
			Name:      "views_total",
			Help:      "Dashboard summaries computed.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.backendRequests,
		r.backendDuration,
		r.authEvents,
		r.dashboardViews,
	)
	return r
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// ObserveBackendCall records one backend request. status is 0 when no response arrived.
func (r *Recorder) ObserveBackendCall(op string, status int, elapsed time.Duration, err error) {
	if r == nil {
		return
	}
	result, class := outcome(err)
	r.backendRequests.WithLabelValues(op, strconv.Itoa(status), result, class).Inc()
	r.backendDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// ObserveAuth records an auth flow outcome.
func (r *Recorder) ObserveAuth(event string, err error) {
	if r == nil {
		return
	}
	result, class := outcome(err)
	r.authEvents.WithLabelValues(event, result, class).Inc()
}

// ObserveDashboard records a dashboard summary computation.
func (r *Recorder) ObserveDashboard(err error) {
	if r == nil {
		return
	}
	result, _ := outcome(err)
	r.dashboardViews.WithLabelValues(result).Inc()
}

func outcome(err error) (result, class string) {
	if err == nil {
		return ResultSuccess, ""
	}
	return ResultError, obserrors.Classify(err)
}
