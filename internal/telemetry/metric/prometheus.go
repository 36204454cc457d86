package metric

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "petyard"

// Registry holds all application metrics on a private Prometheus registry.
type Registry struct {
	registry *prometheus.Registry

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimited     prometheus.Counter

	// Auth metrics
	TokenValidateCalls *prometheus.CounterVec
	AuthFailures       *prometheus.CounterVec

	// Storage metrics
	GateWait          prometheus.Histogram
	SnapshotWrites    *prometheus.CounterVec
	SnapshotWriteTime prometheus.Histogram
	SnapshotBytes     prometheus.Gauge

	// Care metrics
	PetsSwept prometheus.Counter
}

// NewRegistry creates a registry with all PetYard metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),

		TokenValidateCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_validate_calls_total",
			Help:      "Session token validations by result",
		}, []string{"result"}),

		AuthFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Authentication failures by reason",
		}, []string{"reason"}),

		GateWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gate_wait_seconds",
			Help:      "Time spent waiting to acquire the store gate",
			Buckets:   []float64{.00001, .0001, .001, .01, .1, 1},
		}),

		SnapshotWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_writes_total",
			Help:      "Snapshot writes by result",
		}, []string{"result"}),

		SnapshotWriteTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_write_duration_seconds",
			Help:      "Time to encode and store a snapshot",
			Buckets:   prometheus.DefBuckets,
		}),

		SnapshotBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes",
			Help:      "Size of the last written snapshot",
		}),

		PetsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pets_swept_total",
			Help:      "Pets removed by the neglect sweep",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestsTotal,
		r.RequestDuration,
		r.RateLimited,
		r.TokenValidateCalls,
		r.AuthFailures,
		r.GateWait,
		r.SnapshotWrites,
		r.SnapshotWriteTime,
		r.SnapshotBytes,
		r.PetsSwept,
	)

	return r
}

// Handler returns an HTTP handler serving this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registerer exposes the underlying registry for component metrics
// (for example the Badger engine).
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// RecordRequest counts one finished HTTP request.
func (r *Registry) RecordRequest(method, route string, status int) {
	r.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// ObserveRequestDuration records request latency in seconds.
func (r *Registry) ObserveRequestDuration(method, route string, seconds float64) {
	r.RequestDuration.WithLabelValues(method, route).Observe(seconds)
}

// IncRateLimited counts a request rejected by the rate limiter.
func (r *Registry) IncRateLimited() {
	r.RateLimited.Inc()
}

// RecordTokenValidation counts a token check ("valid" or "invalid").
func (r *Registry) RecordTokenValidation(result string) {
	r.TokenValidateCalls.WithLabelValues(result).Inc()
}

// RecordAuthFailure counts a failed login or token check.
func (r *Registry) RecordAuthFailure(reason string) {
	r.AuthFailures.WithLabelValues(reason).Inc()
}

// ObserveGateWait records how long a caller waited for the gate.
func (r *Registry) ObserveGateWait(seconds float64) {
	r.GateWait.Observe(seconds)
}

// RecordSnapshotWrite records a snapshot write attempt. size is ignored
// for failed writes.
func (r *Registry) RecordSnapshotWrite(ok bool, size int64, seconds float64) {
	if !ok {
		r.SnapshotWrites.WithLabelValues("error").Inc()
		return
	}
	r.SnapshotWrites.WithLabelValues("ok").Inc()
	r.SnapshotWriteTime.Observe(seconds)
	r.SnapshotBytes.Set(float64(size))
}

// AddPetsSwept counts pets removed by a sweep.
func (r *Registry) AddPetsSwept(n int) {
	r.PetsSwept.Add(float64(n))
}
