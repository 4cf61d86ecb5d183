package core

import (
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder receives operation timing and result counters from the
// service. Implementations must be safe for use from a single run loop.
type MetricsRecorder interface {
	ObserveDuration(op string, d time.Duration)
	IncResult(op, status string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveDuration(string, time.Duration) {}
func (noopMetrics) IncResult(string, string)              {}

var expvarSeq uint64

// ExpvarMetricsRecorder publishes aggregate timing and result counters via
// expvar, for deployments that prefer process-local metrics without external
// dependencies. Totals are kept in milliseconds per operation.
type ExpvarMetricsRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
}

// ExpvarMetricsSnapshot captures a read-only view of the recorded metrics.
type ExpvarMetricsSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarMetricsRecorder constructs an expvar-backed recorder published
// under the supplied name. When name is empty a unique one is generated.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		name = fmt.Sprintf("run_service_metrics_%d", atomic.AddUint64(&expvarSeq, 1))
	}
	rec := &ExpvarMetricsRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any { return rec.Snapshot() }))
	return rec
}

// Name returns the expvar export name associated with the recorder.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// ObserveDuration adds d to the running total for op.
func (r *ExpvarMetricsRecorder) ObserveDuration(op string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations[op] += float64(d.Milliseconds())
}

// IncResult bumps the counter for (op, status).
func (r *ExpvarMetricsRecorder) IncResult(op, status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	statuses, ok := r.results[op]
	if !ok {
		statuses = make(map[string]int64)
		r.results[op] = statuses
	}
	statuses[status]++
}

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	durations := make(map[string]float64, len(r.durations))
	for op, total := range r.durations {
		durations[op] = total
	}
	results := make(map[string]map[string]int64, len(r.results))
	for op, statusCounts := range r.results {
		cpy := make(map[string]int64, len(statusCounts))
		for status, count := range statusCounts {
			cpy[status] = count
		}
		results[op] = cpy
	}
	return ExpvarMetricsSnapshot{DurationsMS: durations, Results: results, RecordedAt: time.Now().UTC()}
}

// PrometheusMetricsRecorder exports operation timings as a histogram and
// results as a counter vector on a Prometheus registerer.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder registers the service collectors on reg and
// returns the recorder. Pass prometheus.DefaultRegisterer for the process
// default registry.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "limscore",
		Name:      "operation_duration_seconds",
		Help:      "Duration of service operations.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "limscore",
		Name:      "operation_results_total",
		Help:      "Service operation outcomes by status.",
	}, []string{"op", "status"})
	for _, c := range []prometheus.Collector{durations, results} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return &PrometheusMetricsRecorder{durations: durations, results: results}, nil
}

// ObserveDuration records d for op.
func (r *PrometheusMetricsRecorder) ObserveDuration(op string, d time.Duration) {
	r.durations.WithLabelValues(op).Observe(d.Seconds())
}

// IncResult bumps the counter for (op, status).
func (r *PrometheusMetricsRecorder) IncResult(op, status string) {
	r.results.WithLabelValues(op, status).Inc()
}
