package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmicctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wmicctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	execRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmicctl",
			Subsystem: "exec",
			Name:      "runs_total",
			Help:      "Host tool subprocess runs.",
		},
		[]string{"outcome"},
	)
	execDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wmicctl",
			Subsystem: "exec",
			Name:      "run_duration_seconds",
			Help:      "Host tool subprocess run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	queryOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wmicctl",
			Subsystem: "query",
			Name:      "operations_total",
			Help:      "Process query operations by kind and outcome.",
		},
		[]string{"operation", "outcome"},
	)
	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wmicctl",
			Subsystem: "query",
			Name:      "operation_duration_seconds",
			Help:      "Process query operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, execRuns, execDuration, queryOperations, queryDuration)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordExecution counts one subprocess run.
func RecordExecution(outcome string, duration time.Duration) {
	RegisterMetrics()
	execRuns.WithLabelValues(outcome).Inc()
	execDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordOperation counts one facade operation (get, list, call, terminate, exec).
func RecordOperation(operation, outcome string, duration time.Duration) {
	RegisterMetrics()
	queryOperations.WithLabelValues(operation, outcome).Inc()
	queryDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}
