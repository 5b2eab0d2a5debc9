package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder reports runtime metrics using Prometheus primitives.
type PrometheusRecorder struct {
	nodes     *prometheus.CounterVec
	durations *prometheus.HistogramVec
	fragments *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

func NewPrometheusRecorder(registry *prometheus.Registry) (*PrometheusRecorder, error) {
	if registry == nil {
		return nil, fmt.Errorf("prometheus registry is nil")
	}

	r := &PrometheusRecorder{
		nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fragmentgrid_node_executions_total",
			Help: "Total number of node executions by task, node and log status",
		}, []string{"task", "node", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fragmentgrid_node_duration_seconds",
			Help:    "Node execution latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"task"}),
		fragments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fragmentgrid_fragments_total",
			Help: "Total number of processed fragments by final status",
		}, []string{"status"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fragmentgrid_circuit_fallbacks_total",
			Help: "Total circuit breaker fallbacks by breaker name",
		}, []string{"breaker"}),
	}

	for _, collector := range []prometheus.Collector{r.nodes, r.durations, r.fragments, r.fallbacks} {
		if err := registry.Register(collector); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}
	return r, nil
}

func (r *PrometheusRecorder) ObserveNode(task, node, status string, duration time.Duration) {
	r.nodes.WithLabelValues(task, node, status).Inc()
	r.durations.WithLabelValues(task).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) ObserveFragment(status string) {
	r.fragments.WithLabelValues(status).Inc()
}

func (r *PrometheusRecorder) ObserveFallback(breaker string) {
	r.fallbacks.WithLabelValues(breaker).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
