package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Ingest metrics
	IngestRunsTotal      *prometheus.CounterVec
	IngestDuration       prometheus.Histogram
	NodesUpsertedTotal   *prometheus.CounterVec
	EdgesUpsertedTotal   *prometheus.CounterVec
	BatchItemsSkipped    *prometheus.CounterVec
	WatcherEventsTotal   prometheus.Counter
	WatcherRunsDebounced prometheus.Counter

	// Query metrics
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	// Graph gauges
	GraphNodesTotal prometheus.Gauge
	GraphEdgesTotal prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all application metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "infragraph_http_requests_total",
			Help: "Total HTTP requests by method, path and status",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "infragraph_http_request_duration_seconds",
			Help:    "HTTP request latency by method and path",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),

		IngestRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "infragraph_ingest_runs_total",
			Help: "Ingestion passes by outcome",
		}, []string{"status"}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "infragraph_ingest_duration_seconds",
			Help:    "Duration of full ingestion passes",
			Buckets: prometheus.DefBuckets,
		}),
		NodesUpsertedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "infragraph_nodes_upserted_total",
			Help: "Node upserts by result (created or updated)",
		}, []string{"result"}),
		EdgesUpsertedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "infragraph_edges_upserted_total",
			Help: "Edge upserts by result (created or updated)",
		}, []string{"result"}),
		BatchItemsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "infragraph_batch_items_skipped_total",
			Help: "Batch items skipped during merge, by reason",
		}, []string{"reason"}),
		WatcherEventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "infragraph_watcher_events_total",
			Help: "Filesystem change events observed by the watcher",
		}),
		WatcherRunsDebounced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "infragraph_watcher_runs_debounced_total",
			Help: "Change notifications coalesced into an already-pending ingest",
		}),

		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "infragraph_queries_total",
			Help: "Facade queries by operation and reason code",
		}, []string{"operation", "reason"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "infragraph_query_duration_seconds",
			Help:    "Facade query latency by operation",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"operation"}),

		GraphNodesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "infragraph_graph_nodes",
			Help: "Nodes currently in the graph",
		}),
		GraphEdgesTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "infragraph_graph_edges",
			Help: "Edges currently in the graph",
		}),

		registry: reg,
	}

	reg.MustRegister(
		r.HTTPRequestsTotal,
		r.HTTPRequestDuration,
		r.IngestRunsTotal,
		r.IngestDuration,
		r.NodesUpsertedTotal,
		r.EdgesUpsertedTotal,
		r.BatchItemsSkipped,
		r.WatcherEventsTotal,
		r.WatcherRunsDebounced,
		r.QueriesTotal,
		r.QueryDuration,
		r.GraphNodesTotal,
		r.GraphEdgesTotal,
	)

	return r
}

// Handler returns the HTTP handler serving the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying prometheus registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RecordHTTPRequest records an HTTP request with its duration.
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordQuery records one facade operation.
func (r *Registry) RecordQuery(operation, reason string, duration time.Duration) {
	r.QueriesTotal.WithLabelValues(operation, reason).Inc()
	r.QueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordIngest records a full ingestion pass and refreshes the graph gauges.
func (r *Registry) RecordIngest(status string, duration time.Duration, nodes, edges int) {
	r.IngestRunsTotal.WithLabelValues(status).Inc()
	r.IngestDuration.Observe(duration.Seconds())
	r.GraphNodesTotal.Set(float64(nodes))
	r.GraphEdgesTotal.Set(float64(edges))
}
