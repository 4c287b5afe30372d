package metrics

import (
    "sync"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
)

var (
    // Registry is the dedicated Prometheus registry for the API
    Registry = prometheus.NewRegistry()
    // HTTPRequests counts requests by method, path, and status
    HTTPRequests = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
        []string{"method", "path", "status"},
    )
    // HTTPDuration records request durations in seconds
    HTTPDuration = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
        []string{"method", "path", "status"},
    )

    // RouteQueries counts route computations by metric and outcome
    RouteQueries = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "route_queries_total", Help: "Route queries by optimization metric and outcome."},
        []string{"metric", "outcome"},
    )
    // RouteQueryDuration records shortest-path search durations in seconds
    RouteQueryDuration = prometheus.NewHistogram(
        prometheus.HistogramOpts{Name: "route_query_duration_seconds", Help: "Shortest-path search duration in seconds.", Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1}},
    )

    // GraphBuilds counts snapshot rebuilds
    GraphBuilds = prometheus.NewCounter(
        prometheus.CounterOpts{Name: "graph_builds_total", Help: "Total graph snapshot builds."},
    )
    // GraphBuildDuration records snapshot build durations in seconds
    GraphBuildDuration = prometheus.NewHistogram(
        prometheus.HistogramOpts{Name: "graph_build_duration_seconds", Help: "Graph snapshot build duration in seconds.", Buckets: prometheus.DefBuckets},
    )
    // GraphVertices and GraphArcs gauge the current snapshot size
    GraphVertices = prometheus.NewGauge(
        prometheus.GaugeOpts{Name: "graph_vertices", Help: "Vertices in the current graph snapshot."},
    )
    GraphArcs = prometheus.NewGauge(
        prometheus.GaugeOpts{Name: "graph_arcs", Help: "Arcs in the current graph snapshot."},
    )

    // WebhookDeliveries counts webhook delivery outcomes by event type and status
    WebhookDeliveries = prometheus.NewCounterVec(
        prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
        []string{"event_type", "status"},
    )
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
    regOnce.Do(func(){
        Registry.MustRegister(HTTPRequests)
        Registry.MustRegister(HTTPDuration)
        Registry.MustRegister(RouteQueries)
        Registry.MustRegister(RouteQueryDuration)
        Registry.MustRegister(GraphBuilds)
        Registry.MustRegister(GraphBuildDuration)
        Registry.MustRegister(GraphVertices)
        Registry.MustRegister(GraphArcs)
        Registry.MustRegister(WebhookDeliveries)
        // Go/process collectors on our registry
        Registry.MustRegister(collectors.NewGoCollector())
        Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
    })
}

var regOnce sync.Once
