// Package graph builds immutable route-network snapshots and answers
// shortest-path and reachability queries over them.
package graph

import (
	"sort"
	"time"
)

// Metric selects which arc weight steers a shortest-path search.
type Metric string

const (
	MetricTime     Metric = "time"
	MetricDistance Metric = "distance"
	MetricCost     Metric = "cost"
)

// ParseMetric normalizes a metric name. ok is false for unrecognized
// values; callers decide whether to reject or fall back to MetricTime.
func ParseMetric(s string) (Metric, bool) {
	switch Metric(s) {
	case MetricTime, MetricDistance, MetricCost:
		return Metric(s), true
	case "":
		return MetricTime, true
	}
	return MetricTime, false
}

// Vertex is an active location with cached display metadata.
type Vertex struct {
	ID   string
	Name string
	Type string
	Lat  float64
	Lon  float64
}

// Arc is a directed connection carrying all three weights plus the
// originating edge's id and status. Weights are fixed at build time.
type Arc struct {
	EdgeID   string
	From     string
	To       string
	Time     float64
	Distance float64
	Cost     float64
	Status   string
}

// Weight returns the arc attribute selected by m.
func (a Arc) Weight(m Metric) float64 {
	switch m {
	case MetricDistance:
		return a.Distance
	case MetricCost:
		return a.Cost
	}
	return a.Time
}

// Graph is an immutable snapshot of the route network. It is safe for
// concurrent readers; queries allocate their own working state and never
// mutate the graph. Replace the whole snapshot to change it.
type Graph struct {
	vertices map[string]Vertex
	adj      map[string][]Arc // keyed by source vertex, sorted by (To, EdgeID)
	arcs     int
	builtAt  time.Time
}

// HasVertex reports whether id is a vertex of the graph.
func (g *Graph) HasVertex(id string) bool {
	_, ok := g.vertices[id]
	return ok
}

// Vertex returns the vertex for id with its display metadata.
func (g *Graph) Vertex(id string) (Vertex, bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// Arcs returns the outgoing arcs of u in a stable order. The returned
// slice is shared; callers must not modify it.
func (g *Graph) Arcs(u string) []Arc {
	return g.adj[u]
}

// VertexIDs returns all vertex ids in ascending order.
func (g *Graph) VertexIDs() []string {
	out := make([]string, 0, len(g.vertices))
	for id := range g.vertices {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.vertices) }

// ArcCount returns the number of directed arcs.
func (g *Graph) ArcCount() int { return g.arcs }

// BuiltAt returns the snapshot construction time.
func (g *Graph) BuiltAt() time.Time { return g.builtAt }
