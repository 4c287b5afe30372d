package graph

import (
	"container/heap"
)

// Path is a raw shortest-path result. All values are exact (unrounded);
// presentation rounding happens when the result payload is formatted.
type Path struct {
	Metric   Metric
	Vertices []Vertex
	Segments []Arc // Segments[i] connects Vertices[i] to Vertices[i+1]
}

// TotalTime returns the exact sum of segment time weights.
func (p Path) TotalTime() float64 { return p.total(MetricTime) }

// TotalDistance returns the exact sum of segment distances.
func (p Path) TotalDistance() float64 { return p.total(MetricDistance) }

// TotalCost returns the exact sum of segment costs.
func (p Path) TotalCost() float64 { return p.total(MetricCost) }

func (p Path) total(m Metric) float64 {
	sum := 0.0
	for _, a := range p.Segments {
		sum += a.Weight(m)
	}
	return sum
}

// Stops is the number of intermediate vertices, excluding source and
// destination. A zero-length (source == destination) path has 0 stops.
func (p Path) Stops() int {
	if n := len(p.Vertices) - 2; n > 0 {
		return n
	}
	return 0
}

// ShortestPath computes the minimal path from sourceID to destinationID
// under the weight selected by metric. Unrecognized metrics fall back to
// time; callers wanting strict validation use ParseMetric first.
//
// Both endpoints must be vertices of g, otherwise a *NotFoundError names
// the failing side. Equal endpoints yield a zero-segment path containing
// only that vertex. Missing connectivity yields ErrNoPath.
//
// Ties between equal-weight paths resolve deterministically: the heap
// orders equal distances by vertex id, relaxation is strictly improving,
// and adjacency lists are sorted at build time, so the first path
// discovered under that stable ordering always wins for a given snapshot.
func ShortestPath(g *Graph, sourceID, destinationID string, metric Metric) (Path, error) {
	m, _ := ParseMetric(string(metric))
	if !g.HasVertex(sourceID) {
		return Path{}, &NotFoundError{Endpoint: "source", ID: sourceID}
	}
	if !g.HasVertex(destinationID) {
		return Path{}, &NotFoundError{Endpoint: "destination", ID: destinationID}
	}
	src, _ := g.Vertex(sourceID)
	if sourceID == destinationID {
		return Path{Metric: m, Vertices: []Vertex{src}}, nil
	}

	dist, prev := search(g, sourceID, m, destinationID)
	if _, ok := dist[destinationID]; !ok {
		return Path{}, ErrNoPath
	}

	// Walk predecessors back from the destination.
	var segs []Arc
	for at := destinationID; at != sourceID; {
		a := prev[at]
		segs = append(segs, a)
		at = a.From
	}
	reverse(segs)

	p := Path{Metric: m, Vertices: make([]Vertex, 0, len(segs)+1), Segments: segs}
	p.Vertices = append(p.Vertices, src)
	for _, a := range segs {
		v, _ := g.Vertex(a.To)
		p.Vertices = append(p.Vertices, v)
	}
	return p, nil
}

// search runs Dijkstra from source over the chosen weight. It returns
// final distances for settled vertices and the arc used to reach each.
// When target is non-empty the search stops once the target is settled.
// All weights are non-negative by construction, so plain relaxation with
// a lazy decrease-key heap is sufficient.
func search(g *Graph, source string, m Metric, target string) (map[string]float64, map[string]Arc) {
	dist := map[string]float64{source: 0}
	prev := map[string]Arc{}
	visited := map[string]bool{}

	pq := &frontier{{id: source, dist: 0}}
	heap.Init(pq)
	for pq.Len() > 0 {
		item := heap.Pop(pq).(frontierItem)
		u := item.id
		if visited[u] {
			continue // stale entry from lazy decrease-key
		}
		visited[u] = true
		if target != "" && u == target {
			break
		}
		for _, a := range g.Arcs(u) {
			if visited[a.To] {
				continue
			}
			nd := item.dist + a.Weight(m)
			if cur, ok := dist[a.To]; ok && nd >= cur {
				continue
			}
			dist[a.To] = nd
			prev[a.To] = a
			heap.Push(pq, frontierItem{id: a.To, dist: nd})
		}
	}
	// Drop tentative distances of unsettled vertices when targeted: the
	// caller only needs settled entries, and for full sweeps every entry
	// in dist ends up settled anyway.
	if target != "" {
		for id := range dist {
			if !visited[id] {
				delete(dist, id)
				delete(prev, id)
			}
		}
	}
	return dist, prev
}

func reverse(arcs []Arc) {
	for i, j := 0, len(arcs)-1; i < j; i, j = i+1, j-1 {
		arcs[i], arcs[j] = arcs[j], arcs[i]
	}
}

// frontierItem is a vertex with its tentative distance from the source.
type frontierItem struct {
	id   string
	dist float64
}

// frontier is a min-heap over (dist, id); the id tiebreak keeps pop order
// deterministic when multiple vertices share a distance.
type frontier []frontierItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].dist != f[j].dist {
		return f[i].dist < f[j].dist
	}
	return f[i].id < f[j].id
}
func (f frontier) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)        { *f = append(*f, x.(frontierItem)) }
func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}
