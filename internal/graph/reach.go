package graph

import (
	"sort"
)

// Reach pairs a reachable vertex with its best travel time in minutes.
type Reach struct {
	Vertex Vertex
	Time   float64
}

// ReachableFrom runs a single-source shortest-distance sweep over the
// time weight and returns every vertex reachable from sourceID, excluding
// the source itself. Unreachable vertices are simply absent. Entries are
// sorted by (time, id) so repeated sweeps over one snapshot produce
// identical output.
func ReachableFrom(g *Graph, sourceID string) ([]Reach, error) {
	if !g.HasVertex(sourceID) {
		return nil, &NotFoundError{Endpoint: "location", ID: sourceID}
	}
	dist, _ := search(g, sourceID, MetricTime, "")
	out := make([]Reach, 0, len(dist))
	for id, d := range dist {
		if id == sourceID {
			continue
		}
		v, _ := g.Vertex(id)
		out = append(out, Reach{Vertex: v, Time: d})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Vertex.ID < out[j].Vertex.ID
	})
	return out, nil
}
