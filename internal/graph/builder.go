package graph

import (
	"sort"
	"time"

	"logiroute/internal/model"
)

// slowFactor is the penalty applied to the time weight of a slow edge.
const slowFactor = 1.5

// Build constructs a graph snapshot from the given location and edge
// records. Inactive locations are never materialized as vertices; closed
// edges are never materialized as arcs, and no reverse arc is ever
// inferred. An empty input yields a valid empty graph, never an error.
//
// Weights per arc: time = travel minutes (×1.5 when slow), distance = km,
// cost = cost-per-km × km. The result is a pure function of the inputs:
// rebuilding from the same records yields the same vertex set, arc set,
// and weights, and adjacency lists are sorted so query outputs do not
// depend on input order.
func Build(nodes []model.LocationNode, edges []model.RouteEdge) *Graph {
	g := &Graph{
		vertices: make(map[string]Vertex, len(nodes)),
		adj:      make(map[string][]Arc),
		builtAt:  time.Now().UTC(),
	}
	for _, n := range nodes {
		if !n.Active {
			continue
		}
		g.vertices[n.ID] = Vertex{ID: n.ID, Name: n.Name, Type: n.Type, Lat: n.Lat, Lon: n.Lon}
	}
	for _, e := range edges {
		if e.Status == model.EdgeClosed {
			continue
		}
		// An edge touching a non-vertex (inactive or unknown location)
		// cannot become an arc: inactive nodes never appear in a graph.
		if !g.HasVertex(e.SourceID) || !g.HasVertex(e.DestinationID) {
			continue
		}
		t := float64(e.TravelTimeMinutes)
		if e.Status == model.EdgeSlow {
			t *= slowFactor
		}
		g.adj[e.SourceID] = append(g.adj[e.SourceID], Arc{
			EdgeID:   e.ID,
			From:     e.SourceID,
			To:       e.DestinationID,
			Time:     t,
			Distance: e.DistanceKm,
			Cost:     e.CostPerKm * e.DistanceKm,
			Status:   e.Status,
		})
		g.arcs++
	}
	for u := range g.adj {
		arcs := g.adj[u]
		sort.Slice(arcs, func(i, j int) bool {
			if arcs[i].To != arcs[j].To {
				return arcs[i].To < arcs[j].To
			}
			return arcs[i].EdgeID < arcs[j].EdgeID
		})
	}
	return g
}
