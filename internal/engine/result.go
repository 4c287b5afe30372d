package engine

import (
	"math"

	"logiroute/internal/graph"
	"logiroute/internal/model"
)

// Rounding happens here and only here. The search works on exact
// weights; distance and cost surface with two decimals, time as whole
// minutes.

func round2(x float64) float64 { return math.Round(x*100) / 100 }

func roundMinutes(x float64) float64 { return math.Round(x) }

func routeNode(v graph.Vertex) model.RouteNode {
	return model.RouteNode{
		ID:          v.ID,
		Name:        v.Name,
		Type:        v.Type,
		Coordinates: model.Coordinates{Lat: v.Lat, Lon: v.Lon},
	}
}

func renderRoute(p graph.Path) model.RouteResult {
	nodes := make([]model.RouteNode, len(p.Vertices))
	for i, v := range p.Vertices {
		nodes[i] = routeNode(v)
	}
	segments := make([]model.RouteSegment, len(p.Segments))
	for i, a := range p.Segments {
		segments[i] = model.RouteSegment{
			From:        nodes[i],
			To:          nodes[i+1],
			DistanceKm:  round2(a.Distance),
			TimeMinutes: roundMinutes(a.Time),
			Cost:        round2(a.Cost),
			Status:      a.Status,
		}
	}
	return model.RouteResult{
		Nodes:    nodes,
		Segments: segments,
		Summary: model.RouteSummary{
			TotalDistanceKm:  round2(p.TotalDistance()),
			TotalTimeMinutes: roundMinutes(p.TotalTime()),
			TotalCost:        round2(p.TotalCost()),
			Stops:            p.Stops(),
			OptimizedBy:      string(p.Metric),
		},
	}
}

func renderReachability(src graph.Vertex, reach []graph.Reach) model.ReachabilityResult {
	dests := make([]model.ReachableDestination, len(reach))
	for i, r := range reach {
		dests[i] = model.ReachableDestination{
			ID:                   r.Vertex.ID,
			Name:                 r.Vertex.Name,
			Type:                 r.Vertex.Type,
			EstimatedTimeMinutes: roundMinutes(r.Time),
		}
	}
	return model.ReachabilityResult{
		Source:       routeNode(src),
		Destinations: dests,
		Count:        len(dests),
	}
}
