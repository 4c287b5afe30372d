package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"logiroute/internal/model"
)

func node(id, name, typ string, active bool) model.LocationNode {
	return model.LocationNode{ID: id, Name: name, Type: typ, Lat: 40.0, Lon: -74.0, Active: active}
}

func edge(id, src, dst string, km float64, minutes int, status string, costPerKm float64) model.RouteEdge {
	return model.RouteEdge{ID: id, SourceID: src, DestinationID: dst, DistanceKm: km, TravelTimeMinutes: minutes, Status: status, CostPerKm: costPerKm}
}

// triangle is the reference network: A→B (10km/10min active, 2.0/km),
// B→C (20km/20min active, 1.0/km), A→C (5km/5min closed, 1.0/km).
func triangle() ([]model.LocationNode, []model.RouteEdge) {
	nodes := []model.LocationNode{
		node("A", "Central Warehouse", model.LocationWarehouse, true),
		node("B", "North Hub", model.LocationHub, true),
		node("C", "Customer Site", model.LocationCustomer, true),
	}
	edges := []model.RouteEdge{
		edge("e1", "A", "B", 10, 10, model.EdgeActive, 2.0),
		edge("e2", "B", "C", 20, 20, model.EdgeActive, 1.0),
		edge("e3", "A", "C", 5, 5, model.EdgeClosed, 1.0),
	}
	return nodes, edges
}

func TestBuildSkipsInactiveNodes(t *testing.T) {
	nodes := []model.LocationNode{
		node("A", "A", model.LocationHub, true),
		node("B", "B", model.LocationHub, false),
	}
	g := Build(nodes, nil)
	require.True(t, g.HasVertex("A"))
	require.False(t, g.HasVertex("B"))
	require.Equal(t, 1, g.VertexCount())
}

func TestBuildSkipsClosedEdges(t *testing.T) {
	nodes, edges := triangle()
	g := Build(nodes, edges)
	require.Equal(t, 3, g.VertexCount())
	require.Equal(t, 2, g.ArcCount())
	for _, u := range g.VertexIDs() {
		for _, a := range g.Arcs(u) {
			require.NotEqual(t, model.EdgeClosed, a.Status, "closed edge %s materialized as arc", a.EdgeID)
		}
	}
	// The closed A→C edge must not exist in either direction.
	for _, a := range g.Arcs("A") {
		require.NotEqual(t, "C", a.To)
	}
	require.Empty(t, g.Arcs("C"))
}

func TestBuildSkipsEdgesTouchingInactiveNodes(t *testing.T) {
	nodes := []model.LocationNode{
		node("A", "A", model.LocationHub, true),
		node("B", "B", model.LocationHub, false),
	}
	edges := []model.RouteEdge{
		edge("e1", "A", "B", 1, 1, model.EdgeActive, 1),
		edge("e2", "B", "A", 1, 1, model.EdgeActive, 1),
		edge("e3", "A", "ghost", 1, 1, model.EdgeActive, 1),
	}
	g := Build(nodes, edges)
	require.Zero(t, g.ArcCount())
}

func TestBuildWeights(t *testing.T) {
	nodes := []model.LocationNode{
		node("A", "A", model.LocationHub, true),
		node("B", "B", model.LocationHub, true),
		node("C", "C", model.LocationHub, true),
	}
	edges := []model.RouteEdge{
		edge("e1", "A", "B", 12.5, 30, model.EdgeActive, 2.0),
		edge("e2", "A", "C", 8, 40, model.EdgeSlow, 1.5),
	}
	g := Build(nodes, edges)
	arcs := g.Arcs("A")
	require.Len(t, arcs, 2)

	// Arcs come back sorted by destination id.
	ab, ac := arcs[0], arcs[1]
	require.Equal(t, "B", ab.To)
	require.Equal(t, "C", ac.To)

	require.Equal(t, 30.0, ab.Time, "active edge keeps nominal time")
	require.Equal(t, 12.5, ab.Distance)
	require.Equal(t, 25.0, ab.Cost)

	require.Equal(t, 60.0, ac.Time, "slow edge time is exactly 1.5x nominal")
	require.Equal(t, 8.0, ac.Distance)
	require.Equal(t, 12.0, ac.Cost)
}

func TestBuildDeterministic(t *testing.T) {
	nodes, edges := triangle()
	g1 := Build(nodes, edges)

	// Reversed input order must yield an isomorphic graph.
	rn := make([]model.LocationNode, len(nodes))
	re := make([]model.RouteEdge, len(edges))
	for i := range nodes {
		rn[len(nodes)-1-i] = nodes[i]
	}
	for i := range edges {
		re[len(edges)-1-i] = edges[i]
	}
	g2 := Build(rn, re)

	require.Equal(t, g1.VertexIDs(), g2.VertexIDs())
	require.Equal(t, g1.ArcCount(), g2.ArcCount())
	for _, u := range g1.VertexIDs() {
		require.Equal(t, g1.Arcs(u), g2.Arcs(u), "adjacency of %s differs", u)
	}
}

func TestBuildEmptyInputs(t *testing.T) {
	g := Build(nil, nil)
	require.NotNil(t, g)
	require.Zero(t, g.VertexCount())
	require.Zero(t, g.ArcCount())
}
