package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"logiroute/internal/model"
)

func TestReachableFromTriangle(t *testing.T) {
	g := Build(triangle())
	out, err := ReachableFrom(g, "A")
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "B", out[0].Vertex.ID)
	require.Equal(t, 10.0, out[0].Time)
	require.Equal(t, "C", out[1].Vertex.ID)
	require.Equal(t, 30.0, out[1].Time, "C is reached via B; the closed direct edge does not count")
}

func TestReachableFromExcludesSource(t *testing.T) {
	nodes := []model.LocationNode{
		node("A", "A", model.LocationHub, true),
		node("B", "B", model.LocationHub, true),
	}
	// A cycle back to the source must not re-introduce it.
	edges := []model.RouteEdge{
		edge("e1", "A", "B", 1, 1, model.EdgeActive, 1),
		edge("e2", "B", "A", 1, 1, model.EdgeActive, 1),
	}
	g := Build(nodes, edges)
	out, err := ReachableFrom(g, "A")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "B", out[0].Vertex.ID)
}

func TestReachableFromOmitsUnreachable(t *testing.T) {
	g := Build(triangle())
	// Nothing points at A or B from C.
	out, err := ReachableFrom(g, "C")
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestReachableFromUsesSlowPenalty(t *testing.T) {
	nodes := []model.LocationNode{
		node("A", "A", model.LocationHub, true),
		node("B", "B", model.LocationHub, true),
	}
	g := Build(nodes, []model.RouteEdge{edge("e1", "A", "B", 10, 10, model.EdgeSlow, 1)})
	out, err := ReachableFrom(g, "A")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, 15.0, out[0].Time)
}

func TestReachableFromNotFound(t *testing.T) {
	g := Build(triangle())
	_, err := ReachableFrom(g, "Z")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "location", nf.Endpoint)
}

func TestReachableFromStableOrder(t *testing.T) {
	nodes := []model.LocationNode{
		node("A", "A", model.LocationHub, true),
		node("B", "B", model.LocationHub, true),
		node("C", "C", model.LocationHub, true),
		node("D", "D", model.LocationHub, true),
	}
	// B and C share the same travel time; id breaks the tie.
	edges := []model.RouteEdge{
		edge("e1", "A", "C", 5, 5, model.EdgeActive, 1),
		edge("e2", "A", "B", 5, 5, model.EdgeActive, 1),
		edge("e3", "A", "D", 1, 1, model.EdgeActive, 1),
	}
	g := Build(nodes, edges)
	first, err := ReachableFrom(g, "A")
	require.NoError(t, err)
	require.Equal(t, "D", first[0].Vertex.ID)
	require.Equal(t, "B", first[1].Vertex.ID)
	require.Equal(t, "C", first[2].Vertex.ID)
	for i := 0; i < 5; i++ {
		again, err := ReachableFrom(g, "A")
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}
