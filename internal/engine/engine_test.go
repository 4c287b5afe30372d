package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"logiroute/internal/graph"
	"logiroute/internal/model"
)

// stubFeed serves a fixed network and counts reads.
type stubFeed struct {
	mu    sync.Mutex
	nodes []model.LocationNode
	edges []model.RouteEdge
	reads int
}

func (f *stubFeed) ActiveLocations(ctx context.Context) ([]model.LocationNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return append([]model.LocationNode(nil), f.nodes...), nil
}

func (f *stubFeed) AllEdges(ctx context.Context) ([]model.RouteEdge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.RouteEdge(nil), f.edges...), nil
}

func (f *stubFeed) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func triangleFeed() *stubFeed {
	return &stubFeed{
		nodes: []model.LocationNode{
			{ID: "A", Name: "Warehouse A", Type: model.LocationWarehouse, Lat: 40.7, Lon: -74.0, Active: true},
			{ID: "B", Name: "Hub B", Type: model.LocationHub, Lat: 41.0, Lon: -73.5, Active: true},
			{ID: "C", Name: "Customer C", Type: model.LocationCustomer, Lat: 41.2, Lon: -73.1, Active: true},
		},
		edges: []model.RouteEdge{
			{ID: "e1", SourceID: "A", DestinationID: "B", DistanceKm: 10, TravelTimeMinutes: 10, Status: model.EdgeActive, CostPerKm: 2.0},
			{ID: "e2", SourceID: "B", DestinationID: "C", DistanceKm: 20, TravelTimeMinutes: 20, Status: model.EdgeActive, CostPerKm: 1.0},
			{ID: "e3", SourceID: "A", DestinationID: "C", DistanceKm: 5, TravelTimeMinutes: 5, Status: model.EdgeClosed, CostPerKm: 1.0},
		},
	}
}

// countingCache wraps a RouteCache and tallies hits and writes.
type countingCache struct {
	inner RouteCache
	hits  atomic.Int64
	sets  atomic.Int64
}

func (c *countingCache) Get(ctx context.Context, key string) (model.RouteResult, bool) {
	res, ok := c.inner.Get(ctx, key)
	if ok {
		c.hits.Add(1)
	}
	return res, ok
}

func (c *countingCache) Set(ctx context.Context, key string, res model.RouteResult, ttl time.Duration) {
	c.sets.Add(1)
	c.inner.Set(ctx, key, res, ttl)
}

func TestBuildGraphReusesSnapshotUnlessForced(t *testing.T) {
	feed := triangleFeed()
	eng := New(feed, nil, time.Minute)
	ctx := context.Background()

	g1, err := eng.BuildGraph(ctx, false)
	require.NoError(t, err)
	g2, err := eng.BuildGraph(ctx, false)
	require.NoError(t, err)
	require.Same(t, g1, g2)
	require.Equal(t, 1, feed.readCount())

	g3, err := eng.BuildGraph(ctx, true)
	require.NoError(t, err)
	require.NotSame(t, g1, g3)
	require.Equal(t, 2, feed.readCount())
}

func TestRouteTriangle(t *testing.T) {
	eng := New(triangleFeed(), nil, time.Minute)
	res, err := eng.Route(context.Background(), "A", "C", graph.MetricTime)
	require.NoError(t, err)

	require.Len(t, res.Nodes, 3)
	require.Equal(t, "A", res.Nodes[0].ID)
	require.Equal(t, "B", res.Nodes[1].ID)
	require.Equal(t, "C", res.Nodes[2].ID)
	require.Equal(t, model.Coordinates{Lat: 40.7, Lon: -74.0}, res.Nodes[0].Coordinates)

	require.Len(t, res.Segments, 2)
	require.Equal(t, "A", res.Segments[0].From.ID)
	require.Equal(t, "B", res.Segments[0].To.ID)
	require.Equal(t, 10.0, res.Segments[0].DistanceKm)
	require.Equal(t, 10.0, res.Segments[0].TimeMinutes)
	require.Equal(t, 20.0, res.Segments[0].Cost)
	require.Equal(t, model.EdgeActive, res.Segments[0].Status)

	require.Equal(t, 30.0, res.Summary.TotalDistanceKm)
	require.Equal(t, 30.0, res.Summary.TotalTimeMinutes)
	require.Equal(t, 40.0, res.Summary.TotalCost)
	require.Equal(t, 1, res.Summary.Stops)
	require.Equal(t, "time", res.Summary.OptimizedBy)
}

func TestRouteRoundsAtPresentation(t *testing.T) {
	feed := &stubFeed{
		nodes: []model.LocationNode{
			{ID: "A", Name: "A", Type: model.LocationWarehouse, Active: true},
			{ID: "B", Name: "B", Type: model.LocationHub, Active: true},
		},
		edges: []model.RouteEdge{
			// slow: 7 min * 1.5 = 10.5 -> 11; cost 3.333 * 10.456 = 34.85...
			{ID: "e1", SourceID: "A", DestinationID: "B", DistanceKm: 10.456, TravelTimeMinutes: 7, Status: model.EdgeSlow, CostPerKm: 3.333},
		},
	}
	eng := New(feed, nil, time.Minute)
	res, err := eng.Route(context.Background(), "A", "B", graph.MetricTime)
	require.NoError(t, err)
	require.Equal(t, 10.46, res.Segments[0].DistanceKm)
	require.Equal(t, 11.0, res.Segments[0].TimeMinutes)
	require.Equal(t, 34.85, res.Segments[0].Cost)
	require.Equal(t, 10.46, res.Summary.TotalDistanceKm)
	require.Equal(t, 11.0, res.Summary.TotalTimeMinutes)
	require.Equal(t, 34.85, res.Summary.TotalCost)
	require.Equal(t, 0, res.Summary.Stops)
}

func TestRouteServedFromCache(t *testing.T) {
	cc := &countingCache{inner: NewMemoryCache()}
	eng := New(triangleFeed(), cc, time.Minute)
	ctx := context.Background()

	first, err := eng.Route(ctx, "A", "C", graph.MetricCost)
	require.NoError(t, err)
	require.EqualValues(t, 1, cc.sets.Load())
	require.EqualValues(t, 0, cc.hits.Load())

	second, err := eng.Route(ctx, "A", "C", graph.MetricCost)
	require.NoError(t, err)
	require.EqualValues(t, 1, cc.hits.Load())
	require.Equal(t, first, second)

	// A different metric is a different cache entry.
	_, err = eng.Route(ctx, "A", "C", graph.MetricDistance)
	require.NoError(t, err)
	require.EqualValues(t, 2, cc.sets.Load())
}

func TestRouteCacheInvalidatedByRebuild(t *testing.T) {
	feed := triangleFeed()
	cc := &countingCache{inner: NewMemoryCache()}
	eng := New(feed, cc, time.Minute)
	ctx := context.Background()

	_, err := eng.Route(ctx, "A", "C", graph.MetricTime)
	require.NoError(t, err)

	// Reopen the direct edge and rebuild; the old entry must not serve.
	feed.mu.Lock()
	feed.edges[2].Status = model.EdgeActive
	feed.mu.Unlock()
	_, err = eng.BuildGraph(ctx, true)
	require.NoError(t, err)

	res, err := eng.Route(ctx, "A", "C", graph.MetricTime)
	require.NoError(t, err)
	require.EqualValues(t, 0, cc.hits.Load())
	require.Equal(t, 5.0, res.Summary.TotalTimeMinutes)
	require.Len(t, res.Segments, 1)
}

func TestRouteErrors(t *testing.T) {
	eng := New(triangleFeed(), nil, time.Minute)
	ctx := context.Background()

	_, err := eng.Route(ctx, "missing", "C", graph.MetricTime)
	require.True(t, graph.IsNotFound(err))

	_, err = eng.Route(ctx, "C", "A", graph.MetricTime)
	require.ErrorIs(t, err, graph.ErrNoPath)
}

func TestReachableFromTriangle(t *testing.T) {
	eng := New(triangleFeed(), nil, time.Minute)
	res, err := eng.ReachableFrom(context.Background(), "A")
	require.NoError(t, err)
	require.Equal(t, "A", res.Source.ID)
	require.Equal(t, 2, res.Count)
	require.Equal(t, "B", res.Destinations[0].ID)
	require.Equal(t, 10.0, res.Destinations[0].EstimatedTimeMinutes)
	require.Equal(t, "C", res.Destinations[1].ID)
	require.Equal(t, 30.0, res.Destinations[1].EstimatedTimeMinutes)

	_, err = eng.ReachableFrom(context.Background(), "missing")
	require.True(t, graph.IsNotFound(err))
}

func TestStatsTrackGenerations(t *testing.T) {
	eng := New(triangleFeed(), nil, time.Minute)
	require.Equal(t, Stats{}, eng.Stats())

	var rebuilt []Stats
	eng.OnRebuild = func(s Stats) { rebuilt = append(rebuilt, s) }

	_, err := eng.BuildGraph(context.Background(), false)
	require.NoError(t, err)
	s := eng.Stats()
	require.EqualValues(t, 1, s.Generation)
	require.Equal(t, 3, s.Vertices)
	require.Equal(t, 2, s.Arcs)

	_, err = eng.BuildGraph(context.Background(), true)
	require.NoError(t, err)
	require.EqualValues(t, 2, eng.Stats().Generation)
	require.Len(t, rebuilt, 2)
}

func TestConcurrentReadsDuringRebuilds(t *testing.T) {
	eng := New(triangleFeed(), nil, time.Minute)
	ctx := context.Background()
	_, err := eng.BuildGraph(ctx, false)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := eng.Route(ctx, "A", "C", graph.MetricTime); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	for i := 0; i < 10; i++ {
		_, err := eng.BuildGraph(ctx, true)
		require.NoError(t, err)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
