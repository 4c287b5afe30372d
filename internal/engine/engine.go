package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"logiroute/internal/graph"
	"logiroute/internal/metrics"
	"logiroute/internal/model"
)

// Feed supplies the point-in-time inputs for a graph build. The store
// implements it; tests may provide a fixed snapshot.
type Feed interface {
	ActiveLocations(ctx context.Context) ([]model.LocationNode, error)
	AllEdges(ctx context.Context) ([]model.RouteEdge, error)
}

// Stats describes the current snapshot for the stats endpoint and the
// graph.rebuilt event payload.
type Stats struct {
	Generation uint64    `json:"generation"`
	Vertices   int       `json:"vertices"`
	Arcs       int       `json:"arcs"`
	BuiltAt    time.Time `json:"builtAt"`
}

// Engine owns the immutable graph snapshot. Queries read the snapshot
// through an atomic pointer and never block a rebuild; a rebuild swaps
// the pointer when the new graph is complete.
type Engine struct {
	feed  Feed
	cache RouteCache
	ttl   time.Duration

	snap    atomic.Pointer[graph.Graph]
	gen     atomic.Uint64
	buildMu sync.Mutex

	// OnRebuild, when set, runs after every successful snapshot swap.
	OnRebuild func(Stats)
}

func New(feed Feed, cache RouteCache, ttl time.Duration) *Engine {
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Engine{feed: feed, cache: cache, ttl: ttl}
}

// BuildGraph constructs a fresh snapshot from the feed and swaps it in.
// Without force, an existing snapshot is returned as-is; concurrent
// callers share one build.
func (e *Engine) BuildGraph(ctx context.Context, force bool) (*graph.Graph, error) {
	if !force {
		if g := e.snap.Load(); g != nil {
			return g, nil
		}
	}
	e.buildMu.Lock()
	defer e.buildMu.Unlock()
	if !force {
		if g := e.snap.Load(); g != nil {
			return g, nil
		}
	}
	start := time.Now()
	nodes, err := e.feed.ActiveLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	edges, err := e.feed.AllEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	g := graph.Build(nodes, edges)
	e.snap.Store(g)
	gen := e.gen.Add(1)
	metrics.GraphBuilds.Inc()
	metrics.GraphBuildDuration.Observe(time.Since(start).Seconds())
	metrics.GraphVertices.Set(float64(g.VertexCount()))
	metrics.GraphArcs.Set(float64(g.ArcCount()))
	log.Printf("graph rebuilt gen=%d vertices=%d arcs=%d in %s", gen, g.VertexCount(), g.ArcCount(), time.Since(start))
	if e.OnRebuild != nil {
		e.OnRebuild(e.statsFor(g, gen))
	}
	return g, nil
}

// Snapshot returns the current graph, building one on first use.
func (e *Engine) Snapshot(ctx context.Context) (*graph.Graph, error) {
	if g := e.snap.Load(); g != nil {
		return g, nil
	}
	return e.BuildGraph(ctx, false)
}

func (e *Engine) statsFor(g *graph.Graph, gen uint64) Stats {
	return Stats{Generation: gen, Vertices: g.VertexCount(), Arcs: g.ArcCount(), BuiltAt: g.BuiltAt()}
}

// Stats reports on the current snapshot; zero-valued when no build has
// happened yet.
func (e *Engine) Stats() Stats {
	g := e.snap.Load()
	if g == nil {
		return Stats{}
	}
	return e.statsFor(g, e.gen.Load())
}

func (e *Engine) cacheKey(sourceID, destinationID string, m graph.Metric) string {
	return fmt.Sprintf("route:%d:%s:%s:%s", e.gen.Load(), sourceID, destinationID, m)
}

// Route computes the best path for the metric, serving repeats from the
// result cache. Cache keys include the snapshot generation so a rebuild
// naturally invalidates stale entries.
func (e *Engine) Route(ctx context.Context, sourceID, destinationID string, m graph.Metric) (model.RouteResult, error) {
	g, err := e.Snapshot(ctx)
	if err != nil {
		return model.RouteResult{}, err
	}
	key := e.cacheKey(sourceID, destinationID, m)
	if res, ok := e.cache.Get(ctx, key); ok {
		metrics.RouteQueries.WithLabelValues(string(m), "cache_hit").Inc()
		return res, nil
	}
	start := time.Now()
	p, err := graph.ShortestPath(g, sourceID, destinationID, m)
	metrics.RouteQueryDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RouteQueries.WithLabelValues(string(m), outcomeFor(err)).Inc()
		return model.RouteResult{}, err
	}
	metrics.RouteQueries.WithLabelValues(string(m), "ok").Inc()
	res := renderRoute(p)
	e.cache.Set(ctx, key, res, e.ttl)
	return res, nil
}

// ReachableFrom lists every destination reachable from the source by
// travel time. Results are not cached; the sweep is already a single
// search.
func (e *Engine) ReachableFrom(ctx context.Context, sourceID string) (model.ReachabilityResult, error) {
	g, err := e.Snapshot(ctx)
	if err != nil {
		return model.ReachabilityResult{}, err
	}
	src, ok := g.Vertex(sourceID)
	if !ok {
		return model.ReachabilityResult{}, &graph.NotFoundError{Endpoint: "location", ID: sourceID}
	}
	reach, err := graph.ReachableFrom(g, sourceID)
	if err != nil {
		return model.ReachabilityResult{}, err
	}
	return renderReachability(src, reach), nil
}

func outcomeFor(err error) string {
	switch {
	case graph.IsNotFound(err):
		return "not_found"
	case errors.Is(err, graph.ErrNoPath):
		return "no_path"
	default:
		return "error"
	}
}
