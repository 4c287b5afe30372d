package main

import (
    "context"
    "log"
    "net/http"
    "time"

    "github.com/prometheus/client_golang/prometheus/promhttp"

    "logiroute/internal/api"
    "logiroute/internal/config"
    "logiroute/internal/metrics"
)

func main() {
    loader, err := config.NewLoader("")
    if err != nil {
        log.Fatalf("failed to load config: %v", err)
    }
    cfg := loader.Config()

    metrics.RegisterDefault()

    srv, err := api.NewServer(cfg)
    if err != nil {
        log.Fatalf("failed to init server: %v", err)
    }

    ctx, cancel := context.WithCancel(context.Background())
    defer cancel()

    // Build the first snapshot before accepting traffic; an empty
    // network still yields a valid (empty) graph.
    if _, err := srv.Engine.BuildGraph(ctx, false); err != nil {
        log.Printf("initial graph build failed: %v", err)
    }

    mux := http.NewServeMux()

    // Network
    mux.HandleFunc("/v1/locations", srv.LocationsHandler)
    mux.HandleFunc("/v1/locations/", srv.LocationByIDHandler) // includes /reachable
    mux.HandleFunc("/v1/edges", srv.EdgesHandler)
    mux.HandleFunc("/v1/edges/", srv.EdgeByIDHandler)

    // Routing
    mux.HandleFunc("/v1/routes/calculate", srv.RouteCalculateHandler)
    mux.HandleFunc("/v1/routes/calculate-async", srv.RouteCalculateAsyncHandler)
    mux.HandleFunc("/v1/tasks/", srv.TaskByIDHandler)
    mux.HandleFunc("/v1/graph/rebuild", srv.GraphRebuildHandler)
    mux.HandleFunc("/v1/graph/stats", srv.GraphStatsHandler)

    // Shipments and tracking
    mux.HandleFunc("/v1/shipments", srv.ShipmentsHandler)
    mux.HandleFunc("/v1/shipments/", srv.ShipmentByIDHandler) // includes /transition
    mux.HandleFunc("/v1/track/", srv.TrackHandler)            // includes /stream
    mux.HandleFunc("/ws/track", srv.TrackingWSHandler)

    // Subscriptions
    mux.HandleFunc("/v1/subscriptions", srv.SubscriptionsHandler)
    mux.HandleFunc("/v1/subscriptions/", srv.SubscriptionByIDHandler)

    // Health and metrics
    mux.HandleFunc("/healthz", srv.HealthHandler)
    mux.HandleFunc("/readyz", srv.ReadyHandler)
    mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

    // Background workers
    srv.Runner.Start(ctx)
    srv.NewWebhookWorker().Start()
    if cfg.Engine.RebuildInterval > 0 {
        go srv.Engine.AutoRebuild(ctx, cfg.Engine.RebuildInterval)
    }

    // Hot-reload live settings on config changes.
    loader.OnChange(func(c *config.Config) {
        srv.ApplyConfig(c)
    })
    stopWatch, err := loader.Watch()
    if err != nil {
        log.Printf("config watch disabled: %v", err)
    } else {
        defer stopWatch()
    }

    httpSrv := &http.Server{
        Addr:              cfg.Addr,
        Handler:           srv.Middleware(mux),
        ReadHeaderTimeout: 5 * time.Second,
    }

    log.Printf("API listening on %s", cfg.Addr)
    if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        log.Fatalf("server error: %v", err)
    }
}
