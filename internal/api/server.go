package api

import (
    "context"
    "strings"

    "logiroute/internal/auth"
    "logiroute/internal/config"
    "logiroute/internal/engine"
    "logiroute/internal/notify"
    "logiroute/internal/store"
)

type Server struct {
    Store  store.Store
    Engine *engine.Engine
    Runner *engine.Runner
    Pub    *notify.Publisher
    Auth   *auth.Verifier
    Broker EventBroker
    Cfg    *config.Config

    limiter *clientLimiter
}

// NewServer wires the store, graph engine, job runner, and event broker
// from config. No DATABASE_URL means in-memory store; no REDIS_URL
// means in-process cache and broker.
func NewServer(cfg *config.Config) (*Server, error) {
    var s store.Store
    if strings.TrimSpace(cfg.DatabaseURL) == "" {
        s = store.NewMemory()
    } else {
        sp, err := store.NewPostgres(cfg.DatabaseURL)
        if err != nil {
            return nil, err
        }
        if err := sp.Migrate(context.Background()); err != nil {
            return nil, err
        }
        s = sp
    }

    var cache engine.RouteCache
    var broker EventBroker
    if cfg.RedisURL != "" {
        rc, err := engine.NewRedisCache(cfg.RedisURL)
        if err != nil {
            return nil, err
        }
        cache = rc
        rb, err := NewRedisBroker(cfg.RedisURL)
        if err != nil {
            return nil, err
        }
        broker = rb
    } else {
        cache = engine.NewMemoryCache()
        broker = NewBroker()
    }

    eng := engine.New(s, cache, cfg.Engine.RouteCacheTTL)
    pub := notify.NewPublisher(s)
    eng.OnRebuild = func(st engine.Stats) {
        pub.Emit(context.Background(), notify.EventGraphRebuilt, st)
    }

    srv := &Server{
        Store:  s,
        Engine: eng,
        Runner: engine.NewRunner(eng, cfg.Engine.JobWorkers, cfg.Engine.JobQueueSize),
        Pub:    pub,
        Auth:   auth.NewVerifier(cfg.Auth.Mode, cfg.Auth.HMACSecret),
        Broker: broker,
        Cfg:    cfg,
    }
    srv.limiter = newClientLimiter(cfg.Rate.RPS, cfg.Rate.Burst)
    return srv, nil
}

// NewWebhookWorker creates a background worker for webhook deliveries.
func (s *Server) NewWebhookWorker() *notify.Worker {
    return notify.NewWorker(s.Store, s.Cfg.Webhooks.MaxAttempts)
}

// ApplyConfig applies the live-reloadable subset of a new config: rate
// limits take effect immediately; addresses and connection URLs need a
// restart.
func (s *Server) ApplyConfig(cfg *config.Config) {
    s.limiter.SetRate(cfg.Rate.RPS, cfg.Rate.Burst)
}
