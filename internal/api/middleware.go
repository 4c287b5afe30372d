package api

import (
    "bufio"
    "log"
    "net"
    "net/http"
    "strconv"
    "sync"
    "time"

    "golang.org/x/time/rate"

    "logiroute/internal/metrics"
)

// clientLimiter keeps a token bucket per client IP. Idle entries are
// swept so the map does not grow with every client ever seen.
type clientLimiter struct {
    mu      sync.Mutex
    rps     rate.Limit
    burst   int
    clients map[string]*clientEntry
}

type clientEntry struct {
    lim  *rate.Limiter
    seen time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
    if rps <= 0 { rps = 50 }
    if burst <= 0 { burst = 100 }
    return &clientLimiter{rps: rate.Limit(rps), burst: burst, clients: map[string]*clientEntry{}}
}

func (c *clientLimiter) allow(clientIP string) bool {
    now := time.Now()
    c.mu.Lock()
    defer c.mu.Unlock()
    e, ok := c.clients[clientIP]
    if !ok {
        if len(c.clients) > 1024 {
            for k, v := range c.clients {
                if now.Sub(v.seen) > 10*time.Minute { delete(c.clients, k) }
            }
        }
        e = &clientEntry{lim: rate.NewLimiter(c.rps, c.burst)}
        c.clients[clientIP] = e
    }
    e.seen = now
    return e.lim.Allow()
}

// SetRate applies a new limit to future clients and resets known ones.
func (c *clientLimiter) SetRate(rps float64, burst int) {
    if rps <= 0 || burst <= 0 { return }
    c.mu.Lock()
    c.rps = rate.Limit(rps)
    c.burst = burst
    c.clients = map[string]*clientEntry{}
    c.mu.Unlock()
}

func clientIP(r *http.Request) string {
    if v := r.Header.Get("X-Forwarded-For"); v != "" {
        // first hop
        for i := 0; i < len(v); i++ {
            if v[i] == ',' { return v[:i] }
        }
        return v
    }
    host, _, err := net.SplitHostPort(r.RemoteAddr)
    if err != nil { return r.RemoteAddr }
    return host
}

type statusRecorder struct {
    http.ResponseWriter
    status int
}

func (sr *statusRecorder) WriteHeader(code int) {
    sr.status = code
    sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Flush() {
    if f, ok := sr.ResponseWriter.(http.Flusher); ok { f.Flush() }
}

// Hijack lets the websocket upgrade work through the middleware.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
    h, ok := sr.ResponseWriter.(http.Hijacker)
    if !ok { return nil, nil, http.ErrNotSupported }
    return h.Hijack()
}

// Middleware wraps the mux with logging, metrics, and rate limiting.
func (s *Server) Middleware(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if !s.limiter.allow(clientIP(r)) {
            writeProblem(w, http.StatusTooManyRequests, "Rate limit exceeded", "slow down", r.URL.Path)
            return
        }
        start := time.Now()
        rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
        next.ServeHTTP(rec, r)
        dur := time.Since(start)
        status := strconv.Itoa(rec.status)
        metrics.HTTPRequests.WithLabelValues(r.Method, r.URL.Path, status).Inc()
        metrics.HTTPDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(dur.Seconds())
        log.Printf("%s %s %s %d %v", r.RemoteAddr, r.Method, r.URL.Path, rec.status, dur)
    })
}
