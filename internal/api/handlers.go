package api

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "logiroute/internal/buildinfo"
    "logiroute/internal/engine"
    "logiroute/internal/graph"
    "logiroute/internal/model"
    "logiroute/internal/notify"
    "logiroute/internal/shipment"
    "logiroute/internal/store"
)

// LocationsHandler handles POST/GET /v1/locations
func (s *Server) LocationsHandler(w http.ResponseWriter, r *http.Request) {
    switch r.Method {
    case http.MethodPost:
        p := s.getPrincipal(r)
        if !p.CanWrite() { writeProblem(w, 403, "Forbidden", "operator or admin required", r.URL.Path); return }
        var req model.LocationInput
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if err := validateLocationInput(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid location", err.Error(), r.URL.Path)
            return
        }
        n, err := s.Store.CreateLocation(r.Context(), req)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "Create location failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusCreated, n)
    case http.MethodGet:
        q := r.URL.Query()
        limit := 100
        if v := q.Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
        activeOnly := q.Get("active") == "true"
        items, next, err := s.Store.ListLocations(r.Context(), q.Get("type"), activeOnly, q.Get("cursor"), limit)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List locations failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// LocationByIDHandler handles /v1/locations/{id} and /v1/locations/{id}/reachable
func (s *Server) LocationByIDHandler(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/v1/locations/")
    if rest == r.URL.Path || rest == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    parts := strings.Split(rest, "/")
    id := parts[0]

    if len(parts) > 1 && parts[1] == "reachable" {
        if r.Method != http.MethodGet { w.WriteHeader(http.StatusMethodNotAllowed); return }
        res, err := s.Engine.ReachableFrom(r.Context(), id)
        if err != nil {
            s.writeRouteError(w, r, err)
            return
        }
        writeJSON(w, http.StatusOK, res)
        return
    }

    switch r.Method {
    case http.MethodGet:
        n, err := s.Store.GetLocation(r.Context(), id)
        if err != nil {
            writeProblem(w, http.StatusNotFound, "Location not found", id, r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, n)
    case http.MethodPatch:
        p := s.getPrincipal(r)
        if !p.CanWrite() { writeProblem(w, 403, "Forbidden", "operator or admin required", r.URL.Path); return }
        var req model.LocationPatch
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if req.Type != nil && !validLocationType(*req.Type) {
            writeProblem(w, http.StatusBadRequest, "Invalid location", "unknown type "+*req.Type, r.URL.Path)
            return
        }
        n, err := s.Store.PatchLocation(r.Context(), id, req)
        if err != nil {
            if errors.Is(err, store.ErrNotFound) {
                writeProblem(w, http.StatusNotFound, "Location not found", id, r.URL.Path)
                return
            }
            writeProblem(w, http.StatusInternalServerError, "Update location failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, n)
    case http.MethodDelete:
        p := s.getPrincipal(r)
        if !p.CanWrite() { writeProblem(w, 403, "Forbidden", "operator or admin required", r.URL.Path); return }
        if err := s.Store.DeleteLocation(r.Context(), id); err != nil {
            if errors.Is(err, store.ErrNotFound) {
                writeProblem(w, http.StatusNotFound, "Location not found", id, r.URL.Path)
                return
            }
            writeProblem(w, http.StatusInternalServerError, "Delete location failed", err.Error(), r.URL.Path)
            return
        }
        w.WriteHeader(http.StatusNoContent)
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// EdgesHandler handles POST/GET /v1/edges
func (s *Server) EdgesHandler(w http.ResponseWriter, r *http.Request) {
    switch r.Method {
    case http.MethodPost:
        p := s.getPrincipal(r)
        if !p.CanWrite() { writeProblem(w, 403, "Forbidden", "operator or admin required", r.URL.Path); return }
        var req model.RouteEdgeInput
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if err := validateEdgeInput(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid edge", err.Error(), r.URL.Path)
            return
        }
        e, err := s.Store.CreateEdge(r.Context(), req)
        if err != nil {
            switch {
            case errors.Is(err, store.ErrDuplicateEdge):
                writeProblem(w, http.StatusConflict, "Duplicate edge", err.Error(), r.URL.Path)
            case errors.Is(err, store.ErrNotFound):
                writeProblem(w, http.StatusBadRequest, "Invalid edge", "source or destination location does not exist", r.URL.Path)
            default:
                writeProblem(w, http.StatusInternalServerError, "Create edge failed", err.Error(), r.URL.Path)
            }
            return
        }
        writeJSON(w, http.StatusCreated, e)
    case http.MethodGet:
        q := r.URL.Query()
        limit := 100
        if v := q.Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
        items, next, err := s.Store.ListEdges(r.Context(), q.Get("status"), q.Get("sourceId"), q.Get("cursor"), limit)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List edges failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// EdgeByIDHandler handles GET/PATCH/DELETE /v1/edges/{id}
func (s *Server) EdgeByIDHandler(w http.ResponseWriter, r *http.Request) {
    id := strings.TrimPrefix(r.URL.Path, "/v1/edges/")
    if id == r.URL.Path || id == "" || strings.Contains(id, "/") {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    switch r.Method {
    case http.MethodGet:
        e, err := s.Store.GetEdge(r.Context(), id)
        if err != nil {
            writeProblem(w, http.StatusNotFound, "Edge not found", id, r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, e)
    case http.MethodPatch:
        p := s.getPrincipal(r)
        if !p.CanWrite() { writeProblem(w, 403, "Forbidden", "operator or admin required", r.URL.Path); return }
        var req model.RouteEdgePatch
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if req.Status != nil && !validEdgeStatus(*req.Status) {
            writeProblem(w, http.StatusBadRequest, "Invalid edge", "unknown status "+*req.Status, r.URL.Path)
            return
        }
        e, err := s.Store.PatchEdge(r.Context(), id, req)
        if err != nil {
            if errors.Is(err, store.ErrNotFound) {
                writeProblem(w, http.StatusNotFound, "Edge not found", id, r.URL.Path)
                return
            }
            writeProblem(w, http.StatusInternalServerError, "Update edge failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, e)
    case http.MethodDelete:
        p := s.getPrincipal(r)
        if !p.CanWrite() { writeProblem(w, 403, "Forbidden", "operator or admin required", r.URL.Path); return }
        if err := s.Store.DeleteEdge(r.Context(), id); err != nil {
            if errors.Is(err, store.ErrNotFound) {
                writeProblem(w, http.StatusNotFound, "Edge not found", id, r.URL.Path)
                return
            }
            writeProblem(w, http.StatusInternalServerError, "Delete edge failed", err.Error(), r.URL.Path)
            return
        }
        w.WriteHeader(http.StatusNoContent)
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

func (s *Server) writeRouteError(w http.ResponseWriter, r *http.Request, err error) {
    var nf *graph.NotFoundError
    switch {
    case errors.As(err, &nf):
        writeProblem(w, http.StatusNotFound, "Location not found", nf.Error(), r.URL.Path)
    case errors.Is(err, graph.ErrNoPath):
        writeProblem(w, http.StatusNotFound, "No route available", "no route available between these locations", r.URL.Path)
    case errors.Is(err, graph.ErrInvalidMetric):
        writeProblem(w, http.StatusBadRequest, "Invalid optimization metric", err.Error(), r.URL.Path)
    default:
        writeProblem(w, http.StatusInternalServerError, "Route computation failed", err.Error(), r.URL.Path)
    }
}

func (s *Server) parseRouteRequest(w http.ResponseWriter, r *http.Request) (model.RouteRequest, graph.Metric, bool) {
    var req model.RouteRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return req, "", false
    }
    if req.SourceID == "" || req.DestinationID == "" {
        writeProblem(w, http.StatusBadRequest, "Invalid route request", "sourceId and destinationId are required", r.URL.Path)
        return req, "", false
    }
    m, ok := graph.ParseMetric(req.OptimizeBy)
    if !ok {
        writeProblem(w, http.StatusBadRequest, "Invalid optimization metric", "optimizeBy must be one of time, distance, cost", r.URL.Path)
        return req, "", false
    }
    return req, m, true
}

// RouteCalculateHandler handles POST /v1/routes/calculate
func (s *Server) RouteCalculateHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    req, m, ok := s.parseRouteRequest(w, r)
    if !ok { return }
    res, err := s.Engine.Route(r.Context(), req.SourceID, req.DestinationID, m)
    if err != nil {
        s.writeRouteError(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, map[string]any{"route": res})
}

// RouteCalculateAsyncHandler handles POST /v1/routes/calculate-async
func (s *Server) RouteCalculateAsyncHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    req, m, ok := s.parseRouteRequest(w, r)
    if !ok { return }
    id, err := s.Runner.SubmitRoute(req.SourceID, req.DestinationID, m)
    if err != nil {
        writeProblem(w, http.StatusServiceUnavailable, "Queue full", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusAccepted, map[string]any{"taskId": id, "status": engine.TaskQueued})
}

// TaskByIDHandler handles GET /v1/tasks/{id}
func (s *Server) TaskByIDHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    id := strings.TrimPrefix(r.URL.Path, "/v1/tasks/")
    if id == r.URL.Path || id == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    task, ok := s.Runner.Get(id)
    if !ok {
        writeProblem(w, http.StatusNotFound, "Task not found", id, r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, task)
}

// GraphRebuildHandler handles POST /v1/graph/rebuild
func (s *Server) GraphRebuildHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    p := s.getPrincipal(r)
    if !p.IsAdmin() { writeProblem(w, 403, "Forbidden", "admin required", r.URL.Path); return }
    id, err := s.Runner.SubmitRebuild()
    if err != nil {
        writeProblem(w, http.StatusServiceUnavailable, "Queue full", err.Error(), r.URL.Path)
        return
    }
    writeJSON(w, http.StatusAccepted, map[string]any{"taskId": id, "status": engine.TaskQueued})
}

// GraphStatsHandler handles GET /v1/graph/stats
func (s *Server) GraphStatsHandler(w http.ResponseWriter, r *http.Request) {
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    writeJSON(w, http.StatusOK, s.Engine.Stats())
}

// ShipmentsHandler handles POST/GET /v1/shipments
func (s *Server) ShipmentsHandler(w http.ResponseWriter, r *http.Request) {
    switch r.Method {
    case http.MethodPost:
        p := s.getPrincipal(r)
        if !p.CanWrite() { writeProblem(w, 403, "Forbidden", "operator or admin required", r.URL.Path); return }
        var req model.ShipmentInput
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if req.OriginID == "" || req.DestinationID == "" {
            writeProblem(w, http.StatusBadRequest, "Invalid shipment", "originId and destinationId are required", r.URL.Path)
            return
        }
        sh, err := s.Store.CreateShipment(r.Context(), req)
        if err != nil {
            if errors.Is(err, store.ErrNotFound) {
                writeProblem(w, http.StatusBadRequest, "Invalid shipment", "origin or destination location does not exist", r.URL.Path)
                return
            }
            writeProblem(w, http.StatusInternalServerError, "Create shipment failed", err.Error(), r.URL.Path)
            return
        }
        s.Pub.Emit(r.Context(), notify.EventShipmentCreated, sh)
        writeJSON(w, http.StatusCreated, sh)
    case http.MethodGet:
        q := r.URL.Query()
        limit := 100
        if v := q.Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
        items, next, err := s.Store.ListShipments(r.Context(), q.Get("state"), q.Get("cursor"), limit)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List shipments failed", err.Error(), r.URL.Path)
            return
        }
        writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// ShipmentByIDHandler handles /v1/shipments/{id} and /v1/shipments/{id}/transition
func (s *Server) ShipmentByIDHandler(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/v1/shipments/")
    if rest == r.URL.Path || rest == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    parts := strings.Split(rest, "/")
    id := parts[0]

    if len(parts) > 1 && parts[1] == "transition" {
        s.shipmentTransition(w, r, id)
        return
    }

    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    sh, err := s.Store.GetShipment(r.Context(), id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Shipment not found", id, r.URL.Path)
        return
    }
    writeJSON(w, http.StatusOK, sh)
}

func (s *Server) shipmentTransition(w http.ResponseWriter, r *http.Request, id string) {
    if r.Method != http.MethodPost {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    p := s.getPrincipal(r)
    if !p.CanWrite() { writeProblem(w, 403, "Forbidden", "operator or admin required", r.URL.Path); return }
    var req model.TransitionRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
        return
    }
    sh, err := s.Store.GetShipment(r.Context(), id)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Shipment not found", id, r.URL.Path)
        return
    }
    if req.Action == shipment.ActionMoveToLocation && req.NewLocationID != "" {
        if _, err := s.Store.GetLocation(r.Context(), req.NewLocationID); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid transition", "newLocationId does not exist", r.URL.Path)
            return
        }
    }
    from := sh.State
    next, err := shipment.Apply(sh, req)
    if err != nil {
        var te *shipment.TransitionError
        if errors.As(err, &te) {
            writeProblem(w, http.StatusConflict, "Invalid transition", te.Error(), r.URL.Path)
            return
        }
        writeProblem(w, http.StatusBadRequest, "Invalid transition", err.Error(), r.URL.Path)
        return
    }
    updated, err := s.Store.UpdateShipment(r.Context(), next)
    if err != nil {
        writeProblem(w, http.StatusInternalServerError, "Update shipment failed", err.Error(), r.URL.Path)
        return
    }
    data := map[string]any{
        "shipmentId": updated.ID,
        "trackingId": updated.TrackingID,
        "action":     req.Action,
        "fromState":  from,
        "toState":    updated.State,
        "currentLocationId": updated.CurrentLocationID,
        "ts": time.Now().UTC().Format(time.RFC3339),
    }
    s.Pub.Emit(r.Context(), notify.EventShipmentTransitioned, data)
    s.Broker.Publish(updated.TrackingID, SSEEvent{Type: "shipment.updated", Data: data})
    writeJSON(w, http.StatusOK, updated)
}

// TrackHandler handles GET /v1/track/{trackingId} and /v1/track/{trackingId}/stream
func (s *Server) TrackHandler(w http.ResponseWriter, r *http.Request) {
    rest := strings.TrimPrefix(r.URL.Path, "/v1/track/")
    if rest == r.URL.Path || rest == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing tracking id", r.URL.Path)
        return
    }
    parts := strings.Split(rest, "/")
    trackingID := parts[0]
    if r.Method != http.MethodGet {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    sh, err := s.Store.GetShipmentByTracking(r.Context(), trackingID)
    if err != nil {
        writeProblem(w, http.StatusNotFound, "Shipment not found", trackingID, r.URL.Path)
        return
    }

    if len(parts) > 1 && parts[1] == "stream" {
        s.trackStream(w, r, sh)
        return
    }
    status := trackingStatus(sh)
    // best-effort remaining route for shipments still moving
    if sh.State == model.ShipmentPending || sh.State == model.ShipmentInTransit || sh.State == model.ShipmentOutForDelivery {
        if res, err := s.Engine.Route(r.Context(), sh.CurrentLocationID, sh.DestinationID, graph.MetricTime); err == nil {
            status["remainingRoute"] = res
        }
    }
    writeJSON(w, http.StatusOK, status)
}

func trackingStatus(sh model.Shipment) map[string]any {
    return map[string]any{
        "trackingId":        sh.TrackingID,
        "state":             sh.State,
        "currentLocationId": sh.CurrentLocationID,
        "originId":          sh.OriginID,
        "destinationId":     sh.DestinationID,
        "updatedAt":         sh.UpdatedAt,
        "deliveredAt":       sh.DeliveredAt,
    }
}

func (s *Server) trackStream(w http.ResponseWriter, r *http.Request, sh model.Shipment) {
    flusher, ok := w.(http.Flusher)
    if !ok { writeProblem(w, 500, "Streaming unsupported", "", r.URL.Path); return }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("Connection", "keep-alive")
    ch := s.Broker.Subscribe(sh.TrackingID)
    defer s.Broker.Unsubscribe(sh.TrackingID, ch)
    // initial status event
    b, _ := json.Marshal(trackingStatus(sh))
    fmt.Fprintf(w, "event: shipment.status\n")
    fmt.Fprintf(w, "data: %s\n\n", string(b))
    flusher.Flush()
    notify := r.Context().Done()
    for {
        select {
        case <-notify:
            return
        case evt := <-ch:
            b, _ := json.Marshal(evt.Data)
            fmt.Fprintf(w, "event: %s\n", evt.Type)
            fmt.Fprintf(w, "data: %s\n\n", string(b))
            flusher.Flush()
        case <-time.After(15 * time.Second):
            fmt.Fprintf(w, "event: heartbeat\n")
            fmt.Fprintf(w, "data: {\"trackingId\":\"%s\",\"ts\":\"%s\"}\n\n", sh.TrackingID, time.Now().Format(time.RFC3339))
            flusher.Flush()
        }
    }
}

// SubscriptionsHandler handles POST/GET /v1/subscriptions
func (s *Server) SubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
    switch r.Method {
    case http.MethodPost:
        p := s.getPrincipal(r)
        if !p.CanWrite() { writeProblem(w, 403, "Forbidden", "operator or admin required", r.URL.Path); return }
        var req model.SubscriptionRequest
        if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
            writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
            return
        }
        if req.URL == "" || len(req.Events) == 0 {
            writeProblem(w, http.StatusBadRequest, "Invalid subscription", "url and events are required", r.URL.Path)
            return
        }
        sub, err := s.Store.CreateSubscription(r.Context(), req)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "Create subscription failed", err.Error(), r.URL.Path)
            return
        }
        sub.Secret = ""
        writeJSON(w, http.StatusCreated, sub)
    case http.MethodGet:
        q := r.URL.Query()
        limit := 100
        if v := q.Get("limit"); v != "" { fmt.Sscanf(v, "%d", &limit) }
        items, next, err := s.Store.ListSubscriptions(r.Context(), q.Get("cursor"), limit)
        if err != nil {
            writeProblem(w, http.StatusInternalServerError, "List subscriptions failed", err.Error(), r.URL.Path)
            return
        }
        for i := range items { items[i].Secret = "" }
        writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
    default:
        w.WriteHeader(http.StatusMethodNotAllowed)
    }
}

// SubscriptionByIDHandler handles DELETE /v1/subscriptions/{id}
func (s *Server) SubscriptionByIDHandler(w http.ResponseWriter, r *http.Request) {
    id := strings.TrimPrefix(r.URL.Path, "/v1/subscriptions/")
    if id == r.URL.Path || id == "" {
        writeProblem(w, http.StatusNotFound, "Not Found", "missing id", r.URL.Path)
        return
    }
    if r.Method != http.MethodDelete {
        w.WriteHeader(http.StatusMethodNotAllowed)
        return
    }
    p := s.getPrincipal(r)
    if !p.CanWrite() { writeProblem(w, 403, "Forbidden", "operator or admin required", r.URL.Path); return }
    if err := s.Store.DeleteSubscription(r.Context(), id); err != nil {
        writeProblem(w, http.StatusInternalServerError, "Delete subscription failed", err.Error(), r.URL.Path)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

// HealthHandler handles GET /healthz
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

// ReadyHandler handles GET /readyz; ready once a graph snapshot exists.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
    st := s.Engine.Stats()
    if st.Generation == 0 {
        writeProblem(w, http.StatusServiceUnavailable, "Not ready", "graph snapshot not built yet", r.URL.Path)
        return
    }
    if pinger, ok := s.Store.(interface{ Ping(context.Context) error }); ok {
        if err := pinger.Ping(r.Context()); err != nil {
            writeProblem(w, http.StatusServiceUnavailable, "Not ready", "database unreachable: "+err.Error(), r.URL.Path)
            return
        }
    }
    writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "graph": st})
}
