package store

import (
    "context"
    "sync"
    "time"

    "github.com/google/uuid"
    "logiroute/internal/model"
    "logiroute/internal/shipment"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
    mu         sync.Mutex
    locs       map[string]model.LocationNode // id -> location
    locIDs     []string                      // insertion order
    edges      map[string]model.RouteEdge    // id -> edge
    edgeIDs    []string
    edgePair   map[string]string             // "src|dst" -> edge id
    shipments  map[string]model.Shipment     // id -> shipment
    shipIDs    []string
    byTracking map[string]string             // trackingId -> shipment id
    subs       []model.Subscription
    deliveries map[string]*WebhookDelivery   // id -> delivery state
    deliveryIDs []string
}

func NewMemory() *Memory {
    return &Memory{
        locs: map[string]model.LocationNode{},
        edges: map[string]model.RouteEdge{},
        edgePair: map[string]string{},
        shipments: map[string]model.Shipment{},
        byTracking: map[string]string{},
        deliveries: map[string]*WebhookDelivery{},
    }
}

func nowRFC3339() string { return time.Now().UTC().Format(time.RFC3339) }

func pairKey(src, dst string) string { return src + "|" + dst }

// Locations

func (m *Memory) CreateLocation(ctx context.Context, in model.LocationInput) (model.LocationNode, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    active := true
    if in.Active != nil { active = *in.Active }
    n := model.LocationNode{ID: uuid.New().String(), Name: in.Name, Type: in.Type, Lat: in.Lat, Lon: in.Lon, Address: in.Address, Active: active}
    m.locs[n.ID] = n
    m.locIDs = append(m.locIDs, n.ID)
    return n, nil
}

func (m *Memory) GetLocation(ctx context.Context, id string) (model.LocationNode, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    n, ok := m.locs[id]
    if !ok { return model.LocationNode{}, ErrNotFound }
    return n, nil
}

func (m *Memory) ListLocations(ctx context.Context, typ string, activeOnly bool, cursor string, limit int) ([]model.LocationNode, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    start := 0
    if cursor != "" {
        for i, id := range m.locIDs {
            if id == cursor { start = i + 1; break }
        }
    }
    if limit <= 0 { limit = 100 }
    out := []model.LocationNode{}
    var next string
    for i := start; i < len(m.locIDs) && len(out) < limit; i++ {
        n := m.locs[m.locIDs[i]]
        if typ != "" && n.Type != typ { continue }
        if activeOnly && !n.Active { continue }
        out = append(out, n)
        next = m.locIDs[i]
    }
    if len(out) < limit { next = "" }
    return out, next, nil
}

func (m *Memory) PatchLocation(ctx context.Context, id string, in model.LocationPatch) (model.LocationNode, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    n, ok := m.locs[id]
    if !ok { return model.LocationNode{}, ErrNotFound }
    if in.Name != nil { n.Name = *in.Name }
    if in.Type != nil { n.Type = *in.Type }
    if in.Lat != nil { n.Lat = *in.Lat }
    if in.Lon != nil { n.Lon = *in.Lon }
    if in.Address != nil { n.Address = *in.Address }
    if in.Active != nil { n.Active = *in.Active }
    m.locs[id] = n
    return n, nil
}

func (m *Memory) DeleteLocation(ctx context.Context, id string) error {
    m.mu.Lock(); defer m.mu.Unlock()
    if _, ok := m.locs[id]; !ok { return ErrNotFound }
    delete(m.locs, id)
    out := make([]string, 0, len(m.locIDs))
    for _, v := range m.locIDs { if v != id { out = append(out, v) } }
    m.locIDs = out
    return nil
}

func (m *Memory) ActiveLocations(ctx context.Context) ([]model.LocationNode, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    out := []model.LocationNode{}
    for _, id := range m.locIDs {
        if n := m.locs[id]; n.Active { out = append(out, n) }
    }
    return out, nil
}

// Route edges

func (m *Memory) CreateEdge(ctx context.Context, in model.RouteEdgeInput) (model.RouteEdge, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if _, ok := m.locs[in.SourceID]; !ok { return model.RouteEdge{}, ErrNotFound }
    if _, ok := m.locs[in.DestinationID]; !ok { return model.RouteEdge{}, ErrNotFound }
    key := pairKey(in.SourceID, in.DestinationID)
    if _, ok := m.edgePair[key]; ok { return model.RouteEdge{}, ErrDuplicateEdge }
    status := in.Status
    if status == "" { status = model.EdgeActive }
    e := model.RouteEdge{ID: uuid.New().String(), SourceID: in.SourceID, DestinationID: in.DestinationID, DistanceKm: in.DistanceKm, TravelTimeMinutes: in.TravelTimeMinutes, Status: status, CostPerKm: in.CostPerKm}
    m.edges[e.ID] = e
    m.edgeIDs = append(m.edgeIDs, e.ID)
    m.edgePair[key] = e.ID
    return e, nil
}

func (m *Memory) GetEdge(ctx context.Context, id string) (model.RouteEdge, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    e, ok := m.edges[id]
    if !ok { return model.RouteEdge{}, ErrNotFound }
    return e, nil
}

func (m *Memory) ListEdges(ctx context.Context, status, sourceID, cursor string, limit int) ([]model.RouteEdge, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    start := 0
    if cursor != "" {
        for i, id := range m.edgeIDs {
            if id == cursor { start = i + 1; break }
        }
    }
    if limit <= 0 { limit = 100 }
    out := []model.RouteEdge{}
    var next string
    for i := start; i < len(m.edgeIDs) && len(out) < limit; i++ {
        e := m.edges[m.edgeIDs[i]]
        if status != "" && e.Status != status { continue }
        if sourceID != "" && e.SourceID != sourceID { continue }
        out = append(out, e)
        next = m.edgeIDs[i]
    }
    if len(out) < limit { next = "" }
    return out, next, nil
}

func (m *Memory) PatchEdge(ctx context.Context, id string, in model.RouteEdgePatch) (model.RouteEdge, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    e, ok := m.edges[id]
    if !ok { return model.RouteEdge{}, ErrNotFound }
    if in.DistanceKm != nil { e.DistanceKm = *in.DistanceKm }
    if in.TravelTimeMinutes != nil { e.TravelTimeMinutes = *in.TravelTimeMinutes }
    if in.Status != nil { e.Status = *in.Status }
    if in.CostPerKm != nil { e.CostPerKm = *in.CostPerKm }
    m.edges[id] = e
    return e, nil
}

func (m *Memory) DeleteEdge(ctx context.Context, id string) error {
    m.mu.Lock(); defer m.mu.Unlock()
    e, ok := m.edges[id]
    if !ok { return ErrNotFound }
    delete(m.edges, id)
    delete(m.edgePair, pairKey(e.SourceID, e.DestinationID))
    out := make([]string, 0, len(m.edgeIDs))
    for _, v := range m.edgeIDs { if v != id { out = append(out, v) } }
    m.edgeIDs = out
    return nil
}

func (m *Memory) AllEdges(ctx context.Context) ([]model.RouteEdge, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    out := make([]model.RouteEdge, 0, len(m.edgeIDs))
    for _, id := range m.edgeIDs { out = append(out, m.edges[id]) }
    return out, nil
}

// Shipments

func (m *Memory) CreateShipment(ctx context.Context, in model.ShipmentInput) (model.Shipment, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if _, ok := m.locs[in.OriginID]; !ok { return model.Shipment{}, ErrNotFound }
    if _, ok := m.locs[in.DestinationID]; !ok { return model.Shipment{}, ErrNotFound }
    now := nowRFC3339()
    sh := model.Shipment{
        ID: uuid.New().String(),
        TrackingID: shipment.NewTrackingID(),
        OriginID: in.OriginID,
        CurrentLocationID: in.OriginID,
        DestinationID: in.DestinationID,
        WeightKg: in.WeightKg,
        Description: in.Description,
        State: model.ShipmentPending,
        CreatedAt: now,
        UpdatedAt: now,
    }
    m.shipments[sh.ID] = sh
    m.shipIDs = append(m.shipIDs, sh.ID)
    m.byTracking[sh.TrackingID] = sh.ID
    return sh, nil
}

func (m *Memory) GetShipment(ctx context.Context, id string) (model.Shipment, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    sh, ok := m.shipments[id]
    if !ok { return model.Shipment{}, ErrNotFound }
    return sh, nil
}

func (m *Memory) GetShipmentByTracking(ctx context.Context, trackingID string) (model.Shipment, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    id, ok := m.byTracking[trackingID]
    if !ok { return model.Shipment{}, ErrNotFound }
    return m.shipments[id], nil
}

func (m *Memory) ListShipments(ctx context.Context, state, cursor string, limit int) ([]model.Shipment, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    start := 0
    if cursor != "" {
        for i, id := range m.shipIDs {
            if id == cursor { start = i + 1; break }
        }
    }
    if limit <= 0 { limit = 100 }
    out := []model.Shipment{}
    var next string
    for i := start; i < len(m.shipIDs) && len(out) < limit; i++ {
        sh := m.shipments[m.shipIDs[i]]
        if state != "" && sh.State != state { continue }
        out = append(out, sh)
        next = m.shipIDs[i]
    }
    if len(out) < limit { next = "" }
    return out, next, nil
}

func (m *Memory) UpdateShipment(ctx context.Context, sh model.Shipment) (model.Shipment, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    if _, ok := m.shipments[sh.ID]; !ok { return model.Shipment{}, ErrNotFound }
    sh.UpdatedAt = nowRFC3339()
    m.shipments[sh.ID] = sh
    return sh, nil
}

// Subscriptions

func (m *Memory) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    s := model.Subscription{ID: uuid.New().String(), URL: req.URL, Events: req.Events, Secret: req.Secret}
    m.subs = append(m.subs, s)
    return s, nil
}

func (m *Memory) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    var out []model.Subscription
    for _, s := range m.subs {
        for _, e := range s.Events { if e == eventType { out = append(out, s); break } }
    }
    return out, nil
}

func (m *Memory) ListSubscriptions(ctx context.Context, cursor string, limit int) ([]model.Subscription, string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    start := 0
    if cursor != "" {
        for i := range m.subs { if m.subs[i].ID == cursor { start = i + 1; break } }
    }
    if limit <= 0 { limit = 100 }
    end := start + limit
    if end > len(m.subs) { end = len(m.subs) }
    items := append([]model.Subscription(nil), m.subs[start:end]...)
    next := ""
    if end < len(m.subs) { next = m.subs[end-1].ID }
    return items, next, nil
}

func (m *Memory) DeleteSubscription(ctx context.Context, id string) error {
    m.mu.Lock(); defer m.mu.Unlock()
    out := make([]model.Subscription, 0, len(m.subs))
    for _, s := range m.subs { if s.ID != id { out = append(out, s) } }
    m.subs = out
    return nil
}

// Webhook deliveries

func (m *Memory) EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    id := uuid.New().String()
    now := time.Now()
    d := &WebhookDelivery{ID: id, SubscriptionID: subscriptionID, EventType: eventType, URL: url, Secret: secret, Payload: payload, Status: "pending", NextAttemptAt: now, CreatedAt: now, UpdatedAt: now}
    m.deliveries[id] = d
    m.deliveryIDs = append(m.deliveryIDs, id)
    return id, nil
}

func (m *Memory) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
    m.mu.Lock(); defer m.mu.Unlock()
    now := time.Now()
    out := []WebhookDelivery{}
    for _, id := range m.deliveryIDs {
        d := m.deliveries[id]
        if d == nil { continue }
        if (d.Status == "pending" || d.Status == "retry") && !d.NextAttemptAt.After(now) {
            out = append(out, *d)
            if limit > 0 && len(out) >= limit { break }
        }
    }
    return out, nil
}

func (m *Memory) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int) error {
    m.mu.Lock(); defer m.mu.Unlock()
    d := m.deliveries[id]
    if d == nil { return nil }
    d.Attempts++
    d.LastStatusCode = responseCode
    d.UpdatedAt = time.Now()
    if success {
        d.Status = "delivered"
    } else {
        d.Status = "retry"
        d.LastError = lastError
        if nextAttemptAt != nil { d.NextAttemptAt = *nextAttemptAt } else { d.NextAttemptAt = time.Now().Add(1 * time.Minute) }
    }
    return nil
}

func (m *Memory) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int) error {
    m.mu.Lock(); defer m.mu.Unlock()
    d := m.deliveries[id]
    if d == nil { return nil }
    d.Status = "failed"
    d.LastError = lastError
    d.LastStatusCode = responseCode
    d.UpdatedAt = time.Now()
    return nil
}
