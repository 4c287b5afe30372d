package store

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    _ "github.com/jackc/pgx/v5/stdlib"

    "logiroute/internal/model"
    "logiroute/internal/shipment"
)

type Postgres struct {
    db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
    db, err := sql.Open("pgx", dsn)
    if err != nil {
        return nil, err
    }
    if err := db.Ping(); err != nil {
        return nil, err
    }
    return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// Migrate creates the schema if it does not exist. Statements are
// idempotent so startup can always run them.
func (p *Postgres) Migrate(ctx context.Context) error {
    stmts := []string{
        `CREATE TABLE IF NOT EXISTS locations (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            type TEXT NOT NULL,
            lat DOUBLE PRECISION NOT NULL DEFAULT 0,
            lon DOUBLE PRECISION NOT NULL DEFAULT 0,
            address TEXT NOT NULL DEFAULT '',
            active BOOLEAN NOT NULL DEFAULT TRUE
        )`,
        `CREATE TABLE IF NOT EXISTS route_edges (
            id UUID PRIMARY KEY,
            source_id UUID NOT NULL REFERENCES locations(id),
            destination_id UUID NOT NULL REFERENCES locations(id),
            distance_km DOUBLE PRECISION NOT NULL,
            travel_time_minutes INT NOT NULL,
            status TEXT NOT NULL DEFAULT 'active',
            cost_per_km DOUBLE PRECISION NOT NULL DEFAULT 0,
            UNIQUE (source_id, destination_id)
        )`,
        `CREATE TABLE IF NOT EXISTS shipments (
            id UUID PRIMARY KEY,
            tracking_id TEXT NOT NULL UNIQUE,
            origin_id UUID NOT NULL REFERENCES locations(id),
            current_location_id UUID NOT NULL,
            destination_id UUID NOT NULL REFERENCES locations(id),
            weight_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
            description TEXT NOT NULL DEFAULT '',
            state TEXT NOT NULL DEFAULT 'pending',
            created_at TEXT NOT NULL,
            updated_at TEXT NOT NULL,
            delivered_at TEXT NOT NULL DEFAULT ''
        )`,
        `CREATE TABLE IF NOT EXISTS subscriptions (
            id UUID PRIMARY KEY,
            url TEXT NOT NULL,
            events JSONB NOT NULL,
            secret TEXT NOT NULL DEFAULT ''
        )`,
        `CREATE TABLE IF NOT EXISTS webhook_deliveries (
            id UUID PRIMARY KEY,
            subscription_id UUID NOT NULL,
            event_type TEXT NOT NULL,
            url TEXT NOT NULL,
            secret TEXT NOT NULL DEFAULT '',
            payload BYTEA NOT NULL,
            attempts INT NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'pending',
            next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            last_error TEXT NOT NULL DEFAULT '',
            last_status_code INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
    }
    for _, s := range stmts {
        if _, err := p.db.ExecContext(ctx, s); err != nil {
            return err
        }
    }
    return nil
}

// Locations

func (p *Postgres) CreateLocation(ctx context.Context, in model.LocationInput) (model.LocationNode, error) {
    active := true
    if in.Active != nil { active = *in.Active }
    n := model.LocationNode{ID: uuid.New().String(), Name: in.Name, Type: in.Type, Lat: in.Lat, Lon: in.Lon, Address: in.Address, Active: active}
    _, err := p.db.ExecContext(ctx, `INSERT INTO locations (id, name, type, lat, lon, address, active) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
        n.ID, n.Name, n.Type, n.Lat, n.Lon, n.Address, n.Active)
    if err != nil { return model.LocationNode{}, err }
    return n, nil
}

func (p *Postgres) GetLocation(ctx context.Context, id string) (model.LocationNode, error) {
    var n model.LocationNode
    row := p.db.QueryRowContext(ctx, `SELECT id::text, name, type, lat, lon, address, active FROM locations WHERE id=$1`, id)
    if err := row.Scan(&n.ID, &n.Name, &n.Type, &n.Lat, &n.Lon, &n.Address, &n.Active); err != nil {
        if errors.Is(err, sql.ErrNoRows) { return n, ErrNotFound }
        return n, err
    }
    return n, nil
}

func (p *Postgres) ListLocations(ctx context.Context, typ string, activeOnly bool, cursor string, limit int) ([]model.LocationNode, string, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    q := `SELECT id::text, name, type, lat, lon, address, active FROM locations WHERE 1=1`
    args := []any{}
    if typ != "" {
        args = append(args, typ)
        q += ` AND type=$` + itoa(len(args))
    }
    if activeOnly {
        q += ` AND active`
    }
    if cursor != "" {
        args = append(args, cursor)
        q += ` AND id::text > $` + itoa(len(args))
    }
    args = append(args, limit)
    q += ` ORDER BY id LIMIT $` + itoa(len(args))
    rows, err := p.db.QueryContext(ctx, q, args...)
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.LocationNode{}
    var last string
    for rows.Next() {
        var n model.LocationNode
        if err := rows.Scan(&n.ID, &n.Name, &n.Type, &n.Lat, &n.Lon, &n.Address, &n.Active); err != nil { return nil, "", err }
        out = append(out, n)
        last = n.ID
    }
    var next string
    if len(out) == limit { next = last }
    return out, next, nil
}

func (p *Postgres) PatchLocation(ctx context.Context, id string, in model.LocationPatch) (model.LocationNode, error) {
    n, err := p.GetLocation(ctx, id)
    if err != nil { return model.LocationNode{}, err }
    if in.Name != nil { n.Name = *in.Name }
    if in.Type != nil { n.Type = *in.Type }
    if in.Lat != nil { n.Lat = *in.Lat }
    if in.Lon != nil { n.Lon = *in.Lon }
    if in.Address != nil { n.Address = *in.Address }
    if in.Active != nil { n.Active = *in.Active }
    _, err = p.db.ExecContext(ctx, `UPDATE locations SET name=$2, type=$3, lat=$4, lon=$5, address=$6, active=$7 WHERE id=$1`,
        id, n.Name, n.Type, n.Lat, n.Lon, n.Address, n.Active)
    if err != nil { return model.LocationNode{}, err }
    return n, nil
}

func (p *Postgres) DeleteLocation(ctx context.Context, id string) error {
    res, err := p.db.ExecContext(ctx, `DELETE FROM locations WHERE id=$1`, id)
    if err != nil { return err }
    if n, _ := res.RowsAffected(); n == 0 { return ErrNotFound }
    return nil
}

func (p *Postgres) ActiveLocations(ctx context.Context) ([]model.LocationNode, error) {
    rows, err := p.db.QueryContext(ctx, `SELECT id::text, name, type, lat, lon, address, active FROM locations WHERE active ORDER BY id`)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []model.LocationNode{}
    for rows.Next() {
        var n model.LocationNode
        if err := rows.Scan(&n.ID, &n.Name, &n.Type, &n.Lat, &n.Lon, &n.Address, &n.Active); err != nil { return nil, err }
        out = append(out, n)
    }
    return out, rows.Err()
}

// Route edges

func (p *Postgres) CreateEdge(ctx context.Context, in model.RouteEdgeInput) (model.RouteEdge, error) {
    for _, loc := range []string{in.SourceID, in.DestinationID} {
        if _, err := p.GetLocation(ctx, loc); err != nil { return model.RouteEdge{}, err }
    }
    var existsID string
    err := p.db.QueryRowContext(ctx, `SELECT id::text FROM route_edges WHERE source_id=$1 AND destination_id=$2`, in.SourceID, in.DestinationID).Scan(&existsID)
    if err == nil { return model.RouteEdge{}, ErrDuplicateEdge }
    if !errors.Is(err, sql.ErrNoRows) { return model.RouteEdge{}, err }
    status := in.Status
    if status == "" { status = model.EdgeActive }
    e := model.RouteEdge{ID: uuid.New().String(), SourceID: in.SourceID, DestinationID: in.DestinationID, DistanceKm: in.DistanceKm, TravelTimeMinutes: in.TravelTimeMinutes, Status: status, CostPerKm: in.CostPerKm}
    _, err = p.db.ExecContext(ctx, `INSERT INTO route_edges (id, source_id, destination_id, distance_km, travel_time_minutes, status, cost_per_km) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
        e.ID, e.SourceID, e.DestinationID, e.DistanceKm, e.TravelTimeMinutes, e.Status, e.CostPerKm)
    if err != nil { return model.RouteEdge{}, err }
    return e, nil
}

func (p *Postgres) GetEdge(ctx context.Context, id string) (model.RouteEdge, error) {
    var e model.RouteEdge
    row := p.db.QueryRowContext(ctx, `SELECT id::text, source_id::text, destination_id::text, distance_km, travel_time_minutes, status, cost_per_km FROM route_edges WHERE id=$1`, id)
    if err := row.Scan(&e.ID, &e.SourceID, &e.DestinationID, &e.DistanceKm, &e.TravelTimeMinutes, &e.Status, &e.CostPerKm); err != nil {
        if errors.Is(err, sql.ErrNoRows) { return e, ErrNotFound }
        return e, err
    }
    return e, nil
}

func (p *Postgres) ListEdges(ctx context.Context, status, sourceID, cursor string, limit int) ([]model.RouteEdge, string, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    q := `SELECT id::text, source_id::text, destination_id::text, distance_km, travel_time_minutes, status, cost_per_km FROM route_edges WHERE 1=1`
    args := []any{}
    if status != "" {
        args = append(args, status)
        q += ` AND status=$` + itoa(len(args))
    }
    if sourceID != "" {
        args = append(args, sourceID)
        q += ` AND source_id=$` + itoa(len(args))
    }
    if cursor != "" {
        args = append(args, cursor)
        q += ` AND id::text > $` + itoa(len(args))
    }
    args = append(args, limit)
    q += ` ORDER BY id LIMIT $` + itoa(len(args))
    rows, err := p.db.QueryContext(ctx, q, args...)
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.RouteEdge{}
    var last string
    for rows.Next() {
        var e model.RouteEdge
        if err := rows.Scan(&e.ID, &e.SourceID, &e.DestinationID, &e.DistanceKm, &e.TravelTimeMinutes, &e.Status, &e.CostPerKm); err != nil { return nil, "", err }
        out = append(out, e)
        last = e.ID
    }
    var next string
    if len(out) == limit { next = last }
    return out, next, nil
}

func (p *Postgres) PatchEdge(ctx context.Context, id string, in model.RouteEdgePatch) (model.RouteEdge, error) {
    e, err := p.GetEdge(ctx, id)
    if err != nil { return model.RouteEdge{}, err }
    if in.DistanceKm != nil { e.DistanceKm = *in.DistanceKm }
    if in.TravelTimeMinutes != nil { e.TravelTimeMinutes = *in.TravelTimeMinutes }
    if in.Status != nil { e.Status = *in.Status }
    if in.CostPerKm != nil { e.CostPerKm = *in.CostPerKm }
    _, err = p.db.ExecContext(ctx, `UPDATE route_edges SET distance_km=$2, travel_time_minutes=$3, status=$4, cost_per_km=$5 WHERE id=$1`,
        id, e.DistanceKm, e.TravelTimeMinutes, e.Status, e.CostPerKm)
    if err != nil { return model.RouteEdge{}, err }
    return e, nil
}

func (p *Postgres) DeleteEdge(ctx context.Context, id string) error {
    res, err := p.db.ExecContext(ctx, `DELETE FROM route_edges WHERE id=$1`, id)
    if err != nil { return err }
    if n, _ := res.RowsAffected(); n == 0 { return ErrNotFound }
    return nil
}

func (p *Postgres) AllEdges(ctx context.Context) ([]model.RouteEdge, error) {
    rows, err := p.db.QueryContext(ctx, `SELECT id::text, source_id::text, destination_id::text, distance_km, travel_time_minutes, status, cost_per_km FROM route_edges ORDER BY id`)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []model.RouteEdge{}
    for rows.Next() {
        var e model.RouteEdge
        if err := rows.Scan(&e.ID, &e.SourceID, &e.DestinationID, &e.DistanceKm, &e.TravelTimeMinutes, &e.Status, &e.CostPerKm); err != nil { return nil, err }
        out = append(out, e)
    }
    return out, rows.Err()
}

// Shipments

func (p *Postgres) CreateShipment(ctx context.Context, in model.ShipmentInput) (model.Shipment, error) {
    for _, loc := range []string{in.OriginID, in.DestinationID} {
        if _, err := p.GetLocation(ctx, loc); err != nil { return model.Shipment{}, err }
    }
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
    _, err := p.db.ExecContext(ctx, `INSERT INTO shipments (id, tracking_id, origin_id, current_location_id, destination_id, weight_kg, description, state, created_at, updated_at, delivered_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
        sh.ID, sh.TrackingID, sh.OriginID, sh.CurrentLocationID, sh.DestinationID, sh.WeightKg, sh.Description, sh.State, sh.CreatedAt, sh.UpdatedAt, sh.DeliveredAt)
    if err != nil { return model.Shipment{}, err }
    return sh, nil
}

func (p *Postgres) scanShipment(row *sql.Row) (model.Shipment, error) {
    var sh model.Shipment
    if err := row.Scan(&sh.ID, &sh.TrackingID, &sh.OriginID, &sh.CurrentLocationID, &sh.DestinationID, &sh.WeightKg, &sh.Description, &sh.State, &sh.CreatedAt, &sh.UpdatedAt, &sh.DeliveredAt); err != nil {
        if errors.Is(err, sql.ErrNoRows) { return sh, ErrNotFound }
        return sh, err
    }
    return sh, nil
}

const shipmentCols = `id::text, tracking_id, origin_id::text, current_location_id::text, destination_id::text, weight_kg, description, state, created_at, updated_at, delivered_at`

func (p *Postgres) GetShipment(ctx context.Context, id string) (model.Shipment, error) {
    return p.scanShipment(p.db.QueryRowContext(ctx, `SELECT `+shipmentCols+` FROM shipments WHERE id=$1`, id))
}

func (p *Postgres) GetShipmentByTracking(ctx context.Context, trackingID string) (model.Shipment, error) {
    return p.scanShipment(p.db.QueryRowContext(ctx, `SELECT `+shipmentCols+` FROM shipments WHERE tracking_id=$1`, trackingID))
}

func (p *Postgres) ListShipments(ctx context.Context, state, cursor string, limit int) ([]model.Shipment, string, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    q := `SELECT ` + shipmentCols + ` FROM shipments WHERE 1=1`
    args := []any{}
    if state != "" {
        args = append(args, state)
        q += ` AND state=$` + itoa(len(args))
    }
    if cursor != "" {
        args = append(args, cursor)
        q += ` AND id::text > $` + itoa(len(args))
    }
    args = append(args, limit)
    q += ` ORDER BY id LIMIT $` + itoa(len(args))
    rows, err := p.db.QueryContext(ctx, q, args...)
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.Shipment{}
    var last string
    for rows.Next() {
        var sh model.Shipment
        if err := rows.Scan(&sh.ID, &sh.TrackingID, &sh.OriginID, &sh.CurrentLocationID, &sh.DestinationID, &sh.WeightKg, &sh.Description, &sh.State, &sh.CreatedAt, &sh.UpdatedAt, &sh.DeliveredAt); err != nil { return nil, "", err }
        out = append(out, sh)
        last = sh.ID
    }
    var next string
    if len(out) == limit { next = last }
    return out, next, nil
}

func (p *Postgres) UpdateShipment(ctx context.Context, sh model.Shipment) (model.Shipment, error) {
    sh.UpdatedAt = nowRFC3339()
    res, err := p.db.ExecContext(ctx, `UPDATE shipments SET current_location_id=$2, state=$3, updated_at=$4, delivered_at=$5 WHERE id=$1`,
        sh.ID, sh.CurrentLocationID, sh.State, sh.UpdatedAt, sh.DeliveredAt)
    if err != nil { return model.Shipment{}, err }
    if n, _ := res.RowsAffected(); n == 0 { return model.Shipment{}, ErrNotFound }
    return sh, nil
}

// Subscriptions

func (p *Postgres) CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error) {
    s := model.Subscription{ID: uuid.New().String(), URL: req.URL, Events: req.Events, Secret: req.Secret}
    _, err := p.db.ExecContext(ctx, `INSERT INTO subscriptions (id, url, events, secret) VALUES ($1,$2,$3,$4)`,
        s.ID, s.URL, toJSON(s.Events), s.Secret)
    if err != nil { return model.Subscription{}, err }
    return s, nil
}

func (p *Postgres) GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error) {
    rows, err := p.db.QueryContext(ctx, `SELECT id::text, url, events, secret FROM subscriptions WHERE events ? $1`, eventType)
    if err != nil { return nil, err }
    defer rows.Close()
    var out []model.Subscription
    for rows.Next() {
        s, err := scanSubscription(rows)
        if err != nil { return nil, err }
        out = append(out, s)
    }
    return out, rows.Err()
}

func (p *Postgres) ListSubscriptions(ctx context.Context, cursor string, limit int) ([]model.Subscription, string, error) {
    if limit <= 0 || limit > 500 { limit = 100 }
    var rows *sql.Rows
    var err error
    if cursor != "" {
        rows, err = p.db.QueryContext(ctx, `SELECT id::text, url, events, secret FROM subscriptions WHERE id::text > $1 ORDER BY id LIMIT $2`, cursor, limit)
    } else {
        rows, err = p.db.QueryContext(ctx, `SELECT id::text, url, events, secret FROM subscriptions ORDER BY id LIMIT $1`, limit)
    }
    if err != nil { return nil, "", err }
    defer rows.Close()
    out := []model.Subscription{}
    var last string
    for rows.Next() {
        s, err := scanSubscription(rows)
        if err != nil { return nil, "", err }
        out = append(out, s)
        last = s.ID
    }
    var next string
    if len(out) == limit { next = last }
    return out, next, nil
}

func (p *Postgres) DeleteSubscription(ctx context.Context, id string) error {
    _, err := p.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id=$1`, id)
    return err
}

// Webhook deliveries

func (p *Postgres) EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error) {
    id := uuid.New().String()
    _, err := p.db.ExecContext(ctx, `INSERT INTO webhook_deliveries (id, subscription_id, event_type, url, secret, payload) VALUES ($1,$2,$3,$4,$5,$6)`,
        id, subscriptionID, eventType, url, secret, payload)
    if err != nil { return "", err }
    return id, nil
}

func (p *Postgres) FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error) {
    if limit <= 0 { limit = 50 }
    rows, err := p.db.QueryContext(ctx, `SELECT id::text, subscription_id::text, event_type, url, secret, payload, attempts, status, next_attempt_at FROM webhook_deliveries WHERE status IN ('pending','retry') AND next_attempt_at <= now() ORDER BY next_attempt_at LIMIT $1`, limit)
    if err != nil { return nil, err }
    defer rows.Close()
    out := []WebhookDelivery{}
    for rows.Next() {
        var d WebhookDelivery
        if err := rows.Scan(&d.ID, &d.SubscriptionID, &d.EventType, &d.URL, &d.Secret, &d.Payload, &d.Attempts, &d.Status, &d.NextAttemptAt); err != nil { return nil, err }
        out = append(out, d)
    }
    return out, rows.Err()
}

func (p *Postgres) MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int) error {
    if success {
        _, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET attempts=attempts+1, status='delivered', last_status_code=$2, updated_at=now() WHERE id=$1`, id, responseCode)
        return err
    }
    next := time.Now().Add(1 * time.Minute)
    if nextAttemptAt != nil { next = *nextAttemptAt }
    _, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET attempts=attempts+1, status='retry', next_attempt_at=$2, last_error=$3, last_status_code=$4, updated_at=now() WHERE id=$1`,
        id, next, lastError, responseCode)
    return err
}

func (p *Postgres) FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int) error {
    _, err := p.db.ExecContext(ctx, `UPDATE webhook_deliveries SET status='failed', last_error=$2, last_status_code=$3, updated_at=now() WHERE id=$1`, id, lastError, responseCode)
    return err
}

// helpers

func itoa(n int) string {
    return fmt.Sprintf("%d", n)
}

func toJSON(v any) []byte {
    b, _ := json.Marshal(v)
    return b
}

func scanSubscription(rows *sql.Rows) (model.Subscription, error) {
    var s model.Subscription
    var events []byte
    if err := rows.Scan(&s.ID, &s.URL, &events, &s.Secret); err != nil { return s, err }
    _ = json.Unmarshal(events, &s.Events)
    return s, nil
}
