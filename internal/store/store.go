package store

import (
    "context"
    "errors"
    "time"

    "logiroute/internal/model"
)

// Store is the persistence interface used by the API server and the
// graph engine. The engine only consumes the snapshot feeds
// (ActiveLocations, AllEdges); everything else belongs to the boundary.
type Store interface {
    // Locations
    CreateLocation(ctx context.Context, in model.LocationInput) (model.LocationNode, error)
    GetLocation(ctx context.Context, id string) (model.LocationNode, error)
    ListLocations(ctx context.Context, typ string, activeOnly bool, cursor string, limit int) ([]model.LocationNode, string, error)
    PatchLocation(ctx context.Context, id string, in model.LocationPatch) (model.LocationNode, error)
    DeleteLocation(ctx context.Context, id string) error
    ActiveLocations(ctx context.Context) ([]model.LocationNode, error)

    // Route edges
    CreateEdge(ctx context.Context, in model.RouteEdgeInput) (model.RouteEdge, error)
    GetEdge(ctx context.Context, id string) (model.RouteEdge, error)
    ListEdges(ctx context.Context, status, sourceID, cursor string, limit int) ([]model.RouteEdge, string, error)
    PatchEdge(ctx context.Context, id string, in model.RouteEdgePatch) (model.RouteEdge, error)
    DeleteEdge(ctx context.Context, id string) error
    AllEdges(ctx context.Context) ([]model.RouteEdge, error)

    // Shipments
    CreateShipment(ctx context.Context, in model.ShipmentInput) (model.Shipment, error)
    GetShipment(ctx context.Context, id string) (model.Shipment, error)
    GetShipmentByTracking(ctx context.Context, trackingID string) (model.Shipment, error)
    ListShipments(ctx context.Context, state, cursor string, limit int) ([]model.Shipment, string, error)
    UpdateShipment(ctx context.Context, sh model.Shipment) (model.Shipment, error)

    // Webhook subscriptions and delivery queue
    CreateSubscription(ctx context.Context, req model.SubscriptionRequest) (model.Subscription, error)
    GetSubscriptionsForEvent(ctx context.Context, eventType string) ([]model.Subscription, error)
    ListSubscriptions(ctx context.Context, cursor string, limit int) ([]model.Subscription, string, error)
    DeleteSubscription(ctx context.Context, id string) error
    EnqueueWebhook(ctx context.Context, subscriptionID, eventType, url, secret string, payload []byte) (string, error)
    FetchDueWebhookDeliveries(ctx context.Context, limit int) ([]WebhookDelivery, error)
    MarkWebhookDelivery(ctx context.Context, id string, success bool, nextAttemptAt *time.Time, lastError string, responseCode int) error
    FailWebhookDelivery(ctx context.Context, id string, lastError string, responseCode int) error
}

var ErrNotFound = errors.New("not found")

// ErrDuplicateEdge rejects a second edge for an ordered (source,
// destination) pair.
var ErrDuplicateEdge = errors.New("route edge already exists for this source and destination")
