package model

// Core domain records for the logistics network. Locations and route
// edges are owned by the store; the graph engine reads point-in-time
// snapshots of them and never writes back.

const (
    LocationWarehouse = "warehouse"
    LocationHub       = "hub"
    LocationCustomer  = "customer"
)

const (
    EdgeActive = "active"
    EdgeClosed = "closed"
    EdgeSlow   = "slow"
)

// LocationNode is a point in the network: warehouse, hub, or customer site.
type LocationNode struct {
    ID      string  `json:"id"`
    Name    string  `json:"name"`
    Type    string  `json:"type"`
    Lat     float64 `json:"lat"`
    Lon     float64 `json:"lon"`
    Address string  `json:"address,omitempty"`
    Active  bool    `json:"active"`
}

// RouteEdge is a directed connection between two locations. At most one
// edge exists per ordered (source, destination) pair; A→B implies nothing
// about B→A.
type RouteEdge struct {
    ID                string  `json:"id"`
    SourceID          string  `json:"sourceId"`
    DestinationID     string  `json:"destinationId"`
    DistanceKm        float64 `json:"distance_km"`
    TravelTimeMinutes int     `json:"travel_time_minutes"`
    Status            string  `json:"status"`
    CostPerKm         float64 `json:"cost_per_km"`
}

type LocationInput struct {
    Name    string  `json:"name"`
    Type    string  `json:"type"`
    Lat     float64 `json:"lat"`
    Lon     float64 `json:"lon"`
    Address string  `json:"address,omitempty"`
    Active  *bool   `json:"active,omitempty"`
}

type LocationPatch struct {
    Name    *string  `json:"name,omitempty"`
    Type    *string  `json:"type,omitempty"`
    Lat     *float64 `json:"lat,omitempty"`
    Lon     *float64 `json:"lon,omitempty"`
    Address *string  `json:"address,omitempty"`
    Active  *bool    `json:"active,omitempty"`
}

type RouteEdgeInput struct {
    SourceID          string  `json:"sourceId"`
    DestinationID     string  `json:"destinationId"`
    DistanceKm        float64 `json:"distance_km"`
    TravelTimeMinutes int     `json:"travel_time_minutes"`
    Status            string  `json:"status,omitempty"`
    CostPerKm         float64 `json:"cost_per_km,omitempty"`
}

type RouteEdgePatch struct {
    DistanceKm        *float64 `json:"distance_km,omitempty"`
    TravelTimeMinutes *int     `json:"travel_time_minutes,omitempty"`
    Status            *string  `json:"status,omitempty"`
    CostPerKm         *float64 `json:"cost_per_km,omitempty"`
}

// RouteRequest asks for the best path between two locations.
type RouteRequest struct {
    SourceID      string `json:"sourceId"`
    DestinationID string `json:"destinationId"`
    OptimizeBy    string `json:"optimizeBy,omitempty"`
}

// Coordinates in decimal degrees.
type Coordinates struct {
    Lat float64 `json:"lat"`
    Lon float64 `json:"lon"`
}

// RouteNode is a visited vertex with its display metadata.
type RouteNode struct {
    ID          string      `json:"id"`
    Name        string      `json:"name"`
    Type        string      `json:"type"`
    Coordinates Coordinates `json:"coordinates"`
}

// RouteSegment is one traversed arc. Distance and cost are rounded to two
// decimals, time to the nearest minute; rounding is presentation-only and
// never feeds back into the search.
type RouteSegment struct {
    From        RouteNode `json:"from"`
    To          RouteNode `json:"to"`
    DistanceKm  float64   `json:"distance_km"`
    TimeMinutes float64   `json:"time_minutes"`
    Cost        float64   `json:"cost"`
    Status      string    `json:"status"`
}

type RouteSummary struct {
    TotalDistanceKm  float64 `json:"total_distance_km"`
    TotalTimeMinutes float64 `json:"total_time_minutes"`
    TotalCost        float64 `json:"total_cost"`
    Stops            int     `json:"stops"`
    OptimizedBy      string  `json:"optimized_by"`
}

// RouteResult is the payload surfaced to the HTTP/async layers.
type RouteResult struct {
    Nodes    []RouteNode    `json:"nodes"`
    Segments []RouteSegment `json:"segments"`
    Summary  RouteSummary   `json:"summary"`
}

// ReachableDestination pairs a vertex with its best travel time.
type ReachableDestination struct {
    ID                   string  `json:"id"`
    Name                 string  `json:"name"`
    Type                 string  `json:"type"`
    EstimatedTimeMinutes float64 `json:"estimated_time_minutes"`
}

// ReachabilityResult lists every destination reachable from Source,
// excluding Source itself.
type ReachabilityResult struct {
    Source       RouteNode              `json:"source"`
    Destinations []ReachableDestination `json:"reachable_destinations"`
    Count        int                    `json:"count"`
}

// Shipment states; transition rules live in internal/shipment.
const (
    ShipmentPending        = "pending"
    ShipmentInTransit      = "in_transit"
    ShipmentOutForDelivery = "out_for_delivery"
    ShipmentDelivered      = "delivered"
    ShipmentCancelled      = "cancelled"
)

// Shipment is a package moving through the network.
type Shipment struct {
    ID                string  `json:"id"`
    TrackingID        string  `json:"trackingId"`
    OriginID          string  `json:"originId"`
    CurrentLocationID string  `json:"currentLocationId"`
    DestinationID     string  `json:"destinationId"`
    WeightKg          float64 `json:"weight_kg"`
    Description       string  `json:"description,omitempty"`
    State             string  `json:"state"`
    CreatedAt         string  `json:"createdAt,omitempty"`
    UpdatedAt         string  `json:"updatedAt,omitempty"`
    DeliveredAt       string  `json:"deliveredAt,omitempty"`
}

type ShipmentInput struct {
    OriginID      string  `json:"originId"`
    DestinationID string  `json:"destinationId"`
    WeightKg      float64 `json:"weight_kg"`
    Description   string  `json:"description,omitempty"`
}

// TransitionRequest drives a shipment lifecycle action.
type TransitionRequest struct {
    Action        string `json:"action"`
    NewLocationID string `json:"newLocationId,omitempty"`
}

// SubscriptionRequest registers a webhook endpoint for event types.
type SubscriptionRequest struct {
    URL    string   `json:"url"`
    Events []string `json:"events"`
    Secret string   `json:"secret"`
}

type Subscription struct {
    ID     string   `json:"id"`
    URL    string   `json:"url"`
    Events []string `json:"events"`
    Secret string   `json:"secret,omitempty"`
}
