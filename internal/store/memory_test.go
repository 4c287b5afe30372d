package store

import (
    "context"
    "errors"
    "strings"
    "testing"
    "time"

    "logiroute/internal/model"
)

func seedLocation(t *testing.T, m *Memory, name, typ string, active bool) model.LocationNode {
    t.Helper()
    n, err := m.CreateLocation(context.Background(), model.LocationInput{Name: name, Type: typ, Active: &active})
    if err != nil { t.Fatalf("CreateLocation: %v", err) }
    return n
}

func TestMemoryLocationCRUD(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()

    n := seedLocation(t, m, "Central Hub", model.LocationHub, true)
    got, err := m.GetLocation(ctx, n.ID)
    if err != nil { t.Fatalf("GetLocation: %v", err) }
    if got.Name != "Central Hub" || !got.Active { t.Fatalf("unexpected location: %+v", got) }

    name := "Renamed Hub"
    active := false
    got, err = m.PatchLocation(ctx, n.ID, model.LocationPatch{Name: &name, Active: &active})
    if err != nil { t.Fatalf("PatchLocation: %v", err) }
    if got.Name != "Renamed Hub" || got.Active { t.Fatalf("patch not applied: %+v", got) }

    if err := m.DeleteLocation(ctx, n.ID); err != nil { t.Fatalf("DeleteLocation: %v", err) }
    if _, err := m.GetLocation(ctx, n.ID); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
    if err := m.DeleteLocation(ctx, n.ID); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound on second delete, got %v", err)
    }
}

func TestMemoryListLocationsFiltersAndPaginates(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()
    seedLocation(t, m, "W1", model.LocationWarehouse, true)
    seedLocation(t, m, "H1", model.LocationHub, true)
    seedLocation(t, m, "H2", model.LocationHub, false)
    seedLocation(t, m, "C1", model.LocationCustomer, true)

    hubs, _, err := m.ListLocations(ctx, model.LocationHub, false, "", 0)
    if err != nil { t.Fatalf("ListLocations: %v", err) }
    if len(hubs) != 2 { t.Fatalf("expected 2 hubs, got %d", len(hubs)) }

    activeHubs, _, err := m.ListLocations(ctx, model.LocationHub, true, "", 0)
    if err != nil { t.Fatalf("ListLocations active: %v", err) }
    if len(activeHubs) != 1 || activeHubs[0].Name != "H1" {
        t.Fatalf("expected only H1, got %+v", activeHubs)
    }

    page1, next, err := m.ListLocations(ctx, "", false, "", 2)
    if err != nil { t.Fatalf("page1: %v", err) }
    if len(page1) != 2 || next == "" { t.Fatalf("expected full page with cursor, got %d %q", len(page1), next) }
    page2, _, err := m.ListLocations(ctx, "", false, next, 2)
    if err != nil { t.Fatalf("page2: %v", err) }
    if len(page2) != 2 { t.Fatalf("expected 2 on page2, got %d", len(page2)) }
    if page1[1].ID == page2[0].ID { t.Fatalf("pages overlap at %s", page2[0].ID) }
}

func TestMemoryEdgeUniquePair(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()
    a := seedLocation(t, m, "A", model.LocationWarehouse, true)
    b := seedLocation(t, m, "B", model.LocationHub, true)

    e, err := m.CreateEdge(ctx, model.RouteEdgeInput{SourceID: a.ID, DestinationID: b.ID, DistanceKm: 10, TravelTimeMinutes: 10, CostPerKm: 2})
    if err != nil { t.Fatalf("CreateEdge: %v", err) }
    if e.Status != model.EdgeActive { t.Fatalf("expected default active status, got %q", e.Status) }

    if _, err := m.CreateEdge(ctx, model.RouteEdgeInput{SourceID: a.ID, DestinationID: b.ID, DistanceKm: 99, TravelTimeMinutes: 99}); !errors.Is(err, ErrDuplicateEdge) {
        t.Fatalf("expected ErrDuplicateEdge, got %v", err)
    }
    // Reverse direction is a distinct pair.
    if _, err := m.CreateEdge(ctx, model.RouteEdgeInput{SourceID: b.ID, DestinationID: a.ID, DistanceKm: 10, TravelTimeMinutes: 10}); err != nil {
        t.Fatalf("reverse edge: %v", err)
    }
    // Deleting frees the pair for reuse.
    if err := m.DeleteEdge(ctx, e.ID); err != nil { t.Fatalf("DeleteEdge: %v", err) }
    if _, err := m.CreateEdge(ctx, model.RouteEdgeInput{SourceID: a.ID, DestinationID: b.ID, DistanceKm: 5, TravelTimeMinutes: 5}); err != nil {
        t.Fatalf("recreate after delete: %v", err)
    }
}

func TestMemoryEdgeRequiresEndpoints(t *testing.T) {
    m := NewMemory()
    a := seedLocation(t, m, "A", model.LocationWarehouse, true)
    if _, err := m.CreateEdge(context.Background(), model.RouteEdgeInput{SourceID: a.ID, DestinationID: "missing"}); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound, got %v", err)
    }
}

func TestMemorySnapshotFeeds(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()
    a := seedLocation(t, m, "A", model.LocationWarehouse, true)
    b := seedLocation(t, m, "B", model.LocationHub, true)
    seedLocation(t, m, "Dark", model.LocationHub, false)
    if _, err := m.CreateEdge(ctx, model.RouteEdgeInput{SourceID: a.ID, DestinationID: b.ID, DistanceKm: 1, TravelTimeMinutes: 1}); err != nil {
        t.Fatalf("CreateEdge: %v", err)
    }

    locs, err := m.ActiveLocations(ctx)
    if err != nil { t.Fatalf("ActiveLocations: %v", err) }
    if len(locs) != 2 { t.Fatalf("expected 2 active locations, got %d", len(locs)) }
    edges, err := m.AllEdges(ctx)
    if err != nil { t.Fatalf("AllEdges: %v", err) }
    if len(edges) != 1 { t.Fatalf("expected 1 edge, got %d", len(edges)) }
}

func TestMemoryShipmentLifecyclePersistence(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()
    a := seedLocation(t, m, "A", model.LocationWarehouse, true)
    z := seedLocation(t, m, "Z", model.LocationCustomer, true)

    sh, err := m.CreateShipment(ctx, model.ShipmentInput{OriginID: a.ID, DestinationID: z.ID, WeightKg: 2.5})
    if err != nil { t.Fatalf("CreateShipment: %v", err) }
    if sh.State != model.ShipmentPending { t.Fatalf("expected pending, got %q", sh.State) }
    if !strings.HasPrefix(sh.TrackingID, "SHP-") { t.Fatalf("bad tracking id %q", sh.TrackingID) }
    if sh.CurrentLocationID != a.ID { t.Fatalf("expected current=origin, got %q", sh.CurrentLocationID) }

    byTrack, err := m.GetShipmentByTracking(ctx, sh.TrackingID)
    if err != nil { t.Fatalf("GetShipmentByTracking: %v", err) }
    if byTrack.ID != sh.ID { t.Fatalf("tracking lookup mismatch") }

    sh.State = model.ShipmentInTransit
    updated, err := m.UpdateShipment(ctx, sh)
    if err != nil { t.Fatalf("UpdateShipment: %v", err) }
    if updated.State != model.ShipmentInTransit { t.Fatalf("state not persisted") }

    inTransit, _, err := m.ListShipments(ctx, model.ShipmentInTransit, "", 0)
    if err != nil { t.Fatalf("ListShipments: %v", err) }
    if len(inTransit) != 1 { t.Fatalf("expected 1 in_transit shipment, got %d", len(inTransit)) }

    if _, err := m.CreateShipment(ctx, model.ShipmentInput{OriginID: "missing", DestinationID: z.ID}); !errors.Is(err, ErrNotFound) {
        t.Fatalf("expected ErrNotFound for missing origin, got %v", err)
    }
}

func TestMemoryWebhookQueue(t *testing.T) {
    m := NewMemory()
    ctx := context.Background()

    sub, err := m.CreateSubscription(ctx, model.SubscriptionRequest{URL: "https://example.com/hook", Events: []string{"shipment.created"}, Secret: "s3cr3t"})
    if err != nil { t.Fatalf("CreateSubscription: %v", err) }

    matches, err := m.GetSubscriptionsForEvent(ctx, "shipment.created")
    if err != nil || len(matches) != 1 { t.Fatalf("expected 1 match, got %d err=%v", len(matches), err) }
    none, err := m.GetSubscriptionsForEvent(ctx, "graph.rebuilt")
    if err != nil || len(none) != 0 { t.Fatalf("expected no match, got %d err=%v", len(none), err) }

    id, err := m.EnqueueWebhook(ctx, sub.ID, "shipment.created", sub.URL, sub.Secret, []byte(`{"ok":true}`))
    if err != nil { t.Fatalf("EnqueueWebhook: %v", err) }

    due, err := m.FetchDueWebhookDeliveries(ctx, 10)
    if err != nil || len(due) != 1 { t.Fatalf("expected 1 due delivery, got %d err=%v", len(due), err) }

    // A retry pushed into the future is no longer due.
    next := time.Now().Add(time.Hour)
    if err := m.MarkWebhookDelivery(ctx, id, false, &next, "boom", 500); err != nil { t.Fatalf("MarkWebhookDelivery: %v", err) }
    due, _ = m.FetchDueWebhookDeliveries(ctx, 10)
    if len(due) != 0 { t.Fatalf("expected no due deliveries, got %d", len(due)) }

    // Success removes it from the queue permanently.
    if err := m.MarkWebhookDelivery(ctx, id, true, nil, "", 200); err != nil { t.Fatalf("mark success: %v", err) }
    due, _ = m.FetchDueWebhookDeliveries(ctx, 10)
    if len(due) != 0 { t.Fatalf("delivered item still due") }

    if err := m.DeleteSubscription(ctx, sub.ID); err != nil { t.Fatalf("DeleteSubscription: %v", err) }
    matches, _ = m.GetSubscriptionsForEvent(ctx, "shipment.created")
    if len(matches) != 0 { t.Fatalf("subscription not deleted") }
}
