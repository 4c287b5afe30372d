package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"logiroute/internal/store"
)

// Event types emitted by the API.
const (
	EventShipmentCreated      = "shipment.created"
	EventShipmentTransitioned = "shipment.transitioned"
	EventGraphRebuilt         = "graph.rebuilt"
)

type Publisher struct {
	Store store.Store
}

func NewPublisher(s store.Store) *Publisher {
	return &Publisher{Store: s}
}

// Emit queues the event for every subscription registered for its type.
// Delivery is asynchronous; Emit never blocks the caller on the network.
func (p *Publisher) Emit(ctx context.Context, eventType string, data any) {
	subs, err := p.Store.GetSubscriptionsForEvent(ctx, eventType)
	if err != nil || len(subs) == 0 {
		return
	}
	payload := map[string]any{
		"id":   fmt.Sprintf("evt_%d", time.Now().UnixNano()),
		"type": eventType,
		"ts":   time.Now().UTC().Format(time.RFC3339),
		"data": data,
	}
	body, _ := json.Marshal(payload)
	for _, s := range subs {
		_, _ = p.Store.EnqueueWebhook(ctx, s.ID, eventType, s.URL, s.Secret, body)
	}
}
