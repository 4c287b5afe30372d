package store

import "time"

// WebhookDelivery is a single queued attempt to notify a subscription
// endpoint. Deliveries are retried with backoff until MaxAttempts.
type WebhookDelivery struct {
    ID             string
    SubscriptionID string
    EventType      string
    URL            string
    Secret         string
    Payload        []byte
    Attempts       int
    Status         string // pending | delivered | failed
    NextAttemptAt  time.Time
    LastError      string
    LastStatusCode int
    CreatedAt      time.Time
    UpdatedAt      time.Time
}
