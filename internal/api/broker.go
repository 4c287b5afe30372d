package api

import (
    "sync"
)

type SSEEvent struct {
    Type string
    Data map[string]any
}

type Broker struct {
    mu   sync.Mutex
    subs map[string]map[chan SSEEvent]struct{} // trackingId -> set of channels
}

func NewBroker() *Broker {
    return &Broker{subs: map[string]map[chan SSEEvent]struct{}{}}
}

func (b *Broker) Subscribe(trackingID string) chan SSEEvent {
    ch := make(chan SSEEvent, 8)
    b.mu.Lock()
    if b.subs[trackingID] == nil { b.subs[trackingID] = map[chan SSEEvent]struct{}{} }
    b.subs[trackingID][ch] = struct{}{}
    b.mu.Unlock()
    return ch
}

func (b *Broker) Unsubscribe(trackingID string, ch chan SSEEvent) {
    b.mu.Lock()
    if m := b.subs[trackingID]; m != nil {
        delete(m, ch)
        if len(m) == 0 { delete(b.subs, trackingID) }
    }
    b.mu.Unlock()
    close(ch)
}

func (b *Broker) Publish(trackingID string, evt SSEEvent) {
    b.mu.Lock()
    m := b.subs[trackingID]
    for ch := range m {
        select { case ch <- evt: default: }
    }
    b.mu.Unlock()
}
