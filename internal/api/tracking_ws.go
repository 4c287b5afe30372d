package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type wsOut struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// TrackingWSHandler handles /ws/track?trackingId=... It pushes an
// initial status snapshot, then forwards broker events for the shipment.
// A client may send {"type":"request_update"} to get a fresh snapshot.
func (s *Server) TrackingWSHandler(w http.ResponseWriter, r *http.Request) {
	trackingID := r.URL.Query().Get("trackingId")
	if trackingID == "" {
		writeProblem(w, http.StatusBadRequest, "Missing trackingId", "", r.URL.Path)
		return
	}
	sh, err := s.Store.GetShipmentByTracking(r.Context(), trackingID)
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Shipment not found", trackingID, r.URL.Path)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(1 << 20)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error { _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	writeMu := make(chan struct{}, 1)
	writeMu <- struct{}{}
	write := func(v any) error {
		<-writeMu
		defer func() { writeMu <- struct{}{} }()
		return conn.WriteJSON(v)
	}

	_ = write(wsOut{Type: "shipment.status", Data: trackingStatus(sh)})

	ch := s.Broker.Subscribe(trackingID)
	defer s.Broker.Unsubscribe(trackingID, ch)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg.Type {
			case "ping":
				_ = write(wsOut{Type: "pong"})
			case "request_update":
				cur, err := s.Store.GetShipmentByTracking(r.Context(), trackingID)
				if err != nil {
					_ = write(wsOut{Type: "error", Data: map[string]any{"message": "shipment no longer found"}})
					continue
				}
				_ = write(wsOut{Type: "shipment.status", Data: trackingStatus(cur)})
			}
		}
	}()

	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case evt := <-ch:
			if err := write(wsOut{Type: evt.Type, Data: evt.Data}); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(wsOut{Type: "heartbeat", Data: map[string]any{"ts": time.Now().UTC().Format(time.RFC3339)}}); err != nil {
				return
			}
		}
	}
}
