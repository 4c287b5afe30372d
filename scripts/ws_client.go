// Package main runs a demo WebSocket client for shipment tracking.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type wsOut struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func post(base, path string, body []byte) (*http.Response, error) {
	req, _ := http.NewRequest(http.MethodPost, base+path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Role", "admin")
	return http.DefaultClient.Do(req)
}

func createLocation(base, name, typ string) string {
	body := fmt.Sprintf(`{"name":%q,"type":%q,"lat":40.0,"lon":-74.0}`, name, typ)
	resp, err := post(base, "/v1/locations", []byte(body))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var loc struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loc); err != nil {
		log.Fatal(err)
	}
	return loc.ID
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	base := fmt.Sprintf("http://localhost:%s", port)

	// Seed a two-stop network and a shipment on it.
	origin := createLocation(base, "Demo Warehouse", "warehouse")
	dest := createLocation(base, "Demo Customer", "customer")
	edge := fmt.Sprintf(`{"sourceId":%q,"destinationId":%q,"distance_km":12.5,"travel_time_minutes":25,"cost_per_km":1.2}`, origin, dest)
	if _, err := post(base, "/v1/edges", []byte(edge)); err != nil {
		log.Fatal(err)
	}

	shBody := fmt.Sprintf(`{"originId":%q,"destinationId":%q,"weight_kg":3.5}`, origin, dest)
	resp, err := post(base, "/v1/shipments", []byte(shBody))
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var sh struct {
		ID         string `json:"id"`
		TrackingID string `json:"trackingId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sh); err != nil {
		log.Fatal(err)
	}
	log.Printf("Shipment %s tracking %s", sh.ID, sh.TrackingID)

	// Connect WS
	u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/ws/track", RawQuery: "trackingId=" + sh.TrackingID}
	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer func() { _ = c.Close() }()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var m wsOut
			if err := c.ReadJSON(&m); err != nil {
				log.Printf("read: %v", err)
				return
			}
			log.Printf("WS <- %s: %s", m.Type, string(m.Data))
		}
	}()

	// Trigger tracking events via transitions
	time.Sleep(500 * time.Millisecond)
	for _, action := range []string{"start_transit", "start_delivery", "complete_delivery"} {
		body := fmt.Sprintf(`{"action":%q}`, action)
		if _, err := post(base, "/v1/shipments/"+sh.ID+"/transition", []byte(body)); err != nil {
			log.Fatal(err)
		}
		time.Sleep(300 * time.Millisecond)
	}

	// Wait briefly to receive the remaining messages
	select {
	case <-time.After(2 * time.Second):
	case <-done:
	}
}
