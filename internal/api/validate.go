package api

import (
	"fmt"

	"logiroute/internal/model"
)

func validLocationType(t string) bool {
	switch t {
	case model.LocationWarehouse, model.LocationHub, model.LocationCustomer:
		return true
	}
	return false
}

func validEdgeStatus(s string) bool {
	switch s {
	case model.EdgeActive, model.EdgeClosed, model.EdgeSlow:
		return true
	}
	return false
}

func validateLocationInput(req *model.LocationInput) error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validLocationType(req.Type) {
		return fmt.Errorf("type must be one of warehouse, hub, customer")
	}
	if req.Lat < -90 || req.Lat > 90 {
		return fmt.Errorf("lat must be in [-90, 90]")
	}
	if req.Lon < -180 || req.Lon > 180 {
		return fmt.Errorf("lon must be in [-180, 180]")
	}
	return nil
}

func validateEdgeInput(req *model.RouteEdgeInput) error {
	if req.SourceID == "" || req.DestinationID == "" {
		return fmt.Errorf("sourceId and destinationId are required")
	}
	if req.SourceID == req.DestinationID {
		return fmt.Errorf("sourceId and destinationId must differ")
	}
	if req.DistanceKm <= 0 {
		return fmt.Errorf("distance_km must be > 0")
	}
	if req.TravelTimeMinutes <= 0 {
		return fmt.Errorf("travel_time_minutes must be > 0")
	}
	if req.Status != "" && !validEdgeStatus(req.Status) {
		return fmt.Errorf("status must be one of active, closed, slow")
	}
	if req.CostPerKm < 0 {
		return fmt.Errorf("cost_per_km must be >= 0")
	}
	return nil
}
