package shipment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"logiroute/internal/model"
)

// Lifecycle actions accepted by Apply.
const (
	ActionStartTransit     = "start_transit"
	ActionMoveToLocation   = "move_to_location"
	ActionStartDelivery    = "start_delivery"
	ActionCompleteDelivery = "complete_delivery"
	ActionCancel           = "cancel"
)

// TransitionError reports a lifecycle action that is not allowed from
// the shipment's current state.
type TransitionError struct {
	State  string
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a shipment in state %q", e.Action, e.State)
}

// ErrMissingLocation rejects a move without a target location.
var ErrMissingLocation = fmt.Errorf("newLocationId is required for %s", ActionMoveToLocation)

// NewTrackingID returns a customer-facing tracking identifier.
func NewTrackingID() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "SHP-" + strings.ToUpper(raw[:12])
}

// Apply runs one lifecycle action against a shipment and returns the
// updated copy. The caller persists the result; Apply never touches the
// store. Allowed transitions:
//
//	pending          --start_transit-->     in_transit
//	in_transit       --move_to_location-->  in_transit (updates current location)
//	in_transit       --start_delivery-->    out_for_delivery
//	out_for_delivery --complete_delivery--> delivered
//	pending          --cancel-->            cancelled
//	in_transit       --cancel-->            cancelled
func Apply(sh model.Shipment, req model.TransitionRequest) (model.Shipment, error) {
	switch req.Action {
	case ActionStartTransit:
		if sh.State != model.ShipmentPending {
			return sh, &TransitionError{State: sh.State, Action: req.Action}
		}
		sh.State = model.ShipmentInTransit
	case ActionMoveToLocation:
		if sh.State != model.ShipmentInTransit {
			return sh, &TransitionError{State: sh.State, Action: req.Action}
		}
		if req.NewLocationID == "" {
			return sh, ErrMissingLocation
		}
		sh.CurrentLocationID = req.NewLocationID
	case ActionStartDelivery:
		if sh.State != model.ShipmentInTransit {
			return sh, &TransitionError{State: sh.State, Action: req.Action}
		}
		sh.State = model.ShipmentOutForDelivery
	case ActionCompleteDelivery:
		if sh.State != model.ShipmentOutForDelivery {
			return sh, &TransitionError{State: sh.State, Action: req.Action}
		}
		sh.State = model.ShipmentDelivered
		sh.CurrentLocationID = sh.DestinationID
		sh.DeliveredAt = time.Now().UTC().Format(time.RFC3339)
	case ActionCancel:
		if sh.State != model.ShipmentPending && sh.State != model.ShipmentInTransit {
			return sh, &TransitionError{State: sh.State, Action: req.Action}
		}
		sh.State = model.ShipmentCancelled
	default:
		return sh, &TransitionError{State: sh.State, Action: req.Action}
	}
	return sh, nil
}
