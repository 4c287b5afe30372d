package shipment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"logiroute/internal/model"
)

func base(state string) model.Shipment {
	return model.Shipment{
		ID:                "ship-1",
		TrackingID:        "SHP-TEST00000001",
		OriginID:          "loc-a",
		CurrentLocationID: "loc-a",
		DestinationID:     "loc-z",
		State:             state,
	}
}

func TestApplyHappyPath(t *testing.T) {
	sh := base(model.ShipmentPending)

	sh, err := Apply(sh, model.TransitionRequest{Action: ActionStartTransit})
	require.NoError(t, err)
	require.Equal(t, model.ShipmentInTransit, sh.State)

	sh, err = Apply(sh, model.TransitionRequest{Action: ActionMoveToLocation, NewLocationID: "loc-m"})
	require.NoError(t, err)
	require.Equal(t, model.ShipmentInTransit, sh.State)
	require.Equal(t, "loc-m", sh.CurrentLocationID)

	sh, err = Apply(sh, model.TransitionRequest{Action: ActionStartDelivery})
	require.NoError(t, err)
	require.Equal(t, model.ShipmentOutForDelivery, sh.State)

	sh, err = Apply(sh, model.TransitionRequest{Action: ActionCompleteDelivery})
	require.NoError(t, err)
	require.Equal(t, model.ShipmentDelivered, sh.State)
	require.Equal(t, "loc-z", sh.CurrentLocationID)
	require.NotEmpty(t, sh.DeliveredAt)
}

func TestApplyCancel(t *testing.T) {
	for _, state := range []string{model.ShipmentPending, model.ShipmentInTransit} {
		sh, err := Apply(base(state), model.TransitionRequest{Action: ActionCancel})
		require.NoError(t, err)
		require.Equal(t, model.ShipmentCancelled, sh.State)
	}
	for _, state := range []string{model.ShipmentOutForDelivery, model.ShipmentDelivered, model.ShipmentCancelled} {
		_, err := Apply(base(state), model.TransitionRequest{Action: ActionCancel})
		var te *TransitionError
		require.ErrorAs(t, err, &te)
		require.Equal(t, state, te.State)
	}
}

func TestApplyRejectsIllegalTransitions(t *testing.T) {
	cases := []struct {
		state  string
		action string
	}{
		{model.ShipmentPending, ActionStartDelivery},
		{model.ShipmentPending, ActionCompleteDelivery},
		{model.ShipmentPending, ActionMoveToLocation},
		{model.ShipmentInTransit, ActionStartTransit},
		{model.ShipmentInTransit, ActionCompleteDelivery},
		{model.ShipmentOutForDelivery, ActionStartTransit},
		{model.ShipmentDelivered, ActionStartDelivery},
		{model.ShipmentCancelled, ActionStartTransit},
	}
	for _, tc := range cases {
		sh := base(tc.state)
		out, err := Apply(sh, model.TransitionRequest{Action: tc.action, NewLocationID: "loc-m"})
		var te *TransitionError
		require.ErrorAs(t, err, &te, "state=%s action=%s", tc.state, tc.action)
		require.Equal(t, sh.State, out.State)
	}
}

func TestApplyMoveRequiresLocation(t *testing.T) {
	_, err := Apply(base(model.ShipmentInTransit), model.TransitionRequest{Action: ActionMoveToLocation})
	require.ErrorIs(t, err, ErrMissingLocation)
}

func TestApplyUnknownAction(t *testing.T) {
	_, err := Apply(base(model.ShipmentPending), model.TransitionRequest{Action: "teleport"})
	var te *TransitionError
	require.ErrorAs(t, err, &te)
}

func TestNewTrackingID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewTrackingID()
		require.True(t, strings.HasPrefix(id, "SHP-"), id)
		require.Len(t, id, 16)
		require.Equal(t, strings.ToUpper(id), id)
		require.False(t, seen[id], "duplicate tracking id %s", id)
		seen[id] = true
	}
}
