package ws

import (
	"context"
	"encoding/json"
	"testing"

	"taxitrack/internal/domain/user"
	"taxitrack/internal/general/contracts"
)

func TestPublishFansOutToGroup(t *testing.T) {
	r := testRegistry()
	d := NewDispatcher(r, r.logger, nil)
	ctx := context.Background()

	d1 := &fakeConn{}
	d2 := &fakeConn{}
	c1 := &fakeConn{}

	driver1 := r.Register(d1, "driver-1", user.RoleDriver)
	driver2 := r.Register(d2, "driver-2", user.RoleDriver)
	client1 := r.Register(c1, "client-1", user.RoleClient)
	defer r.Unregister(driver1)
	defer r.Unregister(driver2)
	defer r.Unregister(client1)

	d.Publish(ctx, GroupDrivers, contracts.NewRideRequest{
		Type:       contracts.EventNewRideRequest,
		RideID:     "ride-1",
		ClientName: "Alice",
		Price:      1500,
	})

	waitFor(t, func() bool { return len(d1.received()) == 1 && len(d2.received()) == 1 })

	var got contracts.NewRideRequest
	if err := json.Unmarshal(d1.received()[0], &got); err != nil {
		t.Fatalf("decode delivered payload: %v", err)
	}
	if got.Type != contracts.EventNewRideRequest || got.RideID != "ride-1" {
		t.Errorf("delivered event = %+v", got)
	}

	if len(c1.received()) != 0 {
		t.Error("clients must not receive driver announcements")
	}
}

func TestPublishToUserGroupIsDirect(t *testing.T) {
	r := testRegistry()
	d := NewDispatcher(r, r.logger, nil)
	ctx := context.Background()

	target := &fakeConn{}
	other := &fakeConn{}

	tc := r.Register(target, "client-1", user.RoleClient)
	oc := r.Register(other, "client-2", user.RoleClient)
	defer r.Unregister(tc)
	defer r.Unregister(oc)

	d.Publish(ctx, UserGroup("client-1"), contracts.RideAccepted{
		Type:   contracts.EventRideAccepted,
		RideID: "ride-1",
	})

	waitFor(t, func() bool { return len(target.received()) == 1 })

	if len(other.received()) != 0 {
		t.Error("user group delivery must not leak to other clients")
	}
}

func TestPublishToEmptyGroupIsSilent(t *testing.T) {
	r := testRegistry()
	d := NewDispatcher(r, r.logger, nil)

	// nobody connected; must not panic or error
	d.Publish(context.Background(), GroupDrivers, contracts.StatusChanged{
		Type:   contracts.EventStatusChanged,
		RideID: "ride-1",
		Status: "cancelled",
	})
}

func TestNoRetroactiveDelivery(t *testing.T) {
	r := testRegistry()
	d := NewDispatcher(r, r.logger, nil)
	ctx := context.Background()

	d.Publish(ctx, GroupDrivers, contracts.NewRideRequest{
		Type:   contracts.EventNewRideRequest,
		RideID: "ride-before",
	})

	late := &fakeConn{}
	c := r.Register(late, "driver-late", user.RoleDriver)
	defer r.Unregister(c)

	d.Publish(ctx, GroupDrivers, contracts.NewRideRequest{
		Type:   contracts.EventNewRideRequest,
		RideID: "ride-after",
	})

	waitFor(t, func() bool { return len(late.received()) == 1 })

	var got contracts.NewRideRequest
	if err := json.Unmarshal(late.received()[0], &got); err != nil {
		t.Fatalf("decode delivered payload: %v", err)
	}
	if got.RideID != "ride-after" {
		t.Errorf("late joiner received %q, must only see events published after joining", got.RideID)
	}
}
