package ride

import (
	"errors"
	"math"
	"testing"
)

var (
	testPickup      = Location{Address: "1 Main St", Lat: 41.2995, Long: 69.2401}
	testDestination = Location{Address: "Airport", Lat: 41.2579, Long: 69.2817}
)

func TestNewRide(t *testing.T) {
	r, err := NewRide("client-1", testPickup, testDestination)
	if err != nil {
		t.Fatalf("NewRide: %v", err)
	}

	if r.Status != StatusPending {
		t.Errorf("new ride status = %s, want %s", r.Status, StatusPending)
	}
	if r.DriverID != nil {
		t.Error("new ride must not have a driver")
	}
	if r.CompletedAt != nil {
		t.Error("new ride must not have a completion time")
	}
	if r.Price <= 500 {
		t.Errorf("price = %v, must exceed the base fare for a non-zero distance", r.Price)
	}
	if r.CreatedAt.IsZero() || !r.CreatedAt.Equal(r.UpdatedAt) {
		t.Error("created_at and updated_at must be set and equal at creation")
	}
}

func TestNewRideValidation(t *testing.T) {
	cases := []struct {
		name        string
		clientID    string
		pickup      Location
		destination Location
		wantErr     error
	}{
		{"blank client", "  ", testPickup, testDestination, ErrClientRequired},
		{"missing pickup address", "c1", Location{Lat: 41, Long: 69}, testDestination, ErrAddressRequired},
		{"missing destination address", "c1", testPickup, Location{Lat: 41, Long: 69}, ErrAddressRequired},
		{"latitude out of range", "c1", Location{Address: "x", Lat: 91, Long: 0}, testDestination, ErrInvalidLatitude},
		{"longitude out of range", "c1", testPickup, Location{Address: "x", Lat: 0, Long: -181}, ErrInvalidLongitude},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewRide(tc.clientID, tc.pickup, tc.destination); !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestHaversineKM(t *testing.T) {
	// same point
	if d := HaversineKM(41.2995, 69.2401, 41.2995, 69.2401); d != 0 {
		t.Errorf("distance to self = %v, want 0", d)
	}

	// one degree of latitude is roughly 111 km
	d := HaversineKM(0, 0, 1, 0)
	if math.Abs(d-111.19) > 0.5 {
		t.Errorf("one degree latitude = %v km, want ~111.19", d)
	}

	// symmetric
	a := HaversineKM(41.2995, 69.2401, 41.2579, 69.2817)
	b := HaversineKM(41.2579, 69.2817, 41.2995, 69.2401)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", a, b)
	}
}

func TestEstimatePrice(t *testing.T) {
	dist := HaversineKM(testPickup.Lat, testPickup.Long, testDestination.Lat, testDestination.Long)
	want := 500 + dist*200

	got := EstimatePrice(testPickup, testDestination)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("EstimatePrice = %v, want %v", got, want)
	}

	// zero distance still costs the base fare
	if got := EstimatePrice(testPickup, testPickup); got != 500 {
		t.Errorf("zero-distance price = %v, want 500", got)
	}
}
