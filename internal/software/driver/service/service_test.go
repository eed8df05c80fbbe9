package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"taxitrack/internal/common/ws"
	"taxitrack/internal/domain/driver"
	"taxitrack/internal/domain/ride"
	"taxitrack/internal/general/contracts"
	"taxitrack/internal/ports"
)

// ----- fakes -----

type fakeRides struct {
	ports.RideStore // panic on anything the test does not stub

	active  map[string]*ride.Ride // keyed by driver id
	pending []*ride.Ride
}

func (f *fakeRides) FindActiveByDriver(ctx context.Context, driverID string) (*ride.Ride, error) {
	return f.active[driverID], nil
}

func (f *fakeRides) ListPending(ctx context.Context, limit int) ([]*ride.Ride, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

type fakePresence struct {
	mu        sync.Mutex
	online    map[string]bool
	positions map[string]*driver.Presence
	failNext  error
}

func newFakePresence() *fakePresence {
	return &fakePresence{online: make(map[string]bool), positions: make(map[string]*driver.Presence)}
}

func (f *fakePresence) SetOnline(ctx context.Context, driverID string, online bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.online[driverID] = online
	return nil
}

func (f *fakePresence) UpdateLocation(ctx context.Context, driverID string, lat, long float64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.positions[driverID] = &driver.Presence{
		DriverID:           driverID,
		CurrentLat:         &lat,
		CurrentLong:        &long,
		LastLocationUpdate: &at,
	}
	return nil
}

func (f *fakePresence) Get(ctx context.Context, driverID string) (*driver.Presence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.positions[driverID]
	if !ok {
		return &driver.Presence{DriverID: driverID}, nil
	}
	return p, nil
}

type fakeIndex struct {
	mu      sync.Mutex
	points  map[string][2]float64
	removed []string
	fail    bool
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{points: make(map[string][2]float64)}
}

func (f *fakeIndex) Update(ctx context.Context, driverID string, lat, long float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("index down")
	}
	f.points[driverID] = [2]float64{lat, long}
	return nil
}

func (f *fakeIndex) Position(ctx context.Context, driverID string) (float64, float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return 0, 0, false, errors.New("index down")
	}
	p, ok := f.points[driverID]
	if !ok {
		return 0, 0, false, nil
	}
	return p[0], p[1], true, nil
}

func (f *fakeIndex) Remove(ctx context.Context, driverID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, driverID)
	delete(f.points, driverID)
	return nil
}

type fakeDirectory struct{}

func (fakeDirectory) ClientContact(ctx context.Context, clientID string) (string, string, error) {
	return "Alice", "+998901112233", nil
}

func (fakeDirectory) DriverProfile(ctx context.Context, driverID string) (*driver.Profile, error) {
	return &driver.Profile{DriverID: driverID, Name: "Bob"}, nil
}

type recorderPublisher struct {
	mu     sync.Mutex
	groups []string
	events []contracts.Event
}

func (p *recorderPublisher) Publish(ctx context.Context, group string, event contracts.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.groups = append(p.groups, group)
	p.events = append(p.events, event)
}

func (p *recorderPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func pendingRide(id, clientID string, lat, long float64) *ride.Ride {
	return &ride.Ride{
		ID:        id,
		ClientID:  clientID,
		Status:    ride.StatusPending,
		Pickup:    ride.Location{Address: "pickup", Lat: lat, Long: long},
		Price:     1200,
		CreatedAt: time.Now().UTC(),
	}
}

// ----- tests -----

func TestReportLocationRelaysOnlyWithActiveRide(t *testing.T) {
	rides := &fakeRides{active: map[string]*ride.Ride{}}
	presence := newFakePresence()
	index := newFakeIndex()
	pub := &recorderPublisher{}
	svc := NewDriverService(testLogger(), rides, presence, fakeDirectory{}, index, pub)
	ctx := context.Background()

	// no active ride: position is stored but nothing is published
	if err := svc.ReportLocation(ctx, "d1", 41.30, 69.24); err != nil {
		t.Fatalf("report: %v", err)
	}
	if pub.count() != 0 {
		t.Fatal("position must not be relayed without an active ride")
	}
	if _, _, ok, _ := index.Position(ctx, "d1"); !ok {
		t.Error("position must land in the geo index")
	}

	// with an active ride the position goes to the ride's client
	rides.active["d1"] = &ride.Ride{ID: "ride-1", ClientID: "c1", Status: ride.StatusAccepted}
	if err := svc.ReportLocation(ctx, "d1", 41.31, 69.25); err != nil {
		t.Fatalf("report: %v", err)
	}
	if pub.count() != 1 {
		t.Fatalf("published %d events, want 1", pub.count())
	}
	if pub.groups[0] != ws.UserGroup("c1") {
		t.Errorf("relay group = %q, want the client's user group", pub.groups[0])
	}
	dp, ok := pub.events[0].(contracts.DriverPosition)
	if !ok {
		t.Fatalf("event is %T, want DriverPosition", pub.events[0])
	}
	if dp.Lat != 41.31 || dp.Long != 69.25 {
		t.Errorf("relayed position = %v,%v", dp.Lat, dp.Long)
	}
}

func TestReportLocationValidatesCoordinates(t *testing.T) {
	svc := NewDriverService(testLogger(), &fakeRides{}, newFakePresence(), fakeDirectory{}, nil, &recorderPublisher{})
	ctx := context.Background()

	if err := svc.ReportLocation(ctx, "d1", 91, 0); !errors.Is(err, ErrInvalidLatitude) {
		t.Errorf("lat 91: err = %v, want ErrInvalidLatitude", err)
	}
	if err := svc.ReportLocation(ctx, "d1", 0, 181); !errors.Is(err, ErrInvalidLongitude) {
		t.Errorf("long 181: err = %v, want ErrInvalidLongitude", err)
	}
}

func TestReportLocationToleratesIndexFailure(t *testing.T) {
	rides := &fakeRides{active: map[string]*ride.Ride{}}
	presence := newFakePresence()
	index := newFakeIndex()
	index.fail = true
	svc := NewDriverService(testLogger(), rides, presence, fakeDirectory{}, index, &recorderPublisher{})

	if err := svc.ReportLocation(context.Background(), "d1", 41.30, 69.24); err != nil {
		t.Fatalf("a broken geo index must not fail the update: %v", err)
	}
	p, _ := presence.Get(context.Background(), "d1")
	if !p.HasLocation() {
		t.Error("durable position must still be written")
	}
}

func TestSetOnlineEvictsFromIndexWhenGoingOffline(t *testing.T) {
	presence := newFakePresence()
	index := newFakeIndex()
	svc := NewDriverService(testLogger(), &fakeRides{}, presence, fakeDirectory{}, index, &recorderPublisher{})
	ctx := context.Background()

	if err := svc.SetOnline(ctx, "d1", true); err != nil {
		t.Fatalf("online: %v", err)
	}
	if len(index.removed) != 0 {
		t.Error("going online must not touch the index")
	}

	if err := svc.SetOnline(ctx, "d1", false); err != nil {
		t.Fatalf("offline: %v", err)
	}
	if len(index.removed) != 1 || index.removed[0] != "d1" {
		t.Errorf("index evictions = %v, want [d1]", index.removed)
	}
}

func TestAvailableRidesEnrichment(t *testing.T) {
	rides := &fakeRides{pending: []*ride.Ride{
		pendingRide("ride-1", "c1", 41.30, 69.24),
		pendingRide("ride-2", "c2", 41.35, 69.30),
	}}
	presence := newFakePresence()
	index := newFakeIndex()
	svc := NewDriverService(testLogger(), rides, presence, fakeDirectory{}, index, &recorderPublisher{})
	ctx := context.Background()

	// no known position: list comes back without distances
	out, err := svc.AvailableRides(ctx, "d1")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d rides, want 2", len(out))
	}
	for _, item := range out {
		if item.DistanceKM != nil {
			t.Error("distance must be nil without a driver position")
		}
		if item.ClientName != "Alice" {
			t.Errorf("client name = %q, want Alice", item.ClientName)
		}
	}

	// indexed position: distances are filled in
	if err := index.Update(ctx, "d1", 41.30, 69.24); err != nil {
		t.Fatalf("seed index: %v", err)
	}
	out, err = svc.AvailableRides(ctx, "d1")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if out[0].DistanceKM == nil || out[1].DistanceKM == nil {
		t.Fatal("distance must be set when the driver position is known")
	}

	// broken index falls back to the durable position
	index.fail = true
	if err := presence.UpdateLocation(ctx, "d1", 41.30, 69.24, time.Now()); err != nil {
		t.Fatalf("seed presence: %v", err)
	}
	out, err = svc.AvailableRides(ctx, "d1")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if out[0].DistanceKM == nil {
		t.Error("distance must fall back to the stored position")
	}
}

func TestAvailableRidesHonorsLimit(t *testing.T) {
	var many []*ride.Ride
	for i := 0; i < availableRidesLimit+5; i++ {
		many = append(many, pendingRide("ride", "c", 41.3, 69.2))
	}
	rides := &fakeRides{pending: many}
	svc := NewDriverService(testLogger(), rides, newFakePresence(), fakeDirectory{}, nil, &recorderPublisher{})

	out, err := svc.AvailableRides(context.Background(), "d1")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if len(out) != availableRidesLimit {
		t.Fatalf("got %d rides, want %d", len(out), availableRidesLimit)
	}
}
