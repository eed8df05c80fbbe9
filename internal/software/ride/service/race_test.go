package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"taxitrack/internal/domain/ride"
	"taxitrack/internal/ports"
)

// Run these with -race.

func TestConcurrentAcceptSameRide(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	r := mustRequestRide(t, svc, "client-race")

	const drivers = 8
	var wg sync.WaitGroup
	errs := make(chan error, drivers)

	for i := 0; i < drivers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.AcceptRide(ctx, driverName(n), r.ID)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ride.ErrRideNoLongerAvailable) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 winning accept, got %d", success)
	}

	final, err := store.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if final.Status != ride.StatusAccepted || final.DriverID == nil {
		t.Fatalf("final state: status=%s driver=%v", final.Status, final.DriverID)
	}
}

func TestConcurrentRequestSameClient(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RequestRide(ctx, ports.RequestRideInput{
				ClientID:    "client-race",
				Pickup:      ride.Location{Address: "1 Main St", Lat: 41.2995, Long: 69.2401},
				Destination: ride.Location{Address: "Airport", Lat: 41.2579, Long: 69.2817},
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	success := 0
	for err := range errs {
		if err == nil {
			success++
			continue
		}
		if !errors.Is(err, ride.ErrConflictActiveRide) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if success != 1 {
		t.Fatalf("expected exactly 1 created ride, got %d", success)
	}
}

func TestConcurrentAcceptVsCancel(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	r := mustRequestRide(t, svc, "client-race")

	var wg sync.WaitGroup
	errs := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.AcceptRide(ctx, "driver-1", r.ID)
		errs <- err
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.CancelRide(ctx, "client-race", r.ID)
		errs <- err
	}()

	wg.Wait()
	close(errs)

	for err := range errs {
		if err == nil {
			continue
		}
		// the accept loses to a finished cancel; the cancel loses its
		// compare-and-swap when the accept lands between its read and write
		if !errors.Is(err, ride.ErrRideNoLongerAvailable) && !errors.Is(err, ride.ErrCannotCancel) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	final, err := store.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("get ride: %v", err)
	}
	if final.Status != ride.StatusCancelled && final.Status != ride.StatusAccepted {
		t.Fatalf("final status = %s, want cancelled or accepted", final.Status)
	}
}

func driverName(n int) string {
	return "driver-" + string(rune('a'+n))
}
