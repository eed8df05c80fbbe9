package service

import (
	"context"

	"taxitrack/internal/domain/ride"
	"taxitrack/internal/general/logger"
	"taxitrack/internal/ports"
)

const availableRidesLimit = 20

// AvailableRides lists pending rides for a driver to pick from, enriched with
// the client's contact details and, when the driver's position is known, the
// straight-line distance to the pickup point.
func (service *driverService) AvailableRides(ctx context.Context, driverID string) ([]ports.AvailableRide, error) {
	pending, err := service.rides.ListPending(ctx, availableRidesLimit)
	if err != nil {
		logger.Error(ctx, service.logger, "available_rides_failed", "Failed to list pending rides", err,
			"driver_id", driverID)
		return nil, err
	}

	lat, long, located := service.driverPosition(ctx, driverID)

	out := make([]ports.AvailableRide, 0, len(pending))
	for _, r := range pending {
		item := ports.AvailableRide{
			RideID:      r.ID,
			ClientName:  "Client",
			Pickup:      r.Pickup,
			Destination: r.Destination,
			Price:       r.Price,
			CreatedAt:   r.CreatedAt,
		}
		if name, phone, err := service.dir.ClientContact(ctx, r.ClientID); err == nil {
			item.ClientName = name
			item.ClientPhone = phone
		}
		if located {
			d := ride.HaversineKM(lat, long, r.Pickup.Lat, r.Pickup.Long)
			item.DistanceKM = &d
		}
		out = append(out, item)
	}

	return out, nil
}

// driverPosition prefers the geo index and falls back to the durable presence
// row. Either source may be missing; ok=false then skips distance enrichment.
func (service *driverService) driverPosition(ctx context.Context, driverID string) (lat, long float64, ok bool) {
	if service.index != nil {
		if lat, long, ok, err := service.index.Position(ctx, driverID); err == nil && ok {
			return lat, long, true
		}
	}

	presence, err := service.presence.Get(ctx, driverID)
	if err != nil || presence == nil || !presence.HasLocation() {
		return 0, 0, false
	}
	return *presence.CurrentLat, *presence.CurrentLong, true
}
