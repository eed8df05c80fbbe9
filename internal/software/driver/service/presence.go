package service

import (
	"context"
	"errors"
	"time"

	"taxitrack/internal/common/ws"
	"taxitrack/internal/general/contracts"
	"taxitrack/internal/general/logger"
)

var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// SetOnline flips the driver's availability. Going offline also evicts the
// driver from the geo index so stale positions are not served to anyone.
func (service *driverService) SetOnline(ctx context.Context, driverID string, online bool) error {
	if err := service.presence.SetOnline(ctx, driverID, online); err != nil {
		logger.Error(ctx, service.logger, "driver_status_update_failed", "Failed to update online status", err,
			"driver_id", driverID)
		return err
	}

	if !online && service.index != nil {
		if err := service.index.Remove(ctx, driverID); err != nil {
			logger.Warn(ctx, service.logger, "geo_index_remove_failed",
				"Failed to evict driver from geo index", "driver_id", driverID)
		}
	}

	logger.Info(ctx, service.logger, "driver_status_updated", "Driver availability changed",
		"driver_id", driverID, "is_online", online)

	return nil
}

// ReportLocation records the driver's position and, while the driver is on an
// active ride, relays it to the ride's client. The geo index update is
// best-effort; the durable presence row is the source of truth.
func (service *driverService) ReportLocation(ctx context.Context, driverID string, lat, long float64) error {
	if lat < -90 || lat > 90 {
		return ErrInvalidLatitude
	}
	if long < -180 || long > 180 {
		return ErrInvalidLongitude
	}

	now := time.Now().UTC()
	if err := service.presence.UpdateLocation(ctx, driverID, lat, long, now); err != nil {
		logger.Error(ctx, service.logger, "driver_location_update_failed", "Failed to persist driver location", err,
			"driver_id", driverID)
		return err
	}

	if service.index != nil {
		if err := service.index.Update(ctx, driverID, lat, long); err != nil {
			logger.Warn(ctx, service.logger, "geo_index_update_failed",
				"Failed to update geo index", "driver_id", driverID)
		}
	}

	active, err := service.rides.FindActiveByDriver(ctx, driverID)
	if err != nil {
		logger.Warn(ctx, service.logger, "active_ride_lookup_failed",
			"Skipping position relay", "driver_id", driverID)
		return nil
	}
	if active == nil {
		return nil
	}

	service.events.Publish(ctx, ws.UserGroup(active.ClientID), contracts.DriverPosition{
		Type:      contracts.EventDriverPosition,
		Lat:       lat,
		Long:      long,
		Timestamp: now,
	})

	return nil
}
