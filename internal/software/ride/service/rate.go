package service

import (
	"context"

	"taxitrack/internal/domain/ride"
	"taxitrack/internal/general/contextx"
	"taxitrack/internal/general/logger"
)

// RateRide records the client's feedback for a completed trip. Submitting a
// new rating overwrites the previous one.
func (service *rideService) RateRide(ctx context.Context, clientID, rideID string, rating int, comment string) error {
	ctx = contextx.WithRideID(contextx.WithRequestID(ctx, generateCorrelationID()), rideID)

	if rating < 1 || rating > 5 {
		return ride.ErrInvalidRating
	}

	r, err := service.rides.GetByID(ctx, rideID)
	if err != nil {
		return err
	}
	if r.ClientID != clientID {
		return ride.ErrRideNotFound
	}

	applied, err := service.rides.SetFeedback(ctx, rideID, rating, comment)
	if err != nil {
		logger.Error(ctx, service.logger, "ride_rating_failed", "Failed to store rating", err,
			"client_id", clientID)
		return err
	}
	if !applied {
		return ride.ErrRideNotCompleted
	}

	logger.Info(ctx, service.logger, "ride_rated", "Client rated completed ride",
		"client_id", clientID, "rating", rating)

	return nil
}
