package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"taxitrack/internal/domain/ride"
	"taxitrack/internal/general/contextx"
	"taxitrack/internal/general/jwt"
	"taxitrack/internal/ports"
)

// --- Request DTO (HTTP boundary) ---

type requestRideRequest struct {
	PickupAddress        string  `json:"pickup_address"`
	PickupLatitude       float64 `json:"pickup_latitude"`
	PickupLongitude      float64 `json:"pickup_longitude"`
	DestinationAddress   string  `json:"destination_address"`
	DestinationLatitude  float64 `json:"destination_latitude"`
	DestinationLongitude float64 `json:"destination_longitude"`
}

type requestRideResponse struct {
	rideView
	DistanceKM float64 `json:"distance_km"`
}

// ----- Handler: POST /api/client/rides -----

func (handler *ClientHTTPHandler) handleRequestRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req requestRideRequest
	if !handler.decodeJSON(ctx, w, r, &req) {
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	in := ports.RequestRideInput{
		ClientID: strings.TrimSpace(claims.Subject),
		Pickup: ride.Location{
			Address: strings.TrimSpace(req.PickupAddress),
			Lat:     req.PickupLatitude,
			Long:    req.PickupLongitude,
		},
		Destination: ride.Location{
			Address: strings.TrimSpace(req.DestinationAddress),
			Lat:     req.DestinationLatitude,
			Long:    req.DestinationLongitude,
		},
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.RequestRide(ctxWithTimeout, in)
	if err != nil {
		handler.domainError(ctxWithTimeout, w, err)
		return
	}
	ctxWithTimeout = contextx.WithRideID(ctxWithTimeout, res.Ride.ID)

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, requestRideResponse{
		rideView:   toRideView(res.Ride),
		DistanceKM: res.DistanceKM,
	})
}
