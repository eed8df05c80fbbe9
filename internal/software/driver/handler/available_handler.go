package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"taxitrack/internal/general/jwt"
	"taxitrack/internal/ports"
)

type availableRideView struct {
	RideID      string       `json:"ride_id"`
	ClientName  string       `json:"client_name"`
	ClientPhone string       `json:"client_phone,omitempty"`
	Pickup      locationView `json:"pickup"`
	Destination locationView `json:"destination"`
	Price       float64      `json:"price"`
	CreatedAt   time.Time    `json:"created_at"`
	DistanceKM  *float64     `json:"distance_km,omitempty"`
}

type availableRidesResponse struct {
	Rides []availableRideView `json:"rides"`
	Count int                 `json:"count"`
}

// ----- Handler: GET /api/driver/rides/available -----

func (handler *DriverHTTPHandler) handleAvailableRides(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rides, err := handler.drivers.AvailableRides(ctxWithTimeout, strings.TrimSpace(claims.Subject))
	if err != nil {
		handler.domainError(ctxWithTimeout, w, err)
		return
	}

	views := make([]availableRideView, 0, len(rides))
	for _, item := range rides {
		views = append(views, toAvailableRideView(item))
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, availableRidesResponse{
		Rides: views,
		Count: len(views),
	})
}

func toAvailableRideView(item ports.AvailableRide) availableRideView {
	return availableRideView{
		RideID:      item.RideID,
		ClientName:  item.ClientName,
		ClientPhone: item.ClientPhone,
		Pickup:      toLocationView(item.Pickup),
		Destination: toLocationView(item.Destination),
		Price:       item.Price,
		CreatedAt:   item.CreatedAt,
		DistanceKM:  item.DistanceKM,
	}
}
