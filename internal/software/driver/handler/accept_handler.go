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
)

type acceptRideResponse struct {
	RideID   string       `json:"ride_id"`
	Status   string       `json:"status"`
	ClientID string       `json:"client_id"`
	Pickup   locationView `json:"pickup"`
	Price    float64      `json:"price"`
}

type locationView struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Long    float64 `json:"long"`
}

func toLocationView(l ride.Location) locationView {
	return locationView{Address: l.Address, Lat: l.Lat, Long: l.Long}
}

// ----- Handler: POST /api/driver/rides/{ride_id}/accept -----

func (handler *DriverHTTPHandler) handleAcceptRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID := strings.TrimSpace(r.PathValue("ride_id"))
	if rideID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "ride_id is required", errors.New("missing ride_id"))
		return
	}
	ctx = contextx.WithRideID(ctx, rideID)

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.rides.AcceptRide(ctxWithTimeout, strings.TrimSpace(claims.Subject), rideID)
	if err != nil {
		handler.domainError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, acceptRideResponse{
		RideID:   res.ID,
		Status:   res.Status.String(),
		ClientID: res.ClientID,
		Pickup:   toLocationView(res.Pickup),
		Price:    res.Price,
	})
}
