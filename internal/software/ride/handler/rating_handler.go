package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"taxitrack/internal/general/contextx"
	"taxitrack/internal/general/jwt"
)

// --- Request DTO (HTTP boundary) ---

type rateRideRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type rateRideResponse struct {
	RideID  string `json:"ride_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// ----- Handler: POST /api/client/rides/{ride_id}/rating -----

func (handler *ClientHTTPHandler) handleRateRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID := strings.TrimSpace(r.PathValue("ride_id"))
	if rideID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "ride_id is required", errors.New("missing ride_id"))
		return
	}
	ctx = contextx.WithRideID(ctx, rideID)

	var req rateRideRequest
	if !handler.decodeJSON(ctx, w, r, &req) {
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := handler.svc.RateRide(ctxWithTimeout, strings.TrimSpace(claims.Subject), rideID, req.Rating, strings.TrimSpace(req.Comment))
	if err != nil {
		handler.domainError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, rateRideResponse{
		RideID:  rideID,
		Rating:  req.Rating,
		Comment: strings.TrimSpace(req.Comment),
	})
}
