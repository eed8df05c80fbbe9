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

// --- Request DTO (HTTP boundary) ---

type updateStatusRequest struct {
	Status string `json:"status"` // arrived | in_progress | completed
}

type updateStatusResponse struct {
	RideID      string     `json:"ride_id"`
	Status      string     `json:"status"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ----- Handler: PATCH /api/driver/rides/{ride_id}/status -----

func (handler *DriverHTTPHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID := strings.TrimSpace(r.PathValue("ride_id"))
	if rideID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "ride_id is required", errors.New("missing ride_id"))
		return
	}
	ctx = contextx.WithRideID(ctx, rideID)

	var req updateStatusRequest
	if !handler.decodeJSON(ctx, w, r, &req) {
		return
	}

	next, err := ride.ParseStatus(req.Status)
	if err != nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "status must be one of: arrived, in_progress, completed", err)
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.rides.UpdateRideStatus(ctxWithTimeout, strings.TrimSpace(claims.Subject), rideID, next)
	if err != nil {
		handler.domainError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, updateStatusResponse{
		RideID:      res.ID,
		Status:      res.Status.String(),
		UpdatedAt:   res.UpdatedAt,
		CompletedAt: res.CompletedAt,
	})
}
