package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"taxitrack/internal/general/jwt"
)

// --- Request DTO (HTTP boundary) ---

type setOnlineRequest struct {
	IsOnline *bool `json:"is_online"`
}

type setOnlineResponse struct {
	DriverID string `json:"driver_id"`
	IsOnline bool   `json:"is_online"`
}

// ----- Handler: PATCH /api/driver/status -----

func (handler *DriverHTTPHandler) handleSetOnline(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	var req setOnlineRequest
	if !handler.decodeJSON(ctx, w, r, &req) {
		return
	}
	if req.IsOnline == nil {
		handler.httpError(ctx, w, http.StatusBadRequest, "is_online is required", errors.New("missing is_online"))
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}
	driverID := strings.TrimSpace(claims.Subject)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := handler.drivers.SetOnline(ctxWithTimeout, driverID, *req.IsOnline); err != nil {
		handler.domainError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, setOnlineResponse{
		DriverID: driverID,
		IsOnline: *req.IsOnline,
	})
}
