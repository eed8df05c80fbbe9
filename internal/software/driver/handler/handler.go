package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"taxitrack/internal/domain/ride"
	"taxitrack/internal/domain/user"
	"taxitrack/internal/general/contextx"
	"taxitrack/internal/general/jwt"
	"taxitrack/internal/general/logger"
	"taxitrack/internal/ports"
)

// DriverHTTPHandler adapts the driver-facing HTTP endpoints to the ride and
// presence services.
type DriverHTTPHandler struct {
	rides   ports.RideService
	drivers ports.DriverService
	logger  *slog.Logger
	auth    *jwt.Manager
}

// NewDriverHTTPHandler wires an HTTP handler around the driver-facing services.
func NewDriverHTTPHandler(rides ports.RideService, drivers ports.DriverService, log *slog.Logger, auth *jwt.Manager) *DriverHTTPHandler {
	return &DriverHTTPHandler{rides: rides, drivers: drivers, logger: log, auth: auth}
}

// RegisterRoutes mounts driver endpoints on the provided mux.
func (handler *DriverHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/driver/rides/{ride_id}/accept",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleAcceptRide),
	)
	mux.HandleFunc("PATCH /api/driver/rides/{ride_id}/status",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleUpdateStatus),
	)
	mux.HandleFunc("GET /api/driver/rides/available",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleAvailableRides),
	)
	mux.HandleFunc("PATCH /api/driver/status",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleDriver)(handler.handleSetOnline),
	)
}

// ----- shared helpers -----

func (handler *DriverHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			logger.Error(ctx, handler.logger, "response_encode_failed", "Failed to encode response", err)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func (handler *DriverHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	} else if status == http.StatusBadRequest {
		action = "validation_failed"
	}
	logger.Error(ctx, handler.logger, action, msg, err)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

// domainError maps lifecycle errors onto HTTP statuses for the driver side.
func (handler *DriverHTTPHandler) domainError(ctx context.Context, w http.ResponseWriter, err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		handler.httpError(ctx, w, http.StatusInternalServerError, "database error", err)
		return
	}

	switch {
	case errors.Is(err, ride.ErrRideNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, ride.ErrRideNoLongerAvailable):
		handler.httpError(ctx, w, http.StatusConflict, err.Error(), err)
	case errors.Is(err, ride.ErrNotAssignedDriver):
		handler.httpError(ctx, w, http.StatusForbidden, err.Error(), err)
	case errors.Is(err, ride.ErrInvalidTransition):
		handler.httpError(ctx, w, http.StatusUnprocessableEntity, err.Error(), err)
	default:
		handler.httpError(ctx, w, http.StatusInternalServerError, "internal error", err)
	}
}

func (handler *DriverHTTPHandler) decodeJSON(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, 256<<10) // 256 KiB
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return false
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return false
	}
	return true
}

func (handler *DriverHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return contextx.WithRequestID(ctx, reqID)
}

func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
