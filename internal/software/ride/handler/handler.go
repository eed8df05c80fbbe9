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
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"taxitrack/internal/domain/ride"
	"taxitrack/internal/domain/user"
	"taxitrack/internal/general/contextx"
	"taxitrack/internal/general/jwt"
	"taxitrack/internal/general/logger"
	"taxitrack/internal/ports"
)

// ClientHTTPHandler adapts the client-facing HTTP endpoints to the RideService.
type ClientHTTPHandler struct {
	svc    ports.RideService
	logger *slog.Logger
	auth   *jwt.Manager
}

// NewClientHTTPHandler wires an HTTP handler around the RideService.
func NewClientHTTPHandler(svc ports.RideService, log *slog.Logger, auth *jwt.Manager) *ClientHTTPHandler {
	return &ClientHTTPHandler{svc: svc, logger: log, auth: auth}
}

// RegisterRoutes mounts client ride endpoints on the provided mux.
func (handler *ClientHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/client/rides",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleClient)(handler.handleRequestRide),
	)
	mux.HandleFunc("GET /api/client/rides/active",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleClient)(handler.handleActiveRide),
	)
	mux.HandleFunc("POST /api/client/rides/{ride_id}/cancel",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleClient)(handler.handleCancelRide),
	)
	mux.HandleFunc("POST /api/client/rides/{ride_id}/rating",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleClient)(handler.handleRateRide),
	)
}

// ----- shared ride view -----

type locationView struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Long    float64 `json:"long"`
}

type rideView struct {
	RideID      string       `json:"ride_id"`
	Status      string       `json:"status"`
	Pickup      locationView `json:"pickup"`
	Destination locationView `json:"destination"`
	Price       float64      `json:"price"`
	Rating      *int         `json:"rating,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

func toRideView(r *ride.Ride) rideView {
	return rideView{
		RideID:      r.ID,
		Status:      r.Status.String(),
		Pickup:      locationView{Address: r.Pickup.Address, Lat: r.Pickup.Lat, Long: r.Pickup.Long},
		Destination: locationView{Address: r.Destination.Address, Lat: r.Destination.Lat, Long: r.Destination.Long},
		Price:       r.Price,
		Rating:      r.Rating,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		CompletedAt: r.CompletedAt,
	}
}

// ----- shared helpers -----

func (handler *ClientHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	// encode to buffer first so we can control status on failure
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

// httpError sends a JSON error response with a message.
func (handler *ClientHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
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

// domainError maps lifecycle errors onto HTTP statuses. Unknown errors fall
// through to 500 so store failures are not mistaken for client mistakes.
func (handler *ClientHTTPHandler) domainError(ctx context.Context, w http.ResponseWriter, err error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		handler.httpError(ctx, w, http.StatusInternalServerError, "database error", err)
		return
	}

	switch {
	case errors.Is(err, ride.ErrConflictActiveRide):
		handler.httpError(ctx, w, http.StatusConflict, err.Error(), err)
	case errors.Is(err, ride.ErrRideNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, ride.ErrCannotCancel),
		errors.Is(err, ride.ErrRideNotCompleted):
		handler.httpError(ctx, w, http.StatusConflict, err.Error(), err)
	case errors.Is(err, ride.ErrInvalidRating),
		errors.Is(err, ride.ErrClientRequired),
		errors.Is(err, ride.ErrAddressRequired),
		errors.Is(err, ride.ErrInvalidLatitude),
		errors.Is(err, ride.ErrInvalidLongitude):
		handler.httpError(ctx, w, http.StatusBadRequest, err.Error(), err)
	default:
		handler.httpError(ctx, w, http.StatusInternalServerError, "internal error", err)
	}
}

// decodeJSON enforces the content type, the body limit and strict field checking.
func (handler *ClientHTTPHandler) decodeJSON(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) bool {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
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

// withReqID extracts or generates a request ID and adds it to the context.
func (handler *ClientHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return contextx.WithRequestID(ctx, reqID)
}

// randID generates a random 24-char hex string suitable for request IDs.
func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
