package contextx

import "context"

type ctxKey string

const (
	keyRequestID ctxKey = "taxitrack_request_id"
	keyRideID    ctxKey = "taxitrack_ride_id"
)

// WithRequestID returns a new context carrying a correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, keyRequestID, id)
}

// WithRideID returns a new context carrying a ride id.
func WithRideID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, keyRideID, id)
}

// GetRequestID extracts the correlation id, or "" if absent.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(keyRequestID).(string)
	return s
}

// GetRideID extracts the ride id, or "" if absent.
func GetRideID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(keyRideID).(string)
	return s
}
