package service

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"taxitrack/internal/domain/ride"
)

// statusMessages are the human-readable client notifications keyed by the
// status a ride just entered.
var statusMessages = map[ride.Status]string{
	ride.StatusAccepted:   "A driver has accepted your ride!",
	ride.StatusArrived:    "Your driver has arrived at the pickup point!",
	ride.StatusInProgress: "Your trip has started",
	ride.StatusCompleted:  "Your trip is complete. Thank you for riding with TaxiTrack!",
	ride.StatusCancelled:  "The ride has been cancelled",
}

// statusMessage returns the notification text for a status, with a generic
// fallback for anything unmapped.
func statusMessage(status ride.Status) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return "Ride status updated"
}

// generateCorrelationID creates a simple correlation ID for tracing requests.
func generateCorrelationID() string {
	var b [3]byte // 6 hex chars
	_, _ = rand.Read(b[:])
	ts := time.Now().UTC().Format("20060102T150405")
	return "req_" + ts + "_" + hex.EncodeToString(b[:])
}
