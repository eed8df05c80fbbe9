package ride

import "errors"

// Domain error taxonomy. Every precondition violation in the lifecycle engine
// surfaces as exactly one of these; the HTTP boundary maps them to status codes.
var (
	ErrConflictActiveRide    = errors.New("client already has an active ride")
	ErrRideNotFound          = errors.New("ride not found")
	ErrRideNoLongerAvailable = errors.New("ride is no longer available")
	ErrInvalidTransition     = errors.New("invalid ride status transition")
	ErrNotAssignedDriver     = errors.New("ride is assigned to a different driver")
	ErrCannotCancel          = errors.New("ride can no longer be cancelled")
	ErrRideNotCompleted      = errors.New("ride is not completed")
	ErrInvalidRating         = errors.New("rating must be between 1 and 5")
)
