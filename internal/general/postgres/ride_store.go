package postgres

import (
	"context"
	"errors"
	"fmt"

	"taxitrack/internal/domain/ride"
	"taxitrack/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolationCode is the SQLSTATE raised when the partial unique index on
// active rides rejects a second concurrent insert for the same client.
const uniqueViolationCode = "23505"

// RideStore persists rides using pgx and plain SQL.
type RideStore struct {
	db *pgxpool.Pool
}

// NewRideStore constructs a RideStore over the shared pool.
func NewRideStore(db *pgxpool.Pool) ports.RideStore {
	return &RideStore{db: db}
}

const rideColumns = `
	id, client_id, driver_id,
	pickup_address, pickup_lat, pickup_long,
	dest_address, dest_lat, dest_long,
	price, status, feedback_score, feedback_comment,
	created_at, updated_at, completed_at`

// Create inserts a pending ride. The WHERE NOT EXISTS subquery rejects the
// common case cheaply, but under READ COMMITTED two racing inserts can both
// pass it. The rides table must carry a partial unique index to close that
// window:
//
//	CREATE UNIQUE INDEX rides_one_active_per_client ON rides (client_id)
//	WHERE status IN ('pending', 'accepted', 'arrived', 'in_progress');
//
// The loser of the race hits a unique violation, which maps to the same
// conflict error as the subquery path.
func (store *RideStore) Create(ctx context.Context, r *ride.Ride) error {
	err := store.db.QueryRow(ctx, `
		INSERT INTO rides (
			client_id,
			pickup_address, pickup_lat, pickup_long,
			dest_address, dest_lat, dest_long,
			price, status
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9
		WHERE NOT EXISTS (
			SELECT 1 FROM rides
			WHERE client_id = $1
			  AND status IN ('pending', 'accepted', 'arrived', 'in_progress')
		)
		RETURNING id, created_at, updated_at
	`,
		r.ClientID,
		r.Pickup.Address, r.Pickup.Lat, r.Pickup.Long,
		r.Destination.Address, r.Destination.Lat, r.Destination.Long,
		r.Price, r.Status.String(),
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if isActiveRideConflict(err) {
		return ride.ErrConflictActiveRide
	}
	if err != nil {
		return fmt.Errorf("insert ride: %w", err)
	}
	return nil
}

// isActiveRideConflict recognizes both ways Create loses to an existing
// active ride: the subquery finding one (no row inserted) and the partial
// unique index rejecting a racing insert.
func isActiveRideConflict(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// GetByID fetches a ride by primary key.
func (store *RideStore) GetByID(ctx context.Context, id string) (*ride.Ride, error) {
	row := store.db.QueryRow(ctx, `SELECT`+rideColumns+` FROM rides WHERE id = $1`, id)
	out, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ride.ErrRideNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ride: %w", err)
	}
	return out, nil
}

// FindActiveByClient fetches the client's single active ride, or nil.
func (store *RideStore) FindActiveByClient(ctx context.Context, clientID string) (*ride.Ride, error) {
	row := store.db.QueryRow(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE client_id = $1
		  AND status IN ('pending', 'accepted', 'arrived', 'in_progress')
		ORDER BY created_at DESC
		LIMIT 1
	`, clientID)
	out, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active ride by client: %w", err)
	}
	return out, nil
}

// FindActiveByDriver fetches the driver's current assigned ride, or nil.
func (store *RideStore) FindActiveByDriver(ctx context.Context, driverID string) (*ride.Ride, error) {
	row := store.db.QueryRow(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE driver_id = $1
		  AND status IN ('accepted', 'arrived', 'in_progress')
		ORDER BY created_at DESC
		LIMIT 1
	`, driverID)
	out, err := scanRide(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find active ride by driver: %w", err)
	}
	return out, nil
}

// ListPending returns up to limit pending rides, newest first.
func (store *RideStore) ListPending(ctx context.Context, limit int) ([]*ride.Ride, error) {
	rows, err := store.db.Query(ctx, `
		SELECT`+rideColumns+`
		FROM rides
		WHERE status = 'pending'
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending rides: %w", err)
	}
	defer rows.Close()

	var rides []*ride.Ride
	for rows.Next() {
		r, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending ride: %w", err)
		}
		rides = append(rides, r)
	}
	return rides, rows.Err()
}

// CompareAndSetStatus applies change only when the stored status still equals
// expected. The status guard in the UPDATE's WHERE clause is what serializes
// racing transitions; rows affected tells us who won.
func (store *RideStore) CompareAndSetStatus(ctx context.Context, id string, expected ride.Status, change ports.StatusChange) (bool, error) {
	tag, err := store.db.Exec(ctx, `
		UPDATE rides
		SET status = $3,
		    driver_id = COALESCE($4, driver_id),
		    completed_at = COALESCE($5, completed_at),
		    updated_at = now()
		WHERE id = $1
		  AND status = $2
	`, id, expected.String(), change.NewStatus.String(), change.DriverID, change.CompletedAt)
	if err != nil {
		return false, fmt.Errorf("compare-and-set ride status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SetFeedback stores rating/comment, only while the ride is completed.
// Repeated calls overwrite.
func (store *RideStore) SetFeedback(ctx context.Context, id string, rating int, comment string) (bool, error) {
	tag, err := store.db.Exec(ctx, `
		UPDATE rides
		SET feedback_score = $2,
		    feedback_comment = $3,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'completed'
	`, id, rating, comment)
	if err != nil {
		return false, fmt.Errorf("set ride feedback: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// rowScanner covers both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRide(row rowScanner) (*ride.Ride, error) {
	var out ride.Ride
	var status string

	err := row.Scan(
		&out.ID, &out.ClientID, &out.DriverID,
		&out.Pickup.Address, &out.Pickup.Lat, &out.Pickup.Long,
		&out.Destination.Address, &out.Destination.Lat, &out.Destination.Long,
		&out.Price, &status, &out.Rating, &out.Comment,
		&out.CreatedAt, &out.UpdatedAt, &out.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	out.Status = ride.Status(status)
	return &out, nil
}
