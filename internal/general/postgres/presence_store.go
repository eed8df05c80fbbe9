package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taxitrack/internal/domain/driver"
	"taxitrack/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PresenceStore persists driver availability in `driver_profiles`.
type PresenceStore struct {
	db *pgxpool.Pool
}

// NewPresenceStore constructs a PresenceStore over the shared pool.
func NewPresenceStore(db *pgxpool.Pool) ports.PresenceStore {
	return &PresenceStore{db: db}
}

// SetOnline flips the driver's availability flag.
func (store *PresenceStore) SetOnline(ctx context.Context, driverID string, online bool) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE driver_profiles
		SET is_online = $2,
		    updated_at = now()
		WHERE user_id = $1
	`, driverID, online)
	if err != nil {
		return fmt.Errorf("set driver online flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("driver %s has no presence row", driverID)
	}
	return nil
}

// UpdateLocation stores the driver's last reported position.
func (store *PresenceStore) UpdateLocation(ctx context.Context, driverID string, lat, long float64, at time.Time) error {
	tag, err := store.db.Exec(ctx, `
		UPDATE driver_profiles
		SET current_lat = $2,
		    current_long = $3,
		    last_location_update = $4,
		    updated_at = now()
		WHERE user_id = $1
	`, driverID, lat, long, at)
	if err != nil {
		return fmt.Errorf("update driver location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("driver %s has no presence row", driverID)
	}
	return nil
}

// Get fetches the driver's presence record.
func (store *PresenceStore) Get(ctx context.Context, driverID string) (*driver.Presence, error) {
	var out driver.Presence
	err := store.db.QueryRow(ctx, `
		SELECT user_id, is_online, current_lat, current_long, last_location_update, updated_at
		FROM driver_profiles
		WHERE user_id = $1
	`, driverID).Scan(
		&out.DriverID, &out.IsOnline,
		&out.CurrentLat, &out.CurrentLong,
		&out.LastLocationUpdate, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("driver %s has no presence row", driverID)
	}
	if err != nil {
		return nil, fmt.Errorf("get driver presence: %w", err)
	}
	return &out, nil
}
