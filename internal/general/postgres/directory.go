package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taxitrack/internal/domain/driver"
	"taxitrack/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileDirectory resolves client and driver profile details for event
// payloads and ride listings.
type ProfileDirectory struct {
	db *pgxpool.Pool
}

// NewProfileDirectory constructs a ProfileDirectory over the shared pool.
func NewProfileDirectory(db *pgxpool.Pool) ports.Directory {
	return &ProfileDirectory{db: db}
}

// ClientContact returns the client's display name and phone.
func (dir *ProfileDirectory) ClientContact(ctx context.Context, clientID string) (string, string, error) {
	var first, last, phone string
	err := dir.db.QueryRow(ctx, `
		SELECT first_name, last_name, phone
		FROM client_profiles
		WHERE user_id = $1
	`, clientID).Scan(&first, &last, &phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", fmt.Errorf("client %s has no profile", clientID)
	}
	if err != nil {
		return "", "", fmt.Errorf("get client contact: %w", err)
	}
	return strings.TrimSpace(first + " " + last), phone, nil
}

// DriverProfile returns the driver's details including the assigned vehicle.
func (dir *ProfileDirectory) DriverProfile(ctx context.Context, driverID string) (*driver.Profile, error) {
	var first, last string
	var phone, carModel, carPlate *string
	err := dir.db.QueryRow(ctx, `
		SELECT dp.first_name, dp.last_name, dp.phone, c.model, c.plate
		FROM driver_profiles dp
		LEFT JOIN cars c ON dp.car_id = c.id
		WHERE dp.user_id = $1
	`, driverID).Scan(&first, &last, &phone, &carModel, &carPlate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("driver %s has no profile", driverID)
	}
	if err != nil {
		return nil, fmt.Errorf("get driver profile: %w", err)
	}

	out := &driver.Profile{
		DriverID: driverID,
		Name:     strings.TrimSpace(first + " " + last),
	}
	if phone != nil {
		out.Phone = *phone
	}
	if carModel != nil {
		out.CarModel = *carModel
	}
	if carPlate != nil {
		out.CarPlate = *carPlate
	}
	return out, nil
}
