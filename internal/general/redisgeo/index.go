package redisgeo

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Index keeps the most recent driver positions in a Redis GEO set. It backs
// the distance-from-driver figures in the available-rides listing; entries are
// advisory and may lag the database row.
type Index struct {
	client *redis.Client
	key    string
}

// New builds an Index over a fresh Redis client.
func New(addr, password, key string) *Index {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password})
	return &Index{client: c, key: key}
}

// Ping verifies connectivity.
func (ix *Index) Ping(ctx context.Context) error {
	return ix.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (ix *Index) Close() error {
	return ix.client.Close()
}

// Update upserts the driver's position via GEOADD.
func (ix *Index) Update(ctx context.Context, driverID string, lat, long float64) error {
	return ix.client.GeoAdd(ctx, ix.key, &redis.GeoLocation{
		Name:      driverID,
		Latitude:  lat,
		Longitude: long,
	}).Err()
}

// Position returns the driver's indexed position, with ok=false when absent.
func (ix *Index) Position(ctx context.Context, driverID string) (lat, long float64, ok bool, err error) {
	pos, err := ix.client.GeoPos(ctx, ix.key, driverID).Result()
	if err != nil {
		return 0, 0, false, err
	}
	if len(pos) == 0 || pos[0] == nil {
		return 0, 0, false, nil
	}
	return pos[0].Latitude, pos[0].Longitude, true, nil
}

// Remove drops the driver from the index (driver went offline).
func (ix *Index) Remove(ctx context.Context, driverID string) error {
	return ix.client.ZRem(ctx, ix.key, driverID).Err()
}
