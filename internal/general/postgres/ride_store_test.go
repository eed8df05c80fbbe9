package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsActiveRideConflict(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no rows from the subquery guard", pgx.ErrNoRows, true},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), true},
		{"unique violation from the partial index", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped unique violation", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"other pg error", &pgconn.PgError{Code: "23502"}, false},
		{"plain error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isActiveRideConflict(tt.err); got != tt.want {
				t.Errorf("isActiveRideConflict(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
