// README: Driver availability store backed by PostgreSQL (one row per driver).
package availability

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetline/internal/types"
)

var ErrNotFound = errors.New("driver availability not found")

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// Upsert replaces the driver's availability window.
func (s *Store) Upsert(ctx context.Context, a *Availability) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO driver_availability (driver_id, location, available_from, available_to, capacity_class, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (driver_id) DO UPDATE SET
			location = EXCLUDED.location,
			available_from = EXCLUDED.available_from,
			available_to = EXCLUDED.available_to,
			capacity_class = EXCLUDED.capacity_class,
			updated_at = NOW()`,
		string(a.DriverID), a.Location, a.From, a.To, a.CapacityClass,
	)
	return err
}

func (s *Store) Get(ctx context.Context, driverID types.ID) (*Availability, error) {
	row := s.db.QueryRow(ctx, `
		SELECT driver_id, location, available_from, available_to, capacity_class, updated_at
		FROM driver_availability
		WHERE driver_id = $1`,
		string(driverID),
	)
	var a Availability
	err := row.Scan(&a.DriverID, &a.Location, &a.From, &a.To, &a.CapacityClass, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListCandidates pre-filters on the cheap SQL-expressible predicates: the
// window covers the departure and the vehicle is big enough. Location, the
// conflict buffer, and duplicate proposals are applied by the matcher.
func (s *Store) ListCandidates(ctx context.Context, at time.Time, minCapacity int) ([]Availability, error) {
	rows, err := s.db.Query(ctx, `
		SELECT driver_id, location, available_from, available_to, capacity_class, updated_at
		FROM driver_availability
		WHERE available_from <= $1 AND available_to >= $1 AND capacity_class >= $2
		ORDER BY driver_id`,
		at, minCapacity,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Availability
	for rows.Next() {
		var a Availability
		if err := rows.Scan(&a.DriverID, &a.Location, &a.From, &a.To, &a.CapacityClass, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
