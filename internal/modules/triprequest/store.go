// README: Trip request store backed by PostgreSQL.
package triprequest

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetline/internal/types"
)

var ErrNotFound = errors.New("trip request not found")

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db querier
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// WithTx returns a store view whose statements run on the given transaction.
func (s *Store) WithTx(tx pgx.Tx) *Store {
	return &Store{db: tx}
}

const requestColumns = `id, trip_id, driver_id, direction, status, created_at, resolved_at`

func (s *Store) Create(ctx context.Context, r *Request) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trip_requests (id, trip_id, driver_id, direction, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(r.ID), string(r.TripID), string(r.DriverID),
		string(r.Direction), string(r.Status), r.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Request, error) {
	row := s.db.QueryRow(ctx, `SELECT `+requestColumns+` FROM trip_requests WHERE id = $1`, string(id))
	return scanRequest(row)
}

// FindOpenByTripAndDriver returns the pending or accepted request between the
// pair, if any. Rejected history is deliberately invisible here.
func (s *Store) FindOpenByTripAndDriver(ctx context.Context, tripID, driverID types.ID) (*Request, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM trip_requests
		WHERE trip_id = $1 AND driver_id = $2 AND status IN ('pending', 'accepted')
		ORDER BY created_at
		LIMIT 1`,
		string(tripID), string(driverID),
	)
	r, err := scanRequest(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return r, err
}

// SetStatus resolves a request; the expected prior status is part of the
// statement so concurrent resolutions cannot both win.
func (s *Store) SetStatus(ctx context.Context, id types.ID, expected, next Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trip_requests
		SET status = $1, resolved_at = NOW()
		WHERE id = $2 AND status = $3`,
		string(next), string(id), string(expected),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Delete(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM trip_requests WHERE id = $1`, string(id))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// DeletePendingForTrip removes every pending request for a trip except the
// given one (pass "" to remove all). Returns the drivers whose proposals were
// dropped so they can be notified.
func (s *Store) DeletePendingForTrip(ctx context.Context, tripID, exceptID types.ID) ([]types.ID, error) {
	rows, err := s.db.Query(ctx, `
		DELETE FROM trip_requests
		WHERE trip_id = $1 AND status = 'pending' AND id <> $2
		RETURNING driver_id`,
		string(tripID), string(exceptID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []types.ID
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		drivers = append(drivers, types.ID(d))
	}
	return drivers, rows.Err()
}

// ListForTrip returns a trip's requests, optionally filtered by status and
// excluding one id.
func (s *Store) ListForTrip(ctx context.Context, tripID, excludingID types.ID, status Status) ([]Request, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+requestColumns+`
		FROM trip_requests
		WHERE trip_id = $1
		  AND id <> $2
		  AND ($3 = '' OR status = $3)
		ORDER BY created_at`,
		string(tripID), string(excludingID), string(status),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (s *Store) ListPendingForDriver(ctx context.Context, driverID types.ID) ([]Request, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+requestColumns+`
		FROM trip_requests
		WHERE driver_id = $1 AND status = 'pending'
		ORDER BY created_at`,
		string(driverID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

// HasOpenReassignment reports whether a reassignment approval is already in
// flight for the trip.
func (s *Store) HasOpenReassignment(ctx context.Context, tripID types.ID) (bool, error) {
	row := s.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM trip_requests
			WHERE trip_id = $1 AND direction = 'reassignment_approval' AND status = 'pending'
		)`, string(tripID),
	)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func collectRequests(rows pgx.Rows) ([]Request, error) {
	var out []Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (*Request, error) {
	var r Request
	var resolvedAt *time.Time
	err := row.Scan(&r.ID, &r.TripID, &r.DriverID, &r.Direction, &r.Status, &r.CreatedAt, &resolvedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	r.ResolvedAt = resolvedAt
	return &r, nil
}
