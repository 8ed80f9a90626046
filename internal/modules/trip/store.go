// README: Trip store backed by PostgreSQL; status changes are conditional writes.
package trip

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetline/internal/types"
)

var ErrNotFound = errors.New("trip not found")

// querier is satisfied by *pgxpool.Pool and pgx.Tx so store methods can run
// standalone or inside a coordinator transaction.
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

const tripColumns = `
	id, company_id, driver_id, pickup, destination, departs_at,
	passengers, capacity_class,
	company_price, driver_price, currency, visa_number, status,
	created_at, assigned_at, started_at, completed_at, cancelled_at`

func (s *Store) Create(ctx context.Context, t *Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trips (
			id, company_id, driver_id, pickup, destination, departs_at,
			passengers, capacity_class,
			company_price, driver_price, currency, visa_number, status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8,
			$9, $10, $11, $12, $13, $14
		)`,
		string(t.ID),
		string(t.CompanyID),
		idPtr(t.DriverID),
		t.Pickup,
		t.Destination,
		t.DepartsAt,
		t.Passengers,
		t.CapacityClass,
		t.CompanyPrice.Amount,
		t.DriverPrice.Amount,
		t.CompanyPrice.Currency,
		t.VisaNumber,
		string(t.Status),
		t.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Trip, error) {
	row := s.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id = $1`, string(id))
	return scanTrip(row)
}

// UpdateFields rewrites the company-editable fields of a pending trip. The
// status guard is part of the statement; zero rows means the trip either does
// not exist or has already left pending.
func (s *Store) UpdateFields(ctx context.Context, t *Trip) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET pickup = $1, destination = $2, departs_at = $3,
		    passengers = $4, capacity_class = $5,
		    company_price = $6, driver_price = $7, visa_number = $8
		WHERE id = $9 AND status = 'pending'`,
		t.Pickup, t.Destination, t.DepartsAt,
		t.Passengers, t.CapacityClass,
		t.CompanyPrice.Amount, t.DriverPrice.Amount, t.VisaNumber,
		string(t.ID),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetStatus moves a trip from expected to next. The expected status is encoded
// in the WHERE clause; the caller treats zero affected rows as a lost race.
func (s *Store) SetStatus(ctx context.Context, id types.ID, expected, next Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status = $1,
		    started_at = CASE WHEN $1 = 'in_progress' THEN NOW() ELSE started_at END,
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id = $2 AND status = $3`,
		string(next), string(id), string(expected),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// SetStatusForDriver is SetStatus with the acting driver folded into the
// precondition, so ownership and state are checked in one write.
func (s *Store) SetStatusForDriver(ctx context.Context, id, driverID types.ID, expected, next Status) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status = $1,
		    started_at = CASE WHEN $1 = 'in_progress' THEN NOW() ELSE started_at END,
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $2 AND status = $3 AND driver_id = $4`,
		string(next), string(id), string(expected), string(driverID),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// AssignDriverIfPending claims a pending trip for a driver. A racing second
// assignment sees zero rows affected and reports a conflict upstream.
func (s *Store) AssignDriverIfPending(ctx context.Context, id, driverID types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status = 'assigned', driver_id = $1, assigned_at = NOW()
		WHERE id = $2 AND status = 'pending'`,
		string(driverID), string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UnassignDriver releases an assigned trip back to pending and clears the
// driver binding.
func (s *Store) UnassignDriver(ctx context.Context, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE trips
		SET status = 'pending', driver_id = NULL, assigned_at = NULL
		WHERE id = $1 AND status = 'assigned'`,
		string(id),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListActiveByDriver returns the driver's assigned and in-progress trips,
// the set the double-booking check scans.
func (s *Store) ListActiveByDriver(ctx context.Context, driverID types.ID) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tripColumns+`
		FROM trips
		WHERE driver_id = $1 AND status IN ('assigned', 'in_progress')
		ORDER BY departs_at`,
		string(driverID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrips(rows)
}

// ListPending returns every unclaimed trip, oldest departure first.
func (s *Store) ListPending(ctx context.Context) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tripColumns+`
		FROM trips
		WHERE status = 'pending'
		ORDER BY departs_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrips(rows)
}

func (s *Store) ListByCompany(ctx context.Context, companyID types.ID) ([]Trip, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+tripColumns+`
		FROM trips
		WHERE company_id = $1
		ORDER BY departs_at DESC`,
		string(companyID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrips(rows)
}

func collectTrips(rows pgx.Rows) ([]Trip, error) {
	var out []Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTrip(row pgx.Row) (*Trip, error) {
	var t Trip
	var driverID, visa *string
	var currency string
	var assignedAt, startedAt, completedAt, cancelledAt *time.Time

	err := row.Scan(
		&t.ID, &t.CompanyID, &driverID, &t.Pickup, &t.Destination, &t.DepartsAt,
		&t.Passengers, &t.CapacityClass,
		&t.CompanyPrice.Amount, &t.DriverPrice.Amount, &currency, &visa, &t.Status,
		&t.CreatedAt, &assignedAt, &startedAt, &completedAt, &cancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if driverID != nil {
		d := types.ID(*driverID)
		t.DriverID = &d
	}
	t.CompanyPrice.Currency = currency
	t.DriverPrice.Currency = currency
	t.VisaNumber = visa
	t.AssignedAt = assignedAt
	t.StartedAt = startedAt
	t.CompletedAt = completedAt
	t.CancelledAt = cancelledAt
	return &t, nil
}

func idPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
