// README: Rating store backed by PostgreSQL (insert and per-user average).
package rating

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"fleetline/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, r *Record) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO trip_ratings (id, trip_id, rater_id, ratee_id, score, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		string(r.ID), string(r.TripID), string(r.RaterID), string(r.RateeID),
		r.Score, r.Comment, r.CreatedAt,
	)
	return err
}

// AverageFor returns the mean score left about a user and the sample size.
func (s *Store) AverageFor(ctx context.Context, rateeID types.ID) (float64, int, error) {
	row := s.db.QueryRow(ctx, `
		SELECT COALESCE(AVG(score), 0), COUNT(*)
		FROM trip_ratings
		WHERE ratee_id = $1`,
		string(rateeID),
	)
	var avg float64
	var n int
	if err := row.Scan(&avg, &n); err != nil {
		return 0, 0, err
	}
	return avg, n, nil
}
