// README: Rating service validates and records cross-ratings.
package rating

import (
	"context"
	"errors"
	"time"

	"fleetline/internal/modules/trip"
	"fleetline/internal/types"
)

var ErrValidation = errors.New("rating score must be between 1 and 5")

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

type RecordCommand struct {
	TripID  types.ID
	RaterID types.ID
	RateeID types.ID
	Score   int
	Comment string
}

func (s *Service) Record(ctx context.Context, cmd RecordCommand) error {
	if cmd.Score < 1 || cmd.Score > 5 {
		return ErrValidation
	}
	return s.store.Create(ctx, &Record{
		ID:        trip.NewID(),
		TripID:    cmd.TripID,
		RaterID:   cmd.RaterID,
		RateeID:   cmd.RateeID,
		Score:     cmd.Score,
		Comment:   cmd.Comment,
		CreatedAt: time.Now(),
	})
}

func (s *Service) AverageFor(ctx context.Context, rateeID types.ID) (float64, int, error) {
	return s.store.AverageFor(ctx, rateeID)
}
