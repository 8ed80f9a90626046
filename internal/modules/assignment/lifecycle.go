// README: Trip lifecycle transitions: start, complete, unassign, cancel.
package assignment

import (
	"context"
	"fmt"
	"log"

	"fleetline/internal/modules/rating"
	"fleetline/internal/modules/trip"
	"fleetline/internal/modules/triprequest"
	"fleetline/internal/types"
)

type StartCommand struct {
	TripID   types.ID
	DriverID types.ID
}

type CompleteCommand struct {
	TripID   types.ID
	DriverID types.ID
	// Rating of the company, optional; recording it is best-effort and never
	// rolls back the completion.
	Rating        *int
	RatingComment string
}

type UnassignCommand struct {
	TripID    types.ID
	CompanyID types.ID
}

type CancelTripCommand struct {
	TripID    types.ID
	CompanyID types.ID
}

// StartTrip moves an assigned trip to in_progress. Only the assigned driver
// may start it.
func (s *Service) StartTrip(ctx context.Context, cmd StartCommand) error {
	t, err := s.trips.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if t.DriverID == nil || *t.DriverID != cmd.DriverID {
		return ErrForbidden
	}
	if t.Status != trip.StatusAssigned {
		return ErrInvalidState
	}

	ok, err := s.trips.SetStatusForDriver(ctx, t.ID, cmd.DriverID, trip.StatusAssigned, trip.StatusInProgress)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	s.notify(ctx, t.CompanyID, "Trip started",
		fmt.Sprintf("Your trip %s -> %s is under way.", t.Pickup, t.Destination))
	return nil
}

// CompleteTrip moves an in-progress trip to completed and, when a rating is
// supplied, records it about the company on a best-effort side channel.
func (s *Service) CompleteTrip(ctx context.Context, cmd CompleteCommand) error {
	t, err := s.trips.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if t.DriverID == nil || *t.DriverID != cmd.DriverID {
		return ErrForbidden
	}
	if t.Status != trip.StatusInProgress {
		return ErrInvalidState
	}

	ok, err := s.trips.SetStatusForDriver(ctx, t.ID, cmd.DriverID, trip.StatusInProgress, trip.StatusCompleted)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	if cmd.Rating != nil && s.ratings != nil {
		err := s.ratings.Record(ctx, rating.RecordCommand{
			TripID:  t.ID,
			RaterID: cmd.DriverID,
			RateeID: t.CompanyID,
			Score:   *cmd.Rating,
			Comment: cmd.RatingComment,
		})
		if err != nil {
			log.Printf("rating for trip %s not recorded: %v", t.ID, err)
		}
	}

	s.notify(ctx, t.CompanyID, "Trip completed",
		fmt.Sprintf("Your trip %s -> %s was completed.", t.Pickup, t.Destination))
	return nil
}

// UnassignDriver releases an assigned trip back to pending, clearing the
// driver binding. Used by reassignment flows and direct company action.
func (s *Service) UnassignDriver(ctx context.Context, cmd UnassignCommand) error {
	t, err := s.trips.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if t.CompanyID != cmd.CompanyID {
		return ErrForbidden
	}
	if t.Status != trip.StatusAssigned {
		return ErrInvalidState
	}
	driver := t.DriverID

	ok, err := s.trips.UnassignDriver(ctx, t.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	if driver != nil {
		s.notify(ctx, *driver, "Trip unassigned",
			fmt.Sprintf("You were released from the trip %s -> %s.", t.Pickup, t.Destination))
	}
	return nil
}

// CancelTrip cancels an unclaimed trip and drops its pending requests in the
// same transaction, so no proposal dangles on a dead trip.
func (s *Service) CancelTrip(ctx context.Context, cmd CancelTripCommand) error {
	t, err := s.trips.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if t.CompanyID != cmd.CompanyID {
		return ErrForbidden
	}
	if t.Status != trip.StatusPending {
		return ErrInvalidState
	}

	var dropped []types.ID
	err = s.inTx(ctx, func(trips *trip.Store, requests *triprequest.Store) error {
		ok, err := trips.SetStatus(ctx, t.ID, trip.StatusPending, trip.StatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		dropped, err = requests.DeletePendingForTrip(ctx, t.ID, "")
		return err
	})
	if err != nil {
		return err
	}

	for _, d := range dropped {
		s.notify(ctx, d, "Trip cancelled",
			fmt.Sprintf("The trip %s -> %s was cancelled by the company.", t.Pickup, t.Destination))
	}
	return nil
}
