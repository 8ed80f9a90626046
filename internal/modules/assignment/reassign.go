// README: Reassignment flow: a company asks its assigned driver to release a
// trip; the driver approves or declines.
package assignment

import (
	"context"
	"fmt"
	"time"

	"fleetline/internal/modules/trip"
	"fleetline/internal/modules/triprequest"
	"fleetline/internal/types"
)

type ReassignmentCommand struct {
	TripID    types.ID
	CompanyID types.ID
}

type ReassignmentResponseCommand struct {
	RequestID types.ID
	DriverID  types.ID
	Accept    bool
}

// RequestReassignment opens a reassignment approval addressed to the trip's
// current driver. Only one may be in flight per trip.
func (s *Service) RequestReassignment(ctx context.Context, cmd ReassignmentCommand) (types.ID, error) {
	t, err := s.trips.Get(ctx, cmd.TripID)
	if err != nil {
		return "", err
	}
	if t.CompanyID != cmd.CompanyID {
		return "", ErrForbidden
	}
	if t.Status != trip.StatusAssigned || t.DriverID == nil {
		return "", ErrInvalidState
	}

	open, err := s.requests.HasOpenReassignment(ctx, t.ID)
	if err != nil {
		return "", err
	}
	if open {
		return "", ErrConflict
	}

	r := &triprequest.Request{
		ID:        trip.NewID(),
		TripID:    t.ID,
		DriverID:  *t.DriverID,
		Direction: triprequest.ReassignmentApproval,
		Status:    triprequest.StatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.requests.Create(ctx, r); err != nil {
		return "", err
	}

	s.notify(ctx, *t.DriverID, "Reassignment requested",
		fmt.Sprintf("The company asks to release you from the trip %s -> %s.", t.Pickup, t.Destination))
	return r.ID, nil
}

// RespondToReassignment resolves a reassignment approval. Accepting returns
// the trip to pending with the driver cleared; the consumed approval row is
// removed in the same transaction so it can never count as a second accepted
// request for the trip. Declining leaves the trip as-is.
func (s *Service) RespondToReassignment(ctx context.Context, cmd ReassignmentResponseCommand) error {
	req, err := s.requests.Get(ctx, cmd.RequestID)
	if err != nil {
		return err
	}
	if req.Direction != triprequest.ReassignmentApproval {
		return ErrValidation
	}
	if req.DriverID != cmd.DriverID {
		return ErrForbidden
	}
	if req.Status != triprequest.StatusPending {
		return ErrInvalidState
	}
	t, err := s.trips.Get(ctx, req.TripID)
	if err != nil {
		return err
	}

	if !cmd.Accept {
		ok, err := s.requests.SetStatus(ctx, req.ID, triprequest.StatusPending, triprequest.StatusRejected)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		s.notify(ctx, t.CompanyID, "Reassignment declined",
			fmt.Sprintf("The driver keeps the trip %s -> %s.", t.Pickup, t.Destination))
		return nil
	}

	err = s.inTx(ctx, func(trips *trip.Store, requests *triprequest.Store) error {
		ok, err := requests.SetStatus(ctx, req.ID, triprequest.StatusPending, triprequest.StatusAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		ok, err = trips.UnassignDriver(ctx, t.ID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		_, err = requests.Delete(ctx, req.ID)
		return err
	})
	if err != nil {
		return err
	}

	s.notify(ctx, t.CompanyID, "Reassignment approved",
		fmt.Sprintf("The trip %s -> %s is open for a new driver.", t.Pickup, t.Destination))
	return nil
}
