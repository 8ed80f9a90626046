// README: Assignment coordinator: guarded trip state transitions and request
// reconciliation. Every multi-row step runs in one serializable transaction;
// every status write encodes its precondition and treats zero affected rows
// as a lost race.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"fleetline/internal/modules/availability"
	"fleetline/internal/modules/notify"
	"fleetline/internal/modules/rating"
	"fleetline/internal/modules/trip"
	"fleetline/internal/modules/triprequest"
	"fleetline/internal/types"
)

var (
	ErrForbidden    = errors.New("actor does not own this resource")
	ErrInvalidState = errors.New("operation not allowed from current status")
	ErrConflict     = errors.New("trip state conflict")
	ErrValidation   = errors.New("invalid request data")
)

// Ratings records completion cross-ratings; failures are swallowed.
type Ratings interface {
	Record(ctx context.Context, cmd rating.RecordCommand) error
}

type Service struct {
	pool     *pgxpool.Pool
	trips    *trip.Store
	requests *triprequest.Store
	sink     notify.Sink
	ratings  Ratings
	window   time.Duration
}

func NewService(pool *pgxpool.Pool, trips *trip.Store, requests *triprequest.Store, sink notify.Sink, ratings Ratings, conflictWindow time.Duration) *Service {
	if sink == nil {
		sink = notify.NopSink{}
	}
	return &Service{
		pool:     pool,
		trips:    trips,
		requests: requests,
		sink:     sink,
		ratings:  ratings,
		window:   conflictWindow,
	}
}

type CreateRequestCommand struct {
	TripID    types.ID
	DriverID  types.ID
	Direction triprequest.Direction
	ActorID   types.ID
}

type AcceptCommand struct {
	RequestID types.ID
	ActorID   types.ID
}

type AssignCommand struct {
	TripID    types.ID
	DriverID  types.ID
	CompanyID types.ID
}

type RejectCommand struct {
	RequestID types.ID
	ActorID   types.ID
}

type CancelRequestCommand struct {
	RequestID   types.ID
	RequestorID types.ID
}

// CreateRequest opens a proposal between a driver and a pending trip.
// Drivers propose themselves; companies invite. Reassignment approvals are
// created through RequestReassignment, never here.
func (s *Service) CreateRequest(ctx context.Context, cmd CreateRequestCommand) (types.ID, error) {
	if cmd.TripID == "" || cmd.DriverID == "" {
		return "", ErrValidation
	}
	t, err := s.trips.Get(ctx, cmd.TripID)
	if err != nil {
		return "", err
	}

	switch cmd.Direction {
	case triprequest.DriverToCompany:
		if cmd.ActorID != cmd.DriverID {
			return "", ErrForbidden
		}
	case triprequest.CompanyToDriver:
		if cmd.ActorID != t.CompanyID {
			return "", ErrForbidden
		}
	default:
		return "", ErrValidation
	}

	if t.Status != trip.StatusPending {
		return "", ErrInvalidState
	}

	open, err := s.requests.FindOpenByTripAndDriver(ctx, t.ID, cmd.DriverID)
	if err != nil {
		return "", err
	}
	if open != nil {
		return "", ErrConflict
	}

	r := &triprequest.Request{
		ID:        trip.NewID(),
		TripID:    t.ID,
		DriverID:  cmd.DriverID,
		Direction: cmd.Direction,
		Status:    triprequest.StatusPending,
		CreatedAt: time.Now(),
	}
	if err := s.requests.Create(ctx, r); err != nil {
		return "", err
	}

	if cmd.Direction == triprequest.DriverToCompany {
		s.notify(ctx, t.CompanyID, "New trip request",
			fmt.Sprintf("A driver requested your trip %s -> %s.", t.Pickup, t.Destination))
	} else {
		s.notify(ctx, cmd.DriverID, "Trip offer",
			fmt.Sprintf("A company offered you a trip %s -> %s.", t.Pickup, t.Destination))
	}
	return r.ID, nil
}

// AcceptRequest resolves a pending proposal in favor of its driver. The
// counterpart accepts: a driver accepts a company invite, a company accepts a
// driver's proposal. Assignment and sibling-request cleanup commit together;
// a racing second accept for the same trip loses on the conditional write and
// reports a conflict.
func (s *Service) AcceptRequest(ctx context.Context, cmd AcceptCommand) error {
	req, err := s.requests.Get(ctx, cmd.RequestID)
	if err != nil {
		return err
	}
	t, err := s.trips.Get(ctx, req.TripID)
	if err != nil {
		return err
	}

	switch req.Direction {
	case triprequest.CompanyToDriver:
		if cmd.ActorID != req.DriverID {
			return ErrForbidden
		}
	case triprequest.DriverToCompany:
		if cmd.ActorID != t.CompanyID {
			return ErrForbidden
		}
	default:
		// Reassignment approvals resolve through RespondToReassignment.
		return ErrValidation
	}

	if req.Status != triprequest.StatusPending {
		return ErrInvalidState
	}

	if err := s.checkScheduleConflict(ctx, req.DriverID, t); err != nil {
		return err
	}

	var dropped []types.ID
	err = s.inTx(ctx, func(trips *trip.Store, requests *triprequest.Store) error {
		ok, err := trips.AssignDriverIfPending(ctx, t.ID, req.DriverID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		ok, err = requests.SetStatus(ctx, req.ID, triprequest.StatusPending, triprequest.StatusAccepted)
		if err != nil {
			return err
		}
		if !ok {
			return ErrConflict
		}
		dropped, err = requests.DeletePendingForTrip(ctx, t.ID, req.ID)
		return err
	})
	if err != nil {
		return err
	}

	if req.Direction == triprequest.CompanyToDriver {
		s.notify(ctx, t.CompanyID, "Trip accepted",
			fmt.Sprintf("Your driver accepted the trip %s -> %s.", t.Pickup, t.Destination))
	} else {
		s.notify(ctx, req.DriverID, "Request accepted",
			fmt.Sprintf("Your request for the trip %s -> %s was accepted.", t.Pickup, t.Destination))
	}
	s.notifyDropped(ctx, dropped, t)
	return nil
}

// AssignDriverDirect binds a driver to a pending trip without a standing
// request. If the driver happens to have a pending proposal it is accepted;
// every other pending request for the trip is removed in the same
// transaction.
func (s *Service) AssignDriverDirect(ctx context.Context, cmd AssignCommand) error {
	if cmd.DriverID == "" {
		return ErrValidation
	}
	t, err := s.trips.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if t.CompanyID != cmd.CompanyID {
		return ErrForbidden
	}

	if err := s.checkScheduleConflict(ctx, cmd.DriverID, t); err != nil {
		return err
	}

	var dropped []types.ID
	err = s.inTx(ctx, func(trips *trip.Store, requests *triprequest.Store) error {
		ok, err := trips.AssignDriverIfPending(ctx, t.ID, cmd.DriverID)
		if err != nil {
			return err
		}
		if !ok {
			// Taken by someone else (or already left pending): conflict,
			// never a silent no-op.
			return ErrConflict
		}

		own, err := requests.FindOpenByTripAndDriver(ctx, t.ID, cmd.DriverID)
		if err != nil {
			return err
		}
		keep := types.ID("")
		if own != nil && own.Status == triprequest.StatusPending {
			if _, err := requests.SetStatus(ctx, own.ID, triprequest.StatusPending, triprequest.StatusAccepted); err != nil {
				return err
			}
			keep = own.ID
		}
		dropped, err = requests.DeletePendingForTrip(ctx, t.ID, keep)
		return err
	})
	if err != nil {
		return err
	}

	s.notify(ctx, cmd.DriverID, "Trip assigned",
		fmt.Sprintf("You were assigned the trip %s -> %s.", t.Pickup, t.Destination))
	s.notifyDropped(ctx, dropped, t)
	return nil
}

// RejectRequest resolves a pending proposal against its driver. The trip is
// untouched.
func (s *Service) RejectRequest(ctx context.Context, cmd RejectCommand) error {
	req, err := s.requests.Get(ctx, cmd.RequestID)
	if err != nil {
		return err
	}
	t, err := s.trips.Get(ctx, req.TripID)
	if err != nil {
		return err
	}

	switch req.Direction {
	case triprequest.CompanyToDriver:
		if cmd.ActorID != req.DriverID {
			return ErrForbidden
		}
	case triprequest.DriverToCompany:
		if cmd.ActorID != t.CompanyID {
			return ErrForbidden
		}
	default:
		return ErrValidation
	}

	if req.Status != triprequest.StatusPending {
		return ErrInvalidState
	}
	ok, err := s.requests.SetStatus(ctx, req.ID, triprequest.StatusPending, triprequest.StatusRejected)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	if req.Direction == triprequest.DriverToCompany {
		s.notify(ctx, req.DriverID, "Request rejected",
			fmt.Sprintf("Your request for the trip %s -> %s was rejected.", t.Pickup, t.Destination))
	} else {
		s.notify(ctx, t.CompanyID, "Offer declined",
			fmt.Sprintf("The driver declined your offer for the trip %s -> %s.", t.Pickup, t.Destination))
	}
	return nil
}

// CancelRequest withdraws a proposal. Only the party that opened it may
// cancel; the row is deleted.
func (s *Service) CancelRequest(ctx context.Context, cmd CancelRequestCommand) error {
	req, err := s.requests.Get(ctx, cmd.RequestID)
	if err != nil {
		return err
	}
	t, err := s.trips.Get(ctx, req.TripID)
	if err != nil {
		return err
	}

	switch req.Direction {
	case triprequest.DriverToCompany:
		if cmd.RequestorID != req.DriverID {
			return ErrForbidden
		}
	case triprequest.CompanyToDriver, triprequest.ReassignmentApproval:
		if cmd.RequestorID != t.CompanyID {
			return ErrForbidden
		}
	default:
		return ErrValidation
	}

	if req.Status != triprequest.StatusPending {
		return ErrInvalidState
	}
	ok, err := s.requests.Delete(ctx, req.ID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}

	if req.Direction == triprequest.DriverToCompany {
		s.notify(ctx, t.CompanyID, "Request withdrawn",
			fmt.Sprintf("A driver withdrew the request for the trip %s -> %s.", t.Pickup, t.Destination))
	} else {
		s.notify(ctx, req.DriverID, "Offer withdrawn",
			fmt.Sprintf("The company withdrew its offer for the trip %s -> %s.", t.Pickup, t.Destination))
	}
	return nil
}

// checkScheduleConflict rejects an assignment that would put the driver on
// two trips departing within the conflict window of each other.
func (s *Service) checkScheduleConflict(ctx context.Context, driverID types.ID, t *trip.Trip) error {
	active, err := s.trips.ListActiveByDriver(ctx, driverID)
	if err != nil {
		return err
	}
	if availability.HasScheduleConflict(active, t.ID, t.DepartsAt, s.window) {
		return ErrConflict
	}
	return nil
}

// inTx runs fn against transactional store views under serializable
// isolation. A serialization failure surfaces as a conflict, matching what
// the loser of the race would have seen anyway.
func (s *Service) inTx(ctx context.Context, fn func(trips *trip.Store, requests *triprequest.Store) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(s.trips.WithTx(tx), s.requests.WithTx(tx)); err != nil {
		return asConflict(err)
	}
	return asConflict(tx.Commit(ctx))
}

func asConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "40001" {
		return ErrConflict
	}
	return err
}

func (s *Service) notify(ctx context.Context, recipient types.ID, title, body string) {
	if err := s.sink.Send(ctx, notify.Message{RecipientID: recipient, Title: title, Body: body}); err != nil {
		log.Printf("notify %s failed: %v", recipient, err)
	}
}

func (s *Service) notifyDropped(ctx context.Context, drivers []types.ID, t *trip.Trip) {
	for _, d := range drivers {
		s.notify(ctx, d, "Trip no longer available",
			fmt.Sprintf("The trip %s -> %s was assigned to another driver.", t.Pickup, t.Destination))
	}
}
