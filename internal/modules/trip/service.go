// README: Trip service implements company-side creation and edits.
package trip

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"fleetline/internal/types"
)

var (
	ErrValidation = errors.New("invalid trip data")
	ErrForbidden  = errors.New("trip belongs to another company")
	ErrConflict   = errors.New("trip already left pending")
)

// Pricing suggests a driver payout when the company does not set one.
type Pricing interface {
	SuggestDriverPrice(companyPrice types.Money) types.Money
}

type Service struct {
	store   *Store
	pricing Pricing
}

func NewService(store *Store, pricing Pricing) *Service {
	return &Service{store: store, pricing: pricing}
}

type CreateCommand struct {
	CompanyID     types.ID
	Pickup        string
	Destination   string
	DepartsAt     time.Time
	Passengers    int
	CapacityClass int
	CompanyPrice  types.Money
	DriverPrice   *types.Money
	VisaNumber    *string
}

type UpdateCommand struct {
	TripID        types.ID
	CompanyID     types.ID
	Pickup        string
	Destination   string
	DepartsAt     time.Time
	Passengers    int
	CapacityClass int
	CompanyPrice  types.Money
	DriverPrice   types.Money
	VisaNumber    *string
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (types.ID, error) {
	if cmd.CompanyID == "" || cmd.Pickup == "" || cmd.Destination == "" || cmd.DepartsAt.IsZero() {
		return "", ErrValidation
	}
	if cmd.Passengers <= 0 || cmd.CapacityClass <= 0 {
		return "", ErrValidation
	}

	driverPrice := cmd.CompanyPrice
	if cmd.DriverPrice != nil {
		driverPrice = *cmd.DriverPrice
	} else if s.pricing != nil {
		driverPrice = s.pricing.SuggestDriverPrice(cmd.CompanyPrice)
	}

	t := &Trip{
		ID:            NewID(),
		CompanyID:     cmd.CompanyID,
		Pickup:        cmd.Pickup,
		Destination:   cmd.Destination,
		DepartsAt:     cmd.DepartsAt,
		Passengers:    cmd.Passengers,
		CapacityClass: cmd.CapacityClass,
		CompanyPrice:  cmd.CompanyPrice,
		DriverPrice:   driverPrice,
		VisaNumber:    cmd.VisaNumber,
		Status:        StatusPending,
		CreatedAt:     time.Now(),
	}
	if err := s.store.Create(ctx, t); err != nil {
		return "", err
	}
	return t.ID, nil
}

// Update rewrites a pending trip's details. Assigned and later trips are
// frozen; the precondition lives in the UPDATE itself.
func (s *Service) Update(ctx context.Context, cmd UpdateCommand) error {
	t, err := s.store.Get(ctx, cmd.TripID)
	if err != nil {
		return err
	}
	if t.CompanyID != cmd.CompanyID {
		return ErrForbidden
	}
	if cmd.Pickup == "" || cmd.Destination == "" || cmd.DepartsAt.IsZero() ||
		cmd.Passengers <= 0 || cmd.CapacityClass <= 0 {
		return ErrValidation
	}

	t.Pickup = cmd.Pickup
	t.Destination = cmd.Destination
	t.DepartsAt = cmd.DepartsAt
	t.Passengers = cmd.Passengers
	t.CapacityClass = cmd.CapacityClass
	t.CompanyPrice = cmd.CompanyPrice
	t.DriverPrice = cmd.DriverPrice
	t.VisaNumber = cmd.VisaNumber

	ok, err := s.store.UpdateFields(ctx, t)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Trip, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) ListByCompany(ctx context.Context, companyID types.ID) ([]Trip, error) {
	return s.store.ListByCompany(ctx, companyID)
}

// NewID returns a 32-char hex identifier.
func NewID() types.ID {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return types.ID(hex.EncodeToString(b[:]))
}
