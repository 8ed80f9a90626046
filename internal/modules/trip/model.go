// README: Trip aggregate and status definitions.
package trip

import (
	"time"

	"fleetline/internal/types"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Trip is a transport job posted by a company. DriverID is set exactly while
// the trip is assigned, in progress, or completed; a pending trip never
// carries a driver.
type Trip struct {
	ID            types.ID
	CompanyID     types.ID
	DriverID      *types.ID
	Pickup        string
	Destination   string
	DepartsAt     time.Time
	Passengers    int
	CapacityClass int
	CompanyPrice  types.Money
	DriverPrice   types.Money
	VisaNumber    *string
	Status        Status
	CreatedAt     time.Time
	AssignedAt    *time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
}

// AllowedTransitions represents the trip state flow as code. Cancellation is
// company-only and legal only while the trip is still unclaimed.
var AllowedTransitions = map[Status][]Status{
	StatusPending:    {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusInProgress, StatusPending},
	StatusInProgress: {StatusCompleted},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Active reports whether the trip occupies the driver's schedule.
func (s Status) Active() bool {
	return s == StatusAssigned || s == StatusInProgress
}
