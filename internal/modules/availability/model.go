// README: Driver availability record: where, when, and how big a vehicle.
package availability

import (
	"time"

	"fleetline/internal/types"
)

// Availability is mutated only by its driver and read by the matcher. It is a
// precondition input, not a workflow entity.
type Availability struct {
	DriverID      types.ID
	Location      string
	From          time.Time
	To            time.Time
	CapacityClass int
	UpdatedAt     time.Time
}

// Covers reports whether the departure instant falls inside the window,
// boundaries included.
func (a Availability) Covers(at time.Time) bool {
	return !at.Before(a.From) && !at.After(a.To)
}
