// README: Trip request aggregate: a directional proposal linking a driver to a trip.
package triprequest

import (
	"time"

	"fleetline/internal/types"
)

type Direction string

const (
	// DriverToCompany is a driver asking for a trip.
	DriverToCompany Direction = "driver_to_company"
	// CompanyToDriver is a company inviting a driver.
	CompanyToDriver Direction = "company_to_driver"
	// ReassignmentApproval is a company asking its assigned driver to release
	// the trip.
	ReassignmentApproval Direction = "reassignment_approval"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Request stays pending until explicitly resolved; there is no expiry.
type Request struct {
	ID         types.ID
	TripID     types.ID
	DriverID   types.ID
	Direction  Direction
	Status     Status
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// Open reports whether the request still counts against re-matching. Rejected
// requests do not: a driver may propose again after a rejection.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusAccepted
}
