// README: Availability matcher: computes compatible driver/trip counterpart
// sets from capacity, location, time window, schedule conflicts, and open
// proposals.
package availability

import (
	"context"
	"log"
	"time"

	"fleetline/internal/modules/trip"
	"fleetline/internal/modules/triprequest"
	"fleetline/internal/types"
)

// TripSource is the slice of the trip store the matcher reads.
type TripSource interface {
	Get(ctx context.Context, id types.ID) (*trip.Trip, error)
	ListPending(ctx context.Context) ([]trip.Trip, error)
	ListActiveByDriver(ctx context.Context, driverID types.ID) ([]trip.Trip, error)
}

// RequestSource answers the duplicate-proposal predicate.
type RequestSource interface {
	FindOpenByTripAndDriver(ctx context.Context, tripID, driverID types.ID) (*triprequest.Request, error)
}

// DriverSource is the slice of the availability store the matcher reads.
type DriverSource interface {
	Get(ctx context.Context, driverID types.ID) (*Availability, error)
	ListCandidates(ctx context.Context, at time.Time, minCapacity int) ([]Availability, error)
}

// OfferLog records which drivers a trip was surfaced to. Recording is
// best-effort; matcher results never depend on it.
type OfferLog interface {
	Record(ctx context.Context, tripID types.ID, driverIDs []types.ID) error
}

type Service struct {
	drivers  DriverSource
	trips    TripSource
	requests RequestSource
	offers   OfferLog
	policy   LocationPolicy
	window   time.Duration
}

func NewService(drivers DriverSource, trips TripSource, requests RequestSource, offers OfferLog, policy LocationPolicy, window time.Duration) *Service {
	if policy == nil {
		policy = TextPolicy{}
	}
	return &Service{
		drivers:  drivers,
		trips:    trips,
		requests: requests,
		offers:   offers,
		policy:   policy,
		window:   window,
	}
}

// FindDriversForTrip returns every driver whose availability satisfies all
// matching predicates for the trip. This is an O(drivers x active-trips) scan
// per call; fine at brokerage scale, revisit before it grows past that.
func (s *Service) FindDriversForTrip(ctx context.Context, tripID types.ID) ([]Availability, error) {
	t, err := s.trips.Get(ctx, tripID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.drivers.ListCandidates(ctx, t.DepartsAt, t.CapacityClass)
	if err != nil {
		return nil, err
	}

	var matched []Availability
	for _, a := range candidates {
		ok, err := s.driverFits(ctx, a, t)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, a)
		}
	}

	if s.offers != nil && len(matched) > 0 {
		ids := make([]types.ID, len(matched))
		for i, a := range matched {
			ids[i] = a.DriverID
		}
		if err := s.offers.Record(ctx, t.ID, ids); err != nil {
			log.Printf("offer log record failed for trip %s: %v", t.ID, err)
		}
	}
	return matched, nil
}

// FindTripsForDriver returns every pending trip the driver is compatible with.
func (s *Service) FindTripsForDriver(ctx context.Context, driverID types.ID) ([]trip.Trip, error) {
	a, err := s.drivers.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}

	pending, err := s.trips.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	var matched []trip.Trip
	for _, t := range pending {
		ok, err := s.driverFits(ctx, *a, &t)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

// driverFits applies the full predicate set for one driver/trip pair.
func (s *Service) driverFits(ctx context.Context, a Availability, t *trip.Trip) (bool, error) {
	if a.CapacityClass < t.CapacityClass {
		return false, nil
	}
	if !a.Covers(t.DepartsAt) {
		return false, nil
	}
	if !s.policy.Match(ctx, a.Location, t.Pickup) {
		return false, nil
	}

	active, err := s.trips.ListActiveByDriver(ctx, a.DriverID)
	if err != nil {
		return false, err
	}
	if HasScheduleConflict(active, t.ID, t.DepartsAt, s.window) {
		return false, nil
	}

	// A rejected proposal does not block re-matching; only pending and
	// accepted ones do.
	open, err := s.requests.FindOpenByTripAndDriver(ctx, t.ID, a.DriverID)
	if err != nil {
		return false, err
	}
	return open == nil, nil
}

// HasScheduleConflict reports whether any of the driver's active trips departs
// within the buffer window of the given departure, the trip itself excluded.
// The window is symmetric and inclusive.
func HasScheduleConflict(active []trip.Trip, excludeTripID types.ID, departsAt time.Time, window time.Duration) bool {
	for _, t := range active {
		if t.ID == excludeTripID {
			continue
		}
		gap := t.DepartsAt.Sub(departsAt)
		if gap < 0 {
			gap = -gap
		}
		if gap <= window {
			return true
		}
	}
	return false
}
