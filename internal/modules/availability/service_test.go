// README: Matcher predicate tests against in-memory sources (no database).
package availability

import (
	"context"
	"testing"
	"time"

	"fleetline/internal/modules/trip"
	"fleetline/internal/modules/triprequest"
	"fleetline/internal/types"
)

type fakeTrips struct {
	trips  map[types.ID]*trip.Trip
	active map[types.ID][]trip.Trip
}

func (f *fakeTrips) Get(_ context.Context, id types.ID) (*trip.Trip, error) {
	t, ok := f.trips[id]
	if !ok {
		return nil, trip.ErrNotFound
	}
	return t, nil
}

func (f *fakeTrips) ListPending(_ context.Context) ([]trip.Trip, error) {
	var out []trip.Trip
	for _, t := range f.trips {
		if t.Status == trip.StatusPending {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTrips) ListActiveByDriver(_ context.Context, driverID types.ID) ([]trip.Trip, error) {
	return f.active[driverID], nil
}

type fakeRequests struct {
	open map[string]*triprequest.Request
}

func (f *fakeRequests) FindOpenByTripAndDriver(_ context.Context, tripID, driverID types.ID) (*triprequest.Request, error) {
	return f.open[string(tripID)+"/"+string(driverID)], nil
}

type fakeDrivers struct {
	all []Availability
}

func (f *fakeDrivers) Get(_ context.Context, driverID types.ID) (*Availability, error) {
	for i := range f.all {
		if f.all[i].DriverID == driverID {
			return &f.all[i], nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeDrivers) ListCandidates(_ context.Context, at time.Time, minCapacity int) ([]Availability, error) {
	var out []Availability
	for _, a := range f.all {
		if !a.From.After(at) && !a.To.Before(at) && a.CapacityClass >= minCapacity {
			out = append(out, a)
		}
	}
	return out, nil
}

type recordingOffers struct {
	records map[types.ID][]types.ID
}

func (r *recordingOffers) Record(_ context.Context, tripID types.ID, driverIDs []types.ID) error {
	if r.records == nil {
		r.records = map[types.ID][]types.ID{}
	}
	r.records[tripID] = driverIDs
	return nil
}

var departure = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func window(from, to time.Time, driverID types.ID, location string, capacity int) Availability {
	return Availability{
		DriverID:      driverID,
		Location:      location,
		From:          from,
		To:            to,
		CapacityClass: capacity,
	}
}

func pendingTrip(id types.ID, pickup string, capacity int, departsAt time.Time) *trip.Trip {
	return &trip.Trip{
		ID:            id,
		CompanyID:     "c1",
		Pickup:        pickup,
		Destination:   "Jerusalem",
		DepartsAt:     departsAt,
		Passengers:    capacity,
		CapacityClass: capacity,
		Status:        trip.StatusPending,
	}
}

func newTestService(trips *fakeTrips, requests *fakeRequests, drivers *fakeDrivers) *Service {
	return NewService(drivers, trips, requests, nil, nil, 120*time.Minute)
}

func TestFindDriversForTripPredicates(t *testing.T) {
	from := departure.Add(-4 * time.Hour)
	to := departure.Add(6 * time.Hour)

	trips := &fakeTrips{trips: map[types.ID]*trip.Trip{
		"t1": pendingTrip("t1", "Tel Aviv, Center", 8, departure),
	}}
	requests := &fakeRequests{open: map[string]*triprequest.Request{}}
	drivers := &fakeDrivers{all: []Availability{
		window(from, to, "d_fit", "Tel Aviv", 8),
		window(from, to, "d_big", "Tel Aviv", 10),
		window(from, to, "d_small", "Tel Aviv", 4),
		window(from, to, "d_haifa", "Haifa", 8),
		window(departure.Add(time.Hour), to, "d_late", "Tel Aviv", 8),
	}}

	matched, err := newTestService(trips, requests, drivers).FindDriversForTrip(context.Background(), "t1")
	if err != nil {
		t.Fatalf("find drivers: %v", err)
	}

	got := map[types.ID]bool{}
	for _, a := range matched {
		got[a.DriverID] = true
	}
	if !got["d_fit"] || !got["d_big"] {
		t.Fatalf("expected d_fit and d_big to match, got %v", got)
	}
	if got["d_small"] {
		t.Fatal("capacity 4 must not serve a capacity-8 trip")
	}
	if got["d_haifa"] {
		t.Fatal("a Haifa driver must not serve a Tel Aviv pickup")
	}
	if got["d_late"] {
		t.Fatal("departure before available_from must not match")
	}
}

func TestFindDriversForTripWindowBoundariesInclusive(t *testing.T) {
	trips := &fakeTrips{trips: map[types.ID]*trip.Trip{
		"t1": pendingTrip("t1", "Tel Aviv", 4, departure),
	}}
	requests := &fakeRequests{open: map[string]*triprequest.Request{}}
	drivers := &fakeDrivers{all: []Availability{
		window(departure, departure.Add(time.Hour), "d_from_edge", "Tel Aviv", 4),
		window(departure.Add(-time.Hour), departure, "d_to_edge", "Tel Aviv", 4),
	}}

	matched, err := newTestService(trips, requests, drivers).FindDriversForTrip(context.Background(), "t1")
	if err != nil {
		t.Fatalf("find drivers: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("window boundaries are inclusive; expected 2 matches, got %d", len(matched))
	}
}

func TestFindDriversForTripScheduleConflict(t *testing.T) {
	from := departure.Add(-6 * time.Hour)
	to := departure.Add(6 * time.Hour)
	assigned := types.ID("d_busy")

	near := *pendingTrip("t_near", "Tel Aviv", 4, departure.Add(90*time.Minute))
	near.Status = trip.StatusAssigned
	near.DriverID = &assigned

	trips := &fakeTrips{
		trips: map[types.ID]*trip.Trip{
			"t1": pendingTrip("t1", "Tel Aviv", 4, departure),
		},
		active: map[types.ID][]trip.Trip{
			"d_busy": {near},
		},
	}
	requests := &fakeRequests{open: map[string]*triprequest.Request{}}
	drivers := &fakeDrivers{all: []Availability{
		window(from, to, "d_busy", "Tel Aviv", 4),
		window(from, to, "d_free", "Tel Aviv", 4),
	}}

	matched, err := newTestService(trips, requests, drivers).FindDriversForTrip(context.Background(), "t1")
	if err != nil {
		t.Fatalf("find drivers: %v", err)
	}
	if len(matched) != 1 || matched[0].DriverID != "d_free" {
		t.Fatalf("expected only d_free (90-minute gap conflicts), got %v", matched)
	}
}

func TestFindDriversForTripOpenRequestExcludes(t *testing.T) {
	from := departure.Add(-time.Hour)
	to := departure.Add(time.Hour)

	trips := &fakeTrips{trips: map[types.ID]*trip.Trip{
		"t1": pendingTrip("t1", "Tel Aviv", 4, departure),
	}}
	requests := &fakeRequests{open: map[string]*triprequest.Request{
		"t1/d_pending": {ID: "r1", TripID: "t1", DriverID: "d_pending", Status: triprequest.StatusPending},
	}}
	drivers := &fakeDrivers{all: []Availability{
		window(from, to, "d_pending", "Tel Aviv", 4),
		window(from, to, "d_rejected", "Tel Aviv", 4),
	}}

	// d_rejected's earlier rejection is invisible to FindOpenByTripAndDriver,
	// so the driver is offered the trip again.
	matched, err := newTestService(trips, requests, drivers).FindDriversForTrip(context.Background(), "t1")
	if err != nil {
		t.Fatalf("find drivers: %v", err)
	}
	if len(matched) != 1 || matched[0].DriverID != "d_rejected" {
		t.Fatalf("expected only d_rejected, got %v", matched)
	}
}

func TestFindTripsForDriver(t *testing.T) {
	from := departure.Add(-6 * time.Hour)
	to := departure.Add(6 * time.Hour)

	trips := &fakeTrips{trips: map[types.ID]*trip.Trip{
		"t_match":    pendingTrip("t_match", "Tel Aviv, Center", 4, departure),
		"t_far":      pendingTrip("t_far", "Haifa", 4, departure),
		"t_late":     pendingTrip("t_late", "Tel Aviv", 4, to.Add(time.Hour)),
		"t_big":      pendingTrip("t_big", "Tel Aviv", 10, departure),
		"t_assigned": {ID: "t_assigned", Pickup: "Tel Aviv", CapacityClass: 4, DepartsAt: departure, Status: trip.StatusAssigned},
	}}
	requests := &fakeRequests{open: map[string]*triprequest.Request{}}
	drivers := &fakeDrivers{all: []Availability{
		window(from, to, "d1", "Tel Aviv", 8),
	}}

	matched, err := newTestService(trips, requests, drivers).FindTripsForDriver(context.Background(), "d1")
	if err != nil {
		t.Fatalf("find trips: %v", err)
	}
	if len(matched) != 1 || matched[0].ID != "t_match" {
		t.Fatalf("expected only t_match, got %v", matched)
	}
}

func TestFindDriversForTripRecordsOffers(t *testing.T) {
	from := departure.Add(-time.Hour)
	to := departure.Add(time.Hour)

	trips := &fakeTrips{trips: map[types.ID]*trip.Trip{
		"t1": pendingTrip("t1", "Tel Aviv", 4, departure),
	}}
	requests := &fakeRequests{open: map[string]*triprequest.Request{}}
	drivers := &fakeDrivers{all: []Availability{
		window(from, to, "d1", "Tel Aviv", 4),
	}}
	offers := &recordingOffers{}

	svc := NewService(drivers, trips, requests, offers, nil, 120*time.Minute)
	if _, err := svc.FindDriversForTrip(context.Background(), "t1"); err != nil {
		t.Fatalf("find drivers: %v", err)
	}
	if len(offers.records["t1"]) != 1 || offers.records["t1"][0] != "d1" {
		t.Fatalf("expected the offer log to record d1, got %v", offers.records)
	}
}

func TestHasScheduleConflict(t *testing.T) {
	mk := func(id types.ID, offset time.Duration) trip.Trip {
		return trip.Trip{ID: id, DepartsAt: departure.Add(offset), Status: trip.StatusAssigned}
	}
	window := 120 * time.Minute

	cases := []struct {
		name   string
		active []trip.Trip
		want   bool
	}{
		{"no active trips", nil, false},
		{"90 minutes after", []trip.Trip{mk("a", 90 * time.Minute)}, true},
		{"90 minutes before", []trip.Trip{mk("a", -90 * time.Minute)}, true},
		{"exactly at the window edge", []trip.Trip{mk("a", 120 * time.Minute)}, true},
		{"150 minutes away", []trip.Trip{mk("a", 150 * time.Minute)}, false},
		{"same trip excluded", []trip.Trip{mk("self", 0)}, false},
	}
	for _, tc := range cases {
		got := HasScheduleConflict(tc.active, "self", departure, window)
		if got != tc.want {
			t.Errorf("%s: HasScheduleConflict = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAvailabilityCovers(t *testing.T) {
	a := Availability{From: departure.Add(-time.Hour), To: departure.Add(time.Hour)}
	cases := []struct {
		at   time.Time
		want bool
	}{
		{departure, true},
		{a.From, true},
		{a.To, true},
		{a.From.Add(-time.Second), false},
		{a.To.Add(time.Second), false},
	}
	for _, tc := range cases {
		if got := a.Covers(tc.at); got != tc.want {
			t.Errorf("Covers(%v) = %v, want %v", tc.at, got, tc.want)
		}
	}
}
