// README: Location matching policy. Named so the textual heuristic can be
// swapped for a structured comparison without touching callers.
package availability

import (
	"context"
	"strings"
)

// LocationPolicy decides whether a driver's stated location serves a trip's
// pickup location.
type LocationPolicy interface {
	Match(ctx context.Context, driverLocation, pickup string) bool
}

// TextPolicy matches free-text locations case-insensitively, normalizing
// commas and surrounding whitespace, and accepting a substring hit in either
// direction. "Tel Aviv" serves "Tel Aviv, Center"; it does not serve "Haifa".
type TextPolicy struct{}

func (TextPolicy) Match(_ context.Context, driverLocation, pickup string) bool {
	a := normalizeLocation(driverLocation)
	b := normalizeLocation(pickup)
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func normalizeLocation(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Join(strings.Fields(s), " ")
}
