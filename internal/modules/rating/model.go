// README: Cross-rating left by one trip party about the other.
package rating

import (
	"time"

	"fleetline/internal/types"
)

type Record struct {
	ID        types.ID
	TripID    types.ID
	RaterID   types.ID
	RateeID   types.ID
	Score     int
	Comment   string
	CreatedAt time.Time
}
