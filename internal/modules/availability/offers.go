// README: Offer log backed by Redis sets; remembers which drivers a trip was
// surfaced to and when.
package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleetline/internal/types"
)

const (
	offerSetPrefix  = "offers:trip:%s:drivers"
	offeredAtPrefix = "offers:trip:%s:offered_at"
	// Offer keys outlive any realistic matching round but not the keyspace.
	offerTTL = 7 * 24 * time.Hour
)

type Offers struct {
	redis *redis.Client
}

func NewOffers(redis *redis.Client) *Offers {
	return &Offers{redis: redis}
}

// Record stores the offered driver set and stamps the first offer time.
func (o *Offers) Record(ctx context.Context, tripID types.ID, driverIDs []types.ID) error {
	if len(driverIDs) == 0 {
		return nil
	}
	members := make([]interface{}, len(driverIDs))
	for i, d := range driverIDs {
		members[i] = string(d)
	}
	pipe := o.redis.Pipeline()
	pipe.SetNX(ctx, offeredAtKey(tripID), time.Now().UTC().Format(time.RFC3339), offerTTL)
	pipe.SAdd(ctx, offerSetKey(tripID), members...)
	pipe.Expire(ctx, offerSetKey(tripID), offerTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// WasOffered reports whether the driver has already seen the trip.
func (o *Offers) WasOffered(ctx context.Context, tripID, driverID types.ID) (bool, error) {
	return o.redis.SIsMember(ctx, offerSetKey(tripID), string(driverID)).Result()
}

// OfferedAt returns when the trip was first offered, and whether it has been.
func (o *Offers) OfferedAt(ctx context.Context, tripID types.ID) (time.Time, bool, error) {
	val, err := o.redis.Get(ctx, offeredAtKey(tripID)).Result()
	if err == redis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func offerSetKey(tripID types.ID) string {
	return fmt.Sprintf(offerSetPrefix, string(tripID))
}

func offeredAtKey(tripID types.ID) string {
	return fmt.Sprintf(offeredAtPrefix, string(tripID))
}
