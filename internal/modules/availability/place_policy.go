// README: Structured location policy: compares Places ids instead of text.
package availability

import (
	"context"
	"log"
	"sync"
)

// PlaceResolver turns a free-text location into a canonical place id.
type PlaceResolver interface {
	ResolvePlaceID(ctx context.Context, query string) (string, error)
}

// PlacePolicy matches two locations when they resolve to the same place id.
// Resolution results are cached per process; on resolver failure it falls back
// to the textual policy so matching keeps working without the API.
type PlacePolicy struct {
	resolver PlaceResolver
	fallback TextPolicy

	mu    sync.Mutex
	cache map[string]string
}

func NewPlacePolicy(resolver PlaceResolver) *PlacePolicy {
	return &PlacePolicy{
		resolver: resolver,
		cache:    make(map[string]string),
	}
}

func (p *PlacePolicy) Match(ctx context.Context, driverLocation, pickup string) bool {
	a, err := p.resolve(ctx, driverLocation)
	if err != nil {
		log.Printf("place resolve %q failed, using text match: %v", driverLocation, err)
		return p.fallback.Match(ctx, driverLocation, pickup)
	}
	b, err := p.resolve(ctx, pickup)
	if err != nil {
		log.Printf("place resolve %q failed, using text match: %v", pickup, err)
		return p.fallback.Match(ctx, driverLocation, pickup)
	}
	return a == b
}

func (p *PlacePolicy) resolve(ctx context.Context, location string) (string, error) {
	key := normalizeLocation(location)

	p.mu.Lock()
	id, ok := p.cache[key]
	p.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := p.resolver.ResolvePlaceID(ctx, location)
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.cache[key] = id
	p.mu.Unlock()
	return id, nil
}
