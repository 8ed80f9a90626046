// README: Google Places lookups used to resolve free-text locations.
package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// Place is a simplified location result.
type Place struct {
	Name    string
	Address string
	PlaceID string
}

// PlacesService handles interactions with the Google Places API.
type PlacesService struct {
	client *maps.Client
}

func NewPlacesService(apiKey string) (*PlacesService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &PlacesService{client: client}, nil
}

// Resolve maps a free-text location to its best Places match.
func (s *PlacesService) Resolve(ctx context.Context, query string) (Place, error) {
	resp, err := s.client.TextSearch(ctx, &maps.TextSearchRequest{
		Query:    query,
		Language: "en",
	})
	if err != nil {
		return Place{}, fmt.Errorf("places api error: %w", err)
	}
	if len(resp.Results) == 0 {
		return Place{}, fmt.Errorf("no places result for %q", query)
	}
	r := resp.Results[0]
	return Place{
		Name:    r.Name,
		Address: r.FormattedAddress,
		PlaceID: r.PlaceID,
	}, nil
}

// ResolvePlaceID returns only the place id for a free-text location.
func (s *PlacesService) ResolvePlaceID(ctx context.Context, query string) (string, error) {
	p, err := s.Resolve(ctx, query)
	if err != nil {
		return "", err
	}
	return p.PlaceID, nil
}
