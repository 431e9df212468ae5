package ranking

import (
	"context"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/geo"
	"github.com/spotive-cloud/discovery/internal/domain/venue"
)

// mockCatalog implements CatalogReader for tests.
type mockCatalog struct {
	listFn func(ctx context.Context, tag category.Tag) ([]catalog.Item, error)
	calls  int
}

func (m *mockCatalog) ListByCategory(ctx context.Context, tag category.Tag) ([]catalog.Item, error) {
	m.calls++
	if m.listFn != nil {
		return m.listFn(ctx, tag)
	}
	return nil, nil
}

// mockVenues implements VenueReader for tests.
type mockVenues struct {
	getFn func(ctx context.Context, id string) (*venue.Profile, error)
}

func (m *mockVenues) Get(ctx context.Context, id string) (*venue.Profile, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrVenueNotFound
}

// testVenue is centered at the origin with a 10km radius and a spa.
func testVenue() *venue.Profile {
	return &venue.Profile{
		ID:             "hotel-1",
		Name:           "Harbor Hotel",
		Area:           "Harborside",
		Coords:         geo.Point{Lat: 0, Lon: 0},
		SearchRadiusKm: 10,
		Services: []venue.Service{
			{Kind: "spa", Name: "Quan Spa", LocationText: "Level 2"},
			{Kind: "restaurant", Name: "Pier Kitchen"},
		},
	}
}

// itemAt builds an external item roughly km kilometers east of the origin.
func itemAt(id string, tag category.Tag, km float64) catalog.Item {
	lon := km / 111.19 // degrees of longitude per km at the equator
	return catalog.Item{
		ID:       id,
		Name:     "Item " + id,
		Category: tag,
		Coords:   &geo.Point{Lat: 0, Lon: lon},
		Origin:   catalog.OriginExternal,
	}
}
