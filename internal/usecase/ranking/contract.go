package ranking

import (
	"context"

	"github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/venue"
)

// CatalogReader loads external items by category.
type CatalogReader interface {
	ListByCategory(ctx context.Context, tag category.Tag) ([]catalog.Item, error)
}

// VenueReader loads venue profiles.
type VenueReader interface {
	Get(ctx context.Context, id string) (*venue.Profile, error)
}
