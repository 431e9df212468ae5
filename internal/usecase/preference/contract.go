package preference

import (
	"context"
	"time"

	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/guest"
)

// Repository defines the storage contract for guest preferences.
type Repository interface {
	EnsureGuest(ctx context.Context, identity string, now time.Time) (bool, error)
	IncrementSearches(ctx context.Context, identity string) (int64, error)
	IncrementCategory(ctx context.Context, identity string, tag category.Tag) (int64, error)
	CategoryCounts(ctx context.Context, identity string) (map[category.Tag]int64, error)
	AppendSearch(ctx context.Context, identity string, entry guest.SearchEntry) error
	RecentSearches(ctx context.Context, identity string, limit int) ([]guest.SearchEntry, error)
	Meta(ctx context.Context, identity string) (guest.Meta, error)
	Overrides(ctx context.Context, identity string) (*guest.Overrides, error)
	SetOverrides(ctx context.Context, identity string, o *guest.Overrides) error
}

// Weighting scores a raw category count for ranking top categories.
// Pluggable so recency decay can replace plain counts later without
// touching the service.
type Weighting interface {
	Score(count int64) float64
}

// CountWeighting scores categories by their raw search count.
type CountWeighting struct{}

// Score implements Weighting.
func (CountWeighting) Score(count int64) float64 { return float64(count) }
