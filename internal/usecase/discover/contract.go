package discover

import (
	"context"

	"github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	domdisc "github.com/spotive-cloud/discovery/internal/domain/discover"
	"github.com/spotive-cloud/discovery/internal/domain/venue"
	"github.com/spotive-cloud/discovery/internal/usecase/mapper"
)

// Mapper resolves interest text to categories.
type Mapper interface {
	Resolve(ctx context.Context, interest string) (mapper.Resolution, error)
}

// Ranker assembles and orders recommendation candidates, returning the
// venue profile the search was scoped to (nil without a venue).
type Ranker interface {
	Rank(ctx context.Context, tags []category.Tag, venueID string) ([]domdisc.RankedResult, *venue.Profile, error)
}

// Preferences personalizes queries and records completed searches.
type Preferences interface {
	Blend(ctx context.Context, identity, query string) (string, error)
	Track(ctx context.Context, identity, query string, tags []category.Tag, resultCount int) error
}

// Publisher stores a result envelope and announces it to listeners.
type Publisher interface {
	Publish(ctx context.Context, env *domdisc.Envelope) error
}

// Describer writes a short conversational blurb for one item.
type Describer interface {
	Describe(ctx context.Context, item catalog.Item) (string, error)
}
