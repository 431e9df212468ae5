// Package ranking assembles and orders recommendation candidates from
// venue services and the external catalog.
package ranking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/discover"
	"github.com/spotive-cloud/discovery/internal/domain/geo"
	domvenue "github.com/spotive-cloud/discovery/internal/domain/venue"
)

// retryBackoff is the pause between catalog read attempts.
const retryBackoff = 50 * time.Millisecond

// Service ranks catalog items and venue services for a category set.
type Service struct {
	catalog CatalogReader
	venues  VenueReader
	vocab   category.Vocabulary
	limit   int
	retries int
	logger  *zap.Logger
}

// New creates a ranking service. limit caps the result list; retries is
// how many extra catalog read attempts are made per category.
func New(cat CatalogReader, venues VenueReader, vocab category.Vocabulary, limit, retries int, logger *zap.Logger) *Service {
	if limit <= 0 {
		limit = 5
	}
	return &Service{
		catalog: cat,
		venues:  venues,
		vocab:   vocab,
		limit:   limit,
		retries: retries,
		logger:  logger,
	}
}

// Rank returns up to limit results for the resolved categories, scoped
// to the venue when venueID is non-empty, along with the loaded venue
// profile. Venue services matching a resolved category always rank
// first at distance zero. Returns domain.ErrEmptyResultSet when nothing
// qualifies.
func (s *Service) Rank(ctx context.Context, tags []category.Tag, venueID string) ([]discover.RankedResult, *domvenue.Profile, error) {
	if len(tags) == 0 {
		return nil, nil, fmt.Errorf("no categories to rank: %w", domain.ErrValidation)
	}

	var prof *domvenue.Profile
	if venueID != "" {
		var err error
		prof, err = s.venues.Get(ctx, venueID)
		if err != nil {
			return nil, nil, fmt.Errorf("rank: %w", err)
		}
	}

	results := s.localResults(prof, tags)
	external, err := s.externalResults(ctx, tags, prof)
	if err != nil {
		return nil, nil, err
	}
	results = append(results, external...)

	if len(results) == 0 {
		return nil, nil, fmt.Errorf("no results for %v: %w", tags, domain.ErrEmptyResultSet)
	}

	sortResults(results)
	if len(results) > s.limit {
		results = results[:s.limit]
	}
	return results, prof, nil
}

// localResults converts matching venue services into distance-zero items.
func (s *Service) localResults(prof *domvenue.Profile, tags []category.Tag) []discover.RankedResult {
	if prof == nil {
		return nil
	}
	resolved := make(map[category.Tag]bool, len(tags))
	for _, t := range tags {
		resolved[t] = true
	}

	var out []discover.RankedResult
	for _, svc := range prof.Services {
		tag, ok := s.vocab.ServiceKindTag(svc.Kind)
		if !ok || !resolved[tag] {
			continue
		}
		out = append(out, discover.RankedResult{
			Item: catalog.Item{
				ID:           prof.ID + ":" + svc.Kind + ":" + slug(svc.Name),
				Name:         svc.Name,
				Category:     tag,
				LocationText: svc.LocationText,
				Area:         prof.Area,
				Schedule:     svc.Schedule,
				Price:        svc.Price,
				MediaLink:    svc.MediaLink,
				BookingLink:  svc.BookingLink,
				Origin:       catalog.OriginLocalService,
				ServiceKind:  svc.Kind,
				Description:  svc.Description,
			},
			Distance: geo.KnownDistance(0),
		})
	}
	return out
}

// externalResults loads catalog items per category and applies the
// venue's distance filter.
func (s *Service) externalResults(ctx context.Context, tags []category.Tag, prof *domvenue.Profile) ([]discover.RankedResult, error) {
	seen := make(map[string]bool)
	var out []discover.RankedResult

	for _, tag := range tags {
		items, err := s.listWithRetry(ctx, tag)
		if err != nil {
			return nil, fmt.Errorf("catalog %s: %w", tag, err)
		}
		for _, item := range items {
			if seen[item.ID] {
				continue
			}
			seen[item.ID] = true

			dist, keep := placeItem(item, prof)
			if !keep {
				continue
			}
			out = append(out, discover.RankedResult{Item: item, Distance: dist})
		}
	}
	return out, nil
}

// listWithRetry reads one category, retrying transient store failures.
func (s *Service) listWithRetry(ctx context.Context, tag category.Tag) ([]catalog.Item, error) {
	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff):
			}
			s.logger.Warn("retrying catalog read",
				zap.String("category", string(tag)),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr))
		}
		items, err := s.catalog.ListByCategory(ctx, tag)
		if err == nil {
			return items, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// placeItem decides an item's distance relative to the venue and whether
// it stays in the result set. Without a venue every item is kept with an
// unmatched distance.
func placeItem(item catalog.Item, prof *domvenue.Profile) (geo.Distance, bool) {
	if prof == nil {
		return geo.UnmatchedDistance(), true
	}
	if item.HasCoords() {
		km := geo.Between(prof.Coords, *item.Coords)
		if prof.SearchRadiusKm > 0 && km > prof.SearchRadiusKm {
			return geo.Distance{}, false
		}
		return geo.KnownDistance(km), true
	}
	if item.Area != "" && strings.EqualFold(item.Area, prof.Area) {
		return geo.AreaMatchedDistance(), true
	}
	// Venue-scoped requests drop items that cannot be placed at all.
	return geo.Distance{}, false
}

// sortResults orders by distance class, then by item ID so equal
// candidates rank the same regardless of load order.
func sortResults(results []discover.RankedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance.Less(results[j].Distance) {
			return true
		}
		if results[j].Distance.Less(results[i].Distance) {
			return false
		}
		return results[i].Item.ID < results[j].Item.ID
	})
}

// slug makes a service name safe for use inside an item ID.
func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
