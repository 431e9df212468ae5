// Package preference learns what guests look for and folds it back into
// later searches.
package preference

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/guest"
)

// topBlendCount is how many learned categories flow into a blended query.
const topBlendCount = 3

// recencyScan bounds how much of the search log the tie-break reads.
const recencyScan = 50

// Service tracks guest searches and derives their preferences.
type Service struct {
	repo      Repository
	vocab     category.Vocabulary
	weighting Weighting
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a preference service.
func New(repo Repository, vocab category.Vocabulary, weighting Weighting, logger *zap.Logger) *Service {
	if weighting == nil {
		weighting = CountWeighting{}
	}
	return &Service{
		repo:      repo,
		vocab:     vocab,
		weighting: weighting,
		logger:    logger,
		now:       time.Now,
	}
}

// Track records one completed search for the guest: creates the guest
// record on first contact, bumps the search and category counters and
// appends to the search log. Counter increments are atomic so
// concurrent searches never lose updates.
func (s *Service) Track(ctx context.Context, identity, query string, tags []category.Tag, resultCount int) error {
	if err := guest.ValidateIdentity(identity); err != nil {
		return err
	}

	now := s.now()
	if _, err := s.repo.EnsureGuest(ctx, identity, now); err != nil {
		return fmt.Errorf("track %s: %w", identity, err)
	}
	if _, err := s.repo.IncrementSearches(ctx, identity); err != nil {
		return fmt.Errorf("track %s: %w", identity, err)
	}
	for _, tag := range tags {
		if _, err := s.repo.IncrementCategory(ctx, identity, tag); err != nil {
			return fmt.Errorf("track %s category %s: %w", identity, tag, err)
		}
	}

	entry := guest.SearchEntry{
		Query:       query,
		Categories:  tags,
		Timestamp:   now,
		ResultCount: resultCount,
	}
	if err := s.repo.AppendSearch(ctx, identity, entry); err != nil {
		return fmt.Errorf("track %s log: %w", identity, err)
	}
	return nil
}

// TopCategories returns up to k learned categories, best first. Ties on
// score go to the category the guest searched more recently; remaining
// ties fall back to vocabulary order so the result is deterministic.
func (s *Service) TopCategories(ctx context.Context, identity string, k int) ([]category.Tag, error) {
	counts, err := s.repo.CategoryCounts(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("top categories %s: %w", identity, err)
	}
	if len(counts) == 0 {
		return nil, nil
	}

	recency := s.recencyRanks(ctx, identity)

	tags := make([]category.Tag, 0, len(counts))
	for tag := range counts {
		if s.vocab.Contains(tag) {
			tags = append(tags, tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool {
		si, sj := s.weighting.Score(counts[tags[i]]), s.weighting.Score(counts[tags[j]])
		if si != sj {
			return si > sj
		}
		ri, rj := recencyRank(recency, tags[i]), recencyRank(recency, tags[j])
		if ri != rj {
			return ri < rj
		}
		return s.vocab.Index(tags[i]) < s.vocab.Index(tags[j])
	})

	if k > 0 && len(tags) > k {
		tags = tags[:k]
	}
	return tags, nil
}

// Blend folds the guest's top categories into the raw query so the
// mapper sees both what they asked for and what they usually like.
// Unknown guests and guests without history get the query unchanged.
func (s *Service) Blend(ctx context.Context, identity, query string) (string, error) {
	top, err := s.TopCategories(ctx, identity, topBlendCount)
	if err != nil {
		return "", err
	}
	if len(top) == 0 {
		return query, nil
	}

	parts := make([]string, 0, len(top))
	for _, tag := range top {
		parts = append(parts, string(tag))
	}
	learned := strings.Join(parts, ", ")

	if strings.TrimSpace(query) == "" {
		return learned, nil
	}
	return query + ", " + learned, nil
}

// Profile returns the guest's full preference record, or
// domain.ErrGuestNotFound.
func (s *Service) Profile(ctx context.Context, identity string) (guest.PreferenceRecord, error) {
	if err := guest.ValidateIdentity(identity); err != nil {
		return guest.PreferenceRecord{}, err
	}

	meta, err := s.repo.Meta(ctx, identity)
	if err != nil {
		return guest.PreferenceRecord{}, fmt.Errorf("profile %s: %w", identity, err)
	}

	counts, err := s.repo.CategoryCounts(ctx, identity)
	if err != nil {
		return guest.PreferenceRecord{}, fmt.Errorf("profile %s: %w", identity, err)
	}
	ordered, err := s.TopCategories(ctx, identity, 0)
	if err != nil {
		return guest.PreferenceRecord{}, fmt.Errorf("profile %s: %w", identity, err)
	}
	countList := make([]guest.CategoryCount, 0, len(ordered))
	for _, tag := range ordered {
		countList = append(countList, guest.CategoryCount{Tag: tag, Count: counts[tag]})
	}
	top3 := ordered
	if len(top3) > topBlendCount {
		top3 = top3[:topBlendCount]
	}

	searches, err := s.repo.RecentSearches(ctx, identity, recencyScan)
	if err != nil {
		return guest.PreferenceRecord{}, fmt.Errorf("profile %s: %w", identity, err)
	}
	overrides, err := s.repo.Overrides(ctx, identity)
	if err != nil {
		return guest.PreferenceRecord{}, fmt.Errorf("profile %s: %w", identity, err)
	}

	return guest.PreferenceRecord{
		Identity:  identity,
		Meta:      meta,
		Counts:    countList,
		Top3:      top3,
		Searches:  searches,
		Overrides: overrides,
	}, nil
}

// UpdateOverrides merges the provided fields into the guest's declared
// preferences. Absent fields keep their stored value. The guest record
// is created if it does not exist yet.
func (s *Service) UpdateOverrides(ctx context.Context, identity string, patch *guest.Overrides) (*guest.Overrides, error) {
	if err := guest.ValidateIdentity(identity); err != nil {
		return nil, err
	}
	if patch == nil {
		return nil, fmt.Errorf("no fields to update: %w", domain.ErrValidation)
	}
	if err := s.validateOverrides(patch); err != nil {
		return nil, err
	}

	if _, err := s.repo.EnsureGuest(ctx, identity, s.now()); err != nil {
		return nil, fmt.Errorf("update overrides %s: %w", identity, err)
	}

	current, err := s.repo.Overrides(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("update overrides %s: %w", identity, err)
	}
	if current == nil {
		current = &guest.Overrides{}
	}

	if patch.PreferredCategories != nil {
		current.PreferredCategories = patch.PreferredCategories
	}
	if patch.PreferredLocations != nil {
		current.PreferredLocations = patch.PreferredLocations
	}
	if patch.PriceRange != nil {
		current.PriceRange = patch.PriceRange
	}
	if patch.AvoidCategories != nil {
		current.AvoidCategories = patch.AvoidCategories
	}

	if err := s.repo.SetOverrides(ctx, identity, current); err != nil {
		return nil, fmt.Errorf("update overrides %s: %w", identity, err)
	}
	return current, nil
}

// validateOverrides rejects tags outside the vocabulary and inverted
// price ranges.
func (s *Service) validateOverrides(o *guest.Overrides) error {
	for _, tag := range o.PreferredCategories {
		if !s.vocab.Contains(tag) {
			return fmt.Errorf("unknown category %q: %w", tag, domain.ErrValidation)
		}
	}
	for _, tag := range o.AvoidCategories {
		if !s.vocab.Contains(tag) {
			return fmt.Errorf("unknown category %q: %w", tag, domain.ErrValidation)
		}
	}
	if o.PriceRange != nil && o.PriceRange.Min > o.PriceRange.Max {
		return fmt.Errorf("price range min above max: %w", domain.ErrValidation)
	}
	return nil
}

// recencyRanks maps each category to its first position in the search
// log scanned newest first. Guests without a log get no tie-break.
func (s *Service) recencyRanks(ctx context.Context, identity string) map[category.Tag]int {
	entries, err := s.repo.RecentSearches(ctx, identity, recencyScan)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Debug("recency tie-break unavailable",
				zap.String("identity", identity),
				zap.Error(err))
		}
		return nil
	}
	ranks := make(map[category.Tag]int)
	for i, e := range entries {
		for _, tag := range e.Categories {
			if _, seen := ranks[tag]; !seen {
				ranks[tag] = i
			}
		}
	}
	return ranks
}

func recencyRank(ranks map[category.Tag]int, tag category.Tag) int {
	if r, ok := ranks[tag]; ok {
		return r
	}
	return int(^uint(0) >> 1)
}
