package discover

import (
	"context"
	"sync"

	"github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	domdisc "github.com/spotive-cloud/discovery/internal/domain/discover"
	"github.com/spotive-cloud/discovery/internal/domain/geo"
	"github.com/spotive-cloud/discovery/internal/domain/venue"
	"github.com/spotive-cloud/discovery/internal/usecase/mapper"
)

// mockMapper implements Mapper for tests.
type mockMapper struct {
	resolveFn func(ctx context.Context, interest string) (mapper.Resolution, error)
	lastInput string
}

func (m *mockMapper) Resolve(ctx context.Context, interest string) (mapper.Resolution, error) {
	m.lastInput = interest
	if m.resolveFn != nil {
		return m.resolveFn(ctx, interest)
	}
	return mapper.Resolution{
		Tags:   []category.Tag{category.Concert},
		Method: domdisc.ResolvedByClassifier,
	}, nil
}

// mockRanker implements Ranker for tests.
type mockRanker struct {
	rankFn func(ctx context.Context, tags []category.Tag, venueID string) ([]domdisc.RankedResult, error)
	calls  int
}

func (m *mockRanker) Rank(ctx context.Context, tags []category.Tag, venueID string) ([]domdisc.RankedResult, *venue.Profile, error) {
	m.calls++
	var prof *venue.Profile
	if venueID != "" {
		prof = &venue.Profile{ID: venueID, Name: "Test Venue", SearchRadiusKm: 10}
	}
	if m.rankFn != nil {
		results, err := m.rankFn(ctx, tags, venueID)
		if err != nil {
			return nil, nil, err
		}
		return results, prof, nil
	}
	return []domdisc.RankedResult{
		{Item: catalog.Item{ID: "ev1", Name: "Jazz Night", LocationText: "Blue Note"}, Distance: geo.KnownDistance(2)},
	}, prof, nil
}

// mockPrefs implements Preferences for tests.
type mockPrefs struct {
	mu       sync.Mutex
	blendFn  func(ctx context.Context, identity, query string) (string, error)
	trackErr error
	tracked  []trackedSearch
}

type trackedSearch struct {
	identity    string
	query       string
	tags        []category.Tag
	resultCount int
}

func (m *mockPrefs) Blend(ctx context.Context, identity, query string) (string, error) {
	if m.blendFn != nil {
		return m.blendFn(ctx, identity, query)
	}
	return query, nil
}

func (m *mockPrefs) Track(_ context.Context, identity, query string, tags []category.Tag, resultCount int) error {
	if m.trackErr != nil {
		return m.trackErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tracked = append(m.tracked, trackedSearch{identity, query, tags, resultCount})
	return nil
}

// mockPublisher implements Publisher for tests.
type mockPublisher struct {
	mu        sync.Mutex
	failures  int
	published []*domdisc.Envelope
}

func (m *mockPublisher) Publish(_ context.Context, env *domdisc.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errPublishDown
	}
	m.published = append(m.published, env)
	return nil
}

// mockDescriber implements Describer for tests.
type mockDescriber struct {
	describeFn func(ctx context.Context, item catalog.Item) (string, error)
}

func (m *mockDescriber) Describe(ctx context.Context, item catalog.Item) (string, error) {
	if m.describeFn != nil {
		return m.describeFn(ctx, item)
	}
	return "A lovely evening of " + item.Name + ".", nil
}
