package preference

import (
	"context"
	"time"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/guest"
)

// mockRepo implements Repository with in-memory state for tests.
type mockRepo struct {
	metas     map[string]guest.Meta
	counts    map[string]map[category.Tag]int64
	searches  map[string][]guest.SearchEntry
	overrides map[string]*guest.Overrides

	countsErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		metas:     make(map[string]guest.Meta),
		counts:    make(map[string]map[category.Tag]int64),
		searches:  make(map[string][]guest.SearchEntry),
		overrides: make(map[string]*guest.Overrides),
	}
}

func (m *mockRepo) EnsureGuest(_ context.Context, identity string, now time.Time) (bool, error) {
	meta, ok := m.metas[identity]
	if !ok {
		m.metas[identity] = guest.Meta{CreatedAt: now, LastActive: now}
		return true, nil
	}
	meta.LastActive = now
	m.metas[identity] = meta
	return false, nil
}

func (m *mockRepo) IncrementSearches(_ context.Context, identity string) (int64, error) {
	meta := m.metas[identity]
	meta.TotalSearches++
	m.metas[identity] = meta
	return meta.TotalSearches, nil
}

func (m *mockRepo) IncrementCategory(_ context.Context, identity string, tag category.Tag) (int64, error) {
	c, ok := m.counts[identity]
	if !ok {
		c = make(map[category.Tag]int64)
		m.counts[identity] = c
	}
	c[tag]++
	return c[tag], nil
}

func (m *mockRepo) CategoryCounts(_ context.Context, identity string) (map[category.Tag]int64, error) {
	if m.countsErr != nil {
		return nil, m.countsErr
	}
	out := make(map[category.Tag]int64, len(m.counts[identity]))
	for k, v := range m.counts[identity] {
		out[k] = v
	}
	return out, nil
}

func (m *mockRepo) AppendSearch(_ context.Context, identity string, entry guest.SearchEntry) error {
	m.searches[identity] = append(m.searches[identity], entry)
	return nil
}

func (m *mockRepo) RecentSearches(_ context.Context, identity string, limit int) ([]guest.SearchEntry, error) {
	all := m.searches[identity]
	out := make([]guest.SearchEntry, 0, len(all))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (m *mockRepo) Meta(_ context.Context, identity string) (guest.Meta, error) {
	meta, ok := m.metas[identity]
	if !ok {
		return guest.Meta{}, domain.ErrGuestNotFound
	}
	return meta, nil
}

func (m *mockRepo) Overrides(_ context.Context, identity string) (*guest.Overrides, error) {
	return m.overrides[identity], nil
}

func (m *mockRepo) SetOverrides(_ context.Context, identity string, o *guest.Overrides) error {
	m.overrides[identity] = o
	return nil
}
