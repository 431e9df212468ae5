package chi

import (
	"context"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	domdisc "github.com/spotive-cloud/discovery/internal/domain/discover"
	"github.com/spotive-cloud/discovery/internal/domain/geo"
	"github.com/spotive-cloud/discovery/internal/domain/guest"
	"github.com/spotive-cloud/discovery/internal/domain/venue"
	discoveruc "github.com/spotive-cloud/discovery/internal/usecase/discover"
	healthuc "github.com/spotive-cloud/discovery/internal/usecase/health"
	"github.com/spotive-cloud/discovery/internal/usecase/mapper"
	preferenceuc "github.com/spotive-cloud/discovery/internal/usecase/preference"
)

// fakeMapper resolves everything to the concert category unless told
// otherwise.
type fakeMapper struct {
	err error
}

func (f *fakeMapper) Resolve(_ context.Context, _ string) (mapper.Resolution, error) {
	if f.err != nil {
		return mapper.Resolution{}, f.err
	}
	return mapper.Resolution{
		Tags:   []category.Tag{category.Concert},
		Method: domdisc.ResolvedByClassifier,
	}, nil
}

// fakeRanker returns one fixed result.
type fakeRanker struct {
	err error
}

func (f *fakeRanker) Rank(_ context.Context, tags []category.Tag, venueID string) ([]domdisc.RankedResult, *venue.Profile, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	var prof *venue.Profile
	if venueID != "" {
		prof = &venue.Profile{ID: venueID, Name: "Harborside Hotel", SearchRadiusKm: 10}
	}
	return []domdisc.RankedResult{
		{
			Item:     catalog.Item{ID: "ev1", Name: "Jazz Night", Category: category.Concert, LocationText: "Blue Note"},
			Distance: geo.KnownDistance(2.5),
		},
	}, prof, nil
}

// fakePublisher records envelopes.
type fakePublisher struct {
	mu        sync.Mutex
	published []*domdisc.Envelope
}

func (f *fakePublisher) Publish(_ context.Context, env *domdisc.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, env)
	return nil
}

// fakePrefRepo is an in-memory preference repository.
type fakePrefRepo struct {
	mu        sync.Mutex
	metas     map[string]guest.Meta
	counts    map[string]map[category.Tag]int64
	searches  map[string][]guest.SearchEntry
	overrides map[string]*guest.Overrides
}

func newFakePrefRepo() *fakePrefRepo {
	return &fakePrefRepo{
		metas:     make(map[string]guest.Meta),
		counts:    make(map[string]map[category.Tag]int64),
		searches:  make(map[string][]guest.SearchEntry),
		overrides: make(map[string]*guest.Overrides),
	}
}

func (f *fakePrefRepo) EnsureGuest(_ context.Context, identity string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta, ok := f.metas[identity]
	if !ok {
		f.metas[identity] = guest.Meta{CreatedAt: now, LastActive: now}
		return true, nil
	}
	meta.LastActive = now
	f.metas[identity] = meta
	return false, nil
}

func (f *fakePrefRepo) IncrementSearches(_ context.Context, identity string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta := f.metas[identity]
	meta.TotalSearches++
	f.metas[identity] = meta
	return meta.TotalSearches, nil
}

func (f *fakePrefRepo) IncrementCategory(_ context.Context, identity string, tag category.Tag) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.counts[identity]
	if !ok {
		c = make(map[category.Tag]int64)
		f.counts[identity] = c
	}
	c[tag]++
	return c[tag], nil
}

func (f *fakePrefRepo) CategoryCounts(_ context.Context, identity string) (map[category.Tag]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[category.Tag]int64, len(f.counts[identity]))
	for k, v := range f.counts[identity] {
		out[k] = v
	}
	return out, nil
}

func (f *fakePrefRepo) AppendSearch(_ context.Context, identity string, entry guest.SearchEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches[identity] = append(f.searches[identity], entry)
	return nil
}

func (f *fakePrefRepo) RecentSearches(_ context.Context, identity string, limit int) ([]guest.SearchEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.searches[identity]
	out := make([]guest.SearchEntry, 0, len(all))
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, all[i])
	}
	return out, nil
}

func (f *fakePrefRepo) Meta(_ context.Context, identity string) (guest.Meta, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	meta, ok := f.metas[identity]
	if !ok {
		return guest.Meta{}, domain.ErrGuestNotFound
	}
	return meta, nil
}

func (f *fakePrefRepo) Overrides(_ context.Context, identity string) (*guest.Overrides, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overrides[identity], nil
}

func (f *fakePrefRepo) SetOverrides(_ context.Context, identity string, o *guest.Overrides) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overrides[identity] = o
	return nil
}

// fakeBacklog serves canned envelopes.
type fakeBacklog struct {
	envelopes []domdisc.Envelope
	err       error
}

func (f *fakeBacklog) Recent(_ context.Context, _ string, _ int) ([]domdisc.Envelope, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.envelopes, nil
}

// fakePinger reports database health.
type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(_ context.Context) error { return f.err }

type testServer struct {
	http    *httptest.Server
	mapper  *fakeMapper
	ranker  *fakeRanker
	prefs   *fakePrefRepo
	backlog *fakeBacklog
	pinger  *fakePinger
}

func newTestServer() *testServer {
	ts := &testServer{
		mapper:  &fakeMapper{},
		ranker:  &fakeRanker{},
		prefs:   newFakePrefRepo(),
		backlog: &fakeBacklog{},
		pinger:  &fakePinger{},
	}

	logger := zap.NewNop()
	prefSvc := preferenceuc.New(ts.prefs, category.Default(), nil, logger)
	discSvc := discoveruc.New(ts.mapper, ts.ranker, prefSvc, &fakePublisher{}, nil, logger)
	healthSvc := healthuc.New(ts.pinger, nil)

	srv := NewServer(discSvc, prefSvc, ts.backlog, healthSvc, logger)
	r := chi.NewRouter()
	srv.Mount(r)
	ts.http = httptest.NewServer(r)
	return ts
}
