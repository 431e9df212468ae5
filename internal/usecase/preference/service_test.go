package preference

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/guest"
)

func newService(repo Repository) *Service {
	return New(repo, category.Default(), nil, zap.NewNop())
}

func track(t *testing.T, svc *Service, identity string, tags ...category.Tag) {
	t.Helper()
	if err := svc.Track(context.Background(), identity, "q", tags, 5); err != nil {
		t.Fatalf("track: %v", err)
	}
}

func TestTrack(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)

	track(t, svc, "g1", category.Concert, category.Food)
	track(t, svc, "g1", category.Concert)

	meta, err := repo.Meta(context.Background(), "g1")
	if err != nil {
		t.Fatalf("meta: %v", err)
	}
	if meta.TotalSearches != 2 {
		t.Errorf("total searches = %d", meta.TotalSearches)
	}
	if repo.counts["g1"][category.Concert] != 2 || repo.counts["g1"][category.Food] != 1 {
		t.Errorf("counts = %v", repo.counts["g1"])
	}
	if len(repo.searches["g1"]) != 2 {
		t.Errorf("log length = %d", len(repo.searches["g1"]))
	}
}

func TestTrack_InvalidIdentity(t *testing.T) {
	svc := newService(newMockRepo())
	err := svc.Track(context.Background(), "bad identity", "q", nil, 0)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestTopCategories_MostSearchedWins(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)

	// N concert searches against M food searches, N > M.
	for i := 0; i < 4; i++ {
		track(t, svc, "g1", category.Concert)
	}
	for i := 0; i < 2; i++ {
		track(t, svc, "g1", category.Food)
	}

	top, err := svc.TopCategories(context.Background(), "g1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []category.Tag{category.Concert, category.Food}
	if !reflect.DeepEqual(top, want) {
		t.Errorf("top = %v, want %v", top, want)
	}
}

func TestTopCategories_RecencyBreaksTies(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)

	// Equal counts; sports searched last, so sports wins the tie.
	track(t, svc, "g1", category.Concert)
	track(t, svc, "g1", category.Sports)

	top, err := svc.TopCategories(context.Background(), "g1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []category.Tag{category.Sports, category.Concert}
	if !reflect.DeepEqual(top, want) {
		t.Errorf("top = %v, want %v", top, want)
	}
}

func TestTopCategories_VocabularyOrderAsFinalTieBreak(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)

	// Same count, same search (so same recency): vocabulary order decides.
	track(t, svc, "g1", category.Comedy, category.Outdoor)

	top, err := svc.TopCategories(context.Background(), "g1", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []category.Tag{category.Outdoor, category.Comedy}
	if !reflect.DeepEqual(top, want) {
		t.Errorf("top = %v, want %v", top, want)
	}
}

func TestTopCategories_UnknownGuest(t *testing.T) {
	svc := newService(newMockRepo())
	top, err := svc.TopCategories(context.Background(), "nobody", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if top != nil {
		t.Fatalf("want nil, got %v", top)
	}
}

func TestBlend(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)
	ctx := context.Background()

	track(t, svc, "g1", category.Concert)
	track(t, svc, "g1", category.Concert)
	track(t, svc, "g1", category.Food)

	got, err := svc.Blend(ctx, "g1", "something fun")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "something fun, concert, food" {
		t.Errorf("blend = %q", got)
	}
}

func TestBlend_EmptyQueryUsesHistoryAlone(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)

	track(t, svc, "g1", category.Outdoor)

	got, err := svc.Blend(context.Background(), "g1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "outdoor" {
		t.Errorf("blend = %q", got)
	}
}

func TestBlend_UnknownGuestPassesQueryThrough(t *testing.T) {
	svc := newService(newMockRepo())
	got, err := svc.Blend(context.Background(), "stranger", "jazz tonight")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "jazz tonight" {
		t.Errorf("blend = %q", got)
	}
}

func TestProfile(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)
	ctx := context.Background()

	track(t, svc, "g1", category.Concert)
	if _, err := svc.UpdateOverrides(ctx, "g1", &guest.Overrides{
		PreferredCategories: []category.Tag{category.Food},
	}); err != nil {
		t.Fatalf("update overrides: %v", err)
	}

	rec, err := svc.Profile(ctx, "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Identity != "g1" || rec.Meta.TotalSearches != 1 {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Counts) != 1 || rec.Counts[0].Tag != category.Concert || rec.Counts[0].Count != 1 {
		t.Errorf("counts = %+v", rec.Counts)
	}
	if rec.Overrides == nil || len(rec.Overrides.PreferredCategories) != 1 {
		t.Errorf("overrides = %+v", rec.Overrides)
	}
	if len(rec.Top3) != 1 || rec.Top3[0] != category.Concert {
		t.Errorf("top_3 = %v", rec.Top3)
	}
}

func TestProfile_Top3CapsAtThree(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)

	for _, tag := range []category.Tag{category.Concert, category.Concert, category.Concert,
		category.Food, category.Food, category.Sports, category.Sports, category.Outdoor} {
		track(t, svc, "g1", tag)
	}

	rec, err := svc.Profile(context.Background(), "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Counts) != 4 {
		t.Fatalf("counts = %+v, want all four categories", rec.Counts)
	}
	if len(rec.Top3) != 3 || rec.Top3[0] != category.Concert {
		t.Errorf("top_3 = %v, want the three highest-count tags", rec.Top3)
	}
}

func TestProfile_NotFound(t *testing.T) {
	svc := newService(newMockRepo())
	_, err := svc.Profile(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrGuestNotFound) {
		t.Fatalf("want ErrGuestNotFound, got %v", err)
	}
}

func TestUpdateOverrides_MergesOnlyProvidedFields(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)
	ctx := context.Background()

	first := &guest.Overrides{
		PreferredCategories: []category.Tag{category.Concert},
		PriceRange:          &guest.PriceRange{Min: 10, Max: 100},
	}
	if _, err := svc.UpdateOverrides(ctx, "g1", first); err != nil {
		t.Fatalf("first update: %v", err)
	}

	got, err := svc.UpdateOverrides(ctx, "g1", &guest.Overrides{
		PreferredLocations: []string{"downtown"},
	})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if len(got.PreferredCategories) != 1 || got.PreferredCategories[0] != category.Concert {
		t.Errorf("preferred categories lost: %+v", got)
	}
	if got.PriceRange == nil || got.PriceRange.Max != 100 {
		t.Errorf("price range lost: %+v", got.PriceRange)
	}
	if len(got.PreferredLocations) != 1 {
		t.Errorf("locations = %+v", got.PreferredLocations)
	}
}

func TestUpdateOverrides_RejectsUnknownCategory(t *testing.T) {
	svc := newService(newMockRepo())
	_, err := svc.UpdateOverrides(context.Background(), "g1", &guest.Overrides{
		PreferredCategories: []category.Tag{"astrology"},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestUpdateOverrides_RejectsInvertedPriceRange(t *testing.T) {
	svc := newService(newMockRepo())
	_, err := svc.UpdateOverrides(context.Background(), "g1", &guest.Overrides{
		PriceRange: &guest.PriceRange{Min: 100, Max: 10},
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestTrack_SetsLastActive(t *testing.T) {
	repo := newMockRepo()
	svc := newService(repo)
	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	track(t, svc, "g1", category.Concert)

	meta, _ := repo.Meta(context.Background(), "g1")
	if !meta.LastActive.Equal(fixed) {
		t.Errorf("last active = %v", meta.LastActive)
	}
}
