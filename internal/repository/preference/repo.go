// Package preference persists per-guest learned and declared preferences.
//
// Storage layout, all under the configured prefix:
//
//	guest:<id>            hash   meta fields (created_at, last_active, total_searches)
//	guest:<id>:categories hash   tag -> search count
//	guest:<id>:searches   list   JSON search entries, newest last, trimmed to a cap
//	guest:<id>:prefs      string JSON declared overrides
package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spotive-cloud/discovery/internal/db"
	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/category"
	"github.com/spotive-cloud/discovery/internal/domain/guest"
)

// store is the consumer interface for preference persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, val int64) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	RPush(ctx context.Context, key string, values ...string) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo implements usecase/preference.Repository.
type Repo struct {
	store  store
	prefix string
	logCap int64
}

// New creates a preference repository. logCap bounds the per-guest
// search log length.
func New(s store, prefix string, logCap int) *Repo {
	if logCap <= 0 {
		logCap = 100
	}
	return &Repo{store: s, prefix: prefix, logCap: int64(logCap)}
}

// EnsureGuest creates the guest meta record if it does not exist and
// refreshes last_active either way. Returns true if the guest was created.
func (r *Repo) EnsureGuest(ctx context.Context, identity string, now time.Time) (bool, error) {
	key := r.guestKey(identity)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("exists guest %s: %w", identity, err)
	}

	fields := map[string]string{metaLastActive: formatTime(now)}
	if !exists {
		fields[metaCreatedAt] = formatTime(now)
	}
	if err := r.store.HSet(ctx, key, fields); err != nil {
		return false, fmt.Errorf("hset guest %s: %w", identity, err)
	}
	return !exists, nil
}

// IncrementSearches bumps the guest's total search counter atomically.
func (r *Repo) IncrementSearches(ctx context.Context, identity string) (int64, error) {
	total, err := r.store.HIncrBy(ctx, r.guestKey(identity), metaTotalSearches, 1)
	if err != nil {
		return 0, fmt.Errorf("hincrby searches %s: %w", identity, err)
	}
	return total, nil
}

// IncrementCategory bumps one category counter atomically.
func (r *Repo) IncrementCategory(ctx context.Context, identity string, tag category.Tag) (int64, error) {
	count, err := r.store.HIncrBy(ctx, r.countsKey(identity), string(tag), 1)
	if err != nil {
		return 0, fmt.Errorf("hincrby category %s %s: %w", identity, tag, err)
	}
	return count, nil
}

// CategoryCounts returns all per-category counters for the guest.
// A missing hash yields an empty map.
func (r *Repo) CategoryCounts(ctx context.Context, identity string) (map[category.Tag]int64, error) {
	fields, err := r.store.HGetAll(ctx, r.countsKey(identity))
	if err != nil {
		return nil, fmt.Errorf("hgetall counts %s: %w", identity, err)
	}
	return parseCounts(fields), nil
}

// AppendSearch appends one search log entry and trims the log to its cap.
func (r *Repo) AppendSearch(ctx context.Context, identity string, entry guest.SearchEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal search entry: %w", err)
	}
	key := r.searchesKey(identity)
	if err := r.store.RPush(ctx, key, string(data)); err != nil {
		return fmt.Errorf("rpush searches %s: %w", identity, err)
	}
	if err := r.store.LTrim(ctx, key, -r.logCap, -1); err != nil {
		return fmt.Errorf("ltrim searches %s: %w", identity, err)
	}
	return nil
}

// RecentSearches returns up to limit entries, newest first. Entries that
// fail to decode are skipped.
func (r *Repo) RecentSearches(ctx context.Context, identity string, limit int) ([]guest.SearchEntry, error) {
	if limit <= 0 || int64(limit) > r.logCap {
		limit = int(r.logCap)
	}
	raw, err := r.store.LRange(ctx, r.searchesKey(identity), -int64(limit), -1)
	if err != nil {
		return nil, fmt.Errorf("lrange searches %s: %w", identity, err)
	}

	entries := make([]guest.SearchEntry, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var e guest.SearchEntry
		if err := json.Unmarshal([]byte(raw[i]), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Meta returns the guest bookkeeping record, or domain.ErrGuestNotFound.
func (r *Repo) Meta(ctx context.Context, identity string) (guest.Meta, error) {
	fields, err := r.store.HGetAll(ctx, r.guestKey(identity))
	if err != nil {
		return guest.Meta{}, fmt.Errorf("hgetall guest %s: %w", identity, err)
	}
	if len(fields) == 0 {
		return guest.Meta{}, fmt.Errorf("guest %s: %w", identity, domain.ErrGuestNotFound)
	}
	return parseMeta(fields), nil
}

// Overrides returns the guest's declared preferences, or nil when none
// have been set.
func (r *Repo) Overrides(ctx context.Context, identity string) (*guest.Overrides, error) {
	raw, err := r.store.Get(ctx, r.prefsKey(identity))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get prefs %s: %w", identity, err)
	}
	var o guest.Overrides
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("decode prefs %s: %w", identity, err)
	}
	return &o, nil
}

// SetOverrides stores the guest's declared preferences wholesale.
func (r *Repo) SetOverrides(ctx context.Context, identity string, o *guest.Overrides) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal prefs %s: %w", identity, err)
	}
	if err := r.store.Set(ctx, r.prefsKey(identity), data); err != nil {
		return fmt.Errorf("set prefs %s: %w", identity, err)
	}
	return nil
}

func (r *Repo) guestKey(identity string) string {
	return r.prefix + "guest:" + identity
}

func (r *Repo) countsKey(identity string) string {
	return r.guestKey(identity) + ":categories"
}

func (r *Repo) searchesKey(identity string) string {
	return r.guestKey(identity) + ":searches"
}

func (r *Repo) prefsKey(identity string) string {
	return r.guestKey(identity) + ":prefs"
}
