// Package catalog reads externally ingested event items. The engine never
// writes these keys; the catalog ingest pipeline owns them.
package catalog

import (
	"context"
	"fmt"
	"sort"

	domcat "github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/domain/category"
)

// store is the consumer interface for catalog access (ISP).
type store interface {
	SMembers(ctx context.Context, key string) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HSet(ctx context.Context, key string, fields map[string]string) error
	SAdd(ctx context.Context, key string, members ...string) error
}

// Repo implements usecase/ranking.CatalogReader.
type Repo struct {
	store  store
	prefix string
}

// New creates a catalog repository. prefix namespaces all keys.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// ListByCategory returns all external items tagged with the category.
// Items whose hash has vanished between the set read and the fetch are
// skipped. Result order is stable (sorted by item ID).
func (r *Repo) ListByCategory(ctx context.Context, tag category.Tag) ([]domcat.Item, error) {
	ids, err := r.store.SMembers(ctx, r.categoryKey(tag))
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", tag, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.itemKey(id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi %s: %w", tag, err)
	}

	items := make([]domcat.Item, 0, len(hashes))
	for i, fields := range hashes {
		if len(fields) == 0 {
			continue
		}
		items = append(items, parseItemFields(ids[i], fields))
	}
	return items, nil
}

// Put writes an item and registers it under its category. The engine
// itself never calls this; it exists for ingest and seeding tools.
func (r *Repo) Put(ctx context.Context, item domcat.Item) error {
	if err := r.store.HSet(ctx, r.itemKey(item.ID), buildItemFields(item)); err != nil {
		return fmt.Errorf("hset %s: %w", item.ID, err)
	}
	if err := r.store.SAdd(ctx, r.categoryKey(item.Category), item.ID); err != nil {
		return fmt.Errorf("sadd %s: %w", item.Category, err)
	}
	return nil
}

func (r *Repo) itemKey(id string) string {
	return r.prefix + "event:" + id
}

func (r *Repo) categoryKey(tag category.Tag) string {
	return r.prefix + "events:category:" + string(tag)
}
