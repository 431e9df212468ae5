// Package venue loads venue profiles from storage.
package venue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spotive-cloud/discovery/internal/db"
	"github.com/spotive-cloud/discovery/internal/domain"
	domvenue "github.com/spotive-cloud/discovery/internal/domain/venue"
)

// store is the consumer interface for venue reads (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Repo implements usecase/ranking.VenueReader.
type Repo struct {
	store  store
	prefix string
}

// New creates a venue repository. prefix namespaces all keys.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Get returns the venue profile, or domain.ErrVenueNotFound.
func (r *Repo) Get(ctx context.Context, id string) (*domvenue.Profile, error) {
	raw, err := r.store.Get(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("venue %s: %w", id, domain.ErrVenueNotFound)
		}
		return nil, fmt.Errorf("get venue %s: %w", id, err)
	}

	var profile domvenue.Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode venue %s: %w", id, err)
	}
	profile.ID = id
	return &profile, nil
}

// Put stores a venue profile. Used by provisioning tools.
func (r *Repo) Put(ctx context.Context, profile *domvenue.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal venue %s: %w", profile.ID, err)
	}
	if err := r.store.Set(ctx, r.key(profile.ID), data); err != nil {
		return fmt.Errorf("set venue %s: %w", profile.ID, err)
	}
	return nil
}

func (r *Repo) key(id string) string {
	return r.prefix + "venue:" + id
}
