// Package publisher writes result envelopes and announces them on the
// guest's channel so displays can render results without polling.
//
// Each envelope is claimed under a millisecond-epoch sequence key with
// SETNX. Two publications for the same guest in the same millisecond
// therefore never overwrite each other; the later one advances its key
// until a free slot is found.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spotive-cloud/discovery/internal/domain"
	"github.com/spotive-cloud/discovery/internal/domain/discover"
)

// maxClaimAdvances bounds the SETNX collision walk.
const maxClaimAdvances = 64

// store is the consumer interface for result publication (ISP).
type store interface {
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) ([]byte, error)
	RPush(ctx context.Context, key string, values ...string) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Repo implements usecase/discover.Publisher.
type Repo struct {
	store     store
	prefix    string
	retention time.Duration
	indexCap  int64
	now       func() time.Time
}

// New creates a publisher. retention bounds how long stored envelopes
// stay retrievable.
func New(s store, prefix string, retention time.Duration) *Repo {
	return &Repo{
		store:     s,
		prefix:    prefix,
		retention: retention,
		indexCap:  64,
		now:       time.Now,
	}
}

// Publish stores the envelope under a fresh sequence key, records it in
// the guest's backlog index and announces it on the guest's channel.
// The assigned sequence key is written back into env.
func (r *Repo) Publish(ctx context.Context, env *discover.Envelope) error {
	seq, data, err := r.claim(ctx, env)
	if err != nil {
		return err
	}
	env.SequenceKey = seq

	idxKey := r.indexKey(env.Identity)
	if err := r.store.RPush(ctx, idxKey, strconv.FormatInt(seq, 10)); err != nil {
		return fmt.Errorf("%w: index %s: %w", domain.ErrPublication, env.Identity, err)
	}
	if err := r.store.LTrim(ctx, idxKey, -r.indexCap, -1); err != nil {
		return fmt.Errorf("%w: trim index %s: %w", domain.ErrPublication, env.Identity, err)
	}
	if err := r.store.Expire(ctx, idxKey, r.retention, false); err != nil {
		return fmt.Errorf("%w: expire index %s: %w", domain.ErrPublication, env.Identity, err)
	}

	if err := r.store.Publish(ctx, r.Channel(env.Identity), data); err != nil {
		return fmt.Errorf("%w: announce %s: %w", domain.ErrPublication, env.Identity, err)
	}
	return nil
}

// claim finds a free sequence key starting at the current millisecond
// and stores the envelope under it.
func (r *Repo) claim(ctx context.Context, env *discover.Envelope) (int64, []byte, error) {
	seq := r.now().UnixMilli()
	for i := 0; i < maxClaimAdvances; i++ {
		env.SequenceKey = seq
		data, err := json.Marshal(env)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: marshal envelope: %w", domain.ErrPublication, err)
		}
		ok, err := r.store.SetNX(ctx, r.resultKey(env.Identity, seq), data, r.retention)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: claim %s/%d: %w", domain.ErrPublication, env.Identity, seq, err)
		}
		if ok {
			return seq, data, nil
		}
		seq++
	}
	return 0, nil, fmt.Errorf("%w: no free sequence key for %s", domain.ErrPublication, env.Identity)
}

// Recent returns up to limit stored envelopes for the guest, newest
// first. Envelopes whose keys have expired are skipped.
func (r *Repo) Recent(ctx context.Context, identity string, limit int) ([]discover.Envelope, error) {
	if limit <= 0 || int64(limit) > r.indexCap {
		limit = int(r.indexCap)
	}
	seqs, err := r.store.LRange(ctx, r.indexKey(identity), -int64(limit), -1)
	if err != nil {
		return nil, fmt.Errorf("backlog index %s: %w", identity, err)
	}

	out := make([]discover.Envelope, 0, len(seqs))
	for i := len(seqs) - 1; i >= 0; i-- {
		seq, err := strconv.ParseInt(seqs[i], 10, 64)
		if err != nil {
			continue
		}
		raw, err := r.store.Get(ctx, r.resultKey(identity, seq))
		if err != nil {
			continue
		}
		var env discover.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		out = append(out, env)
	}
	return out, nil
}

// Channel returns the pub/sub channel name for a guest identity.
func (r *Repo) Channel(identity string) string {
	return r.prefix + "results:" + identity
}

func (r *Repo) resultKey(identity string, seq int64) string {
	return r.prefix + "result:" + identity + ":" + strconv.FormatInt(seq, 10)
}

func (r *Repo) indexKey(identity string) string {
	return r.prefix + "result:" + identity + ":index"
}
