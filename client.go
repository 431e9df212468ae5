// Package discovery provides a client SDK for in-room displays and
// lobby kiosks that consume published recommendation results.
//
// Displays do not call the HTTP API. They subscribe to the per-guest
// result channel and render each envelope as it arrives, optionally
// backfilling from the retained backlog on startup.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spotive-cloud/discovery/internal/db"
	dbRedis "github.com/spotive-cloud/discovery/internal/db/redis"
	"github.com/spotive-cloud/discovery/internal/domain/catalog"
	"github.com/spotive-cloud/discovery/internal/domain/discover"
	"github.com/spotive-cloud/discovery/internal/domain/geo"
	publisherrepo "github.com/spotive-cloud/discovery/internal/repository/publisher"
)

// Re-exported result types so consumers never import internal packages.
type (
	// Envelope is one published result set for a guest.
	Envelope = discover.Envelope
	// RankedResult is a single recommendation inside an envelope.
	RankedResult = discover.RankedResult
	// Item is a catalog entry or venue service.
	Item = catalog.Item
	// Distance is the placement of an item relative to the guest's venue.
	Distance = geo.Distance
)

// DefaultKeyPrefix matches the server's default storage key prefix.
const DefaultKeyPrefix = "discovery:"

// ClientConfig holds connection settings for a display client.
type ClientConfig struct {
	Addrs     []string
	Username  string
	Password  string
	KeyPrefix string // defaults to DefaultKeyPrefix
}

// resultStore is the slice of the store facade a display client needs (ISP).
type resultStore interface {
	db.KVStore
	db.ListStore
	db.Notifier
	Close()
}

// Client consumes published recommendation envelopes for guests.
type Client struct {
	store   resultStore
	backlog *publisherrepo.Repo
	prefix  string
}

// NewClient connects to the result store shared with the discovery server.
func NewClient(cfg ClientConfig) (*Client, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("connect result store: %w", err)
	}
	return newClient(store, cfg.KeyPrefix), nil
}

func newClient(store resultStore, prefix string) *Client {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Client{
		store:   store,
		backlog: publisherrepo.New(store, prefix, 0),
		prefix:  prefix,
	}
}

// Listen delivers every envelope published for the guest to fn until ctx
// is done. Blocks for the lifetime of the subscription; envelopes that
// fail to decode are skipped. A canceled context is a clean exit.
func (c *Client) Listen(ctx context.Context, identity string, fn func(Envelope)) error {
	channel := c.backlog.Channel(identity)
	err := c.store.Subscribe(ctx, channel, func(payload []byte) {
		var env Envelope
		if jsonErr := json.Unmarshal(payload, &env); jsonErr != nil {
			return
		}
		fn(env)
	})
	if err != nil {
		return fmt.Errorf("listen %s: %w", identity, err)
	}
	return nil
}

// Backlog returns up to limit retained envelopes for the guest,
// newest first. Useful for backfilling a display on startup.
func (c *Client) Backlog(ctx context.Context, identity string, limit int) ([]Envelope, error) {
	return c.backlog.Recent(ctx, identity, limit)
}

// Close releases the underlying store connection.
func (c *Client) Close() {
	c.store.Close()
}
