package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	KVStore
	ListStore
	SetStore
	Notifier
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	HIncrBy(ctx context.Context, key, field string, val int64) (int64, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores the value only if the key does not exist yet.
	// Returns false without error when the key is already taken.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// ListStore provides list operations used for append-only logs.
type ListStore interface {
	RPush(ctx context.Context, key string, values ...string) error
	// LRange returns elements between start and stop inclusive;
	// negative indexes count from the tail, Redis semantics.
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LTrim(ctx context.Context, key string, start, stop int64) error
	LLen(ctx context.Context, key string) (int64, error)
}

// SetStore provides unordered set operations used for category membership indexes.
type SetStore interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Notifier provides change-notification via publish/subscribe channels.
type Notifier interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	// Subscribe delivers every message published on channel to fn until
	// ctx is done. It blocks for the lifetime of the subscription.
	Subscribe(ctx context.Context, channel string, fn func(payload []byte)) error
}
