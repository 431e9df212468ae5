package redis

import (
	"context"
	"errors"

	"github.com/redis/rueidis"

	"github.com/spotive-cloud/discovery/internal/db"
)

// Publish sends a payload to every current subscriber of the channel.
func (s *Store) Publish(ctx context.Context, channel string, payload []byte) error {
	cmd := s.b().Publish().Channel(channel).Message(string(payload)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpPublish, Err: err}
	}
	return nil
}

// Subscribe delivers every message published on channel to fn until ctx is done.
// Blocks for the lifetime of the subscription; a canceled context is a clean exit.
func (s *Store) Subscribe(ctx context.Context, channel string, fn func(payload []byte)) error {
	err := s.client.Receive(ctx, s.b().Subscribe().Channel(channel).Build(), func(msg rueidis.PubSubMessage) {
		fn([]byte(msg.Message))
	})
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return &db.Error{Op: db.OpSubscribe, Err: err}
}
