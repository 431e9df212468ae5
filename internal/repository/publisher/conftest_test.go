package publisher

import (
	"context"
	"sync"
	"time"

	"github.com/spotive-cloud/discovery/internal/db"
)

// mockStore implements the consumer interface for tests with an
// in-memory KV so SETNX collision handling can be exercised.
type mockStore struct {
	mu        sync.Mutex
	kv        map[string][]byte
	lists     map[string][]string
	published []publication

	setNXErr   error
	publishErr error
}

type publication struct {
	channel string
	payload []byte
}

func newMockStore() *mockStore {
	return &mockStore{
		kv:    make(map[string][]byte),
		lists: make(map[string][]string),
	}
}

func (m *mockStore) SetNX(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	if m.setNXErr != nil {
		return false, m.setNXErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.kv[key]; ok {
		return false, nil
	}
	m.kv[key] = value
	return true, nil
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) RPush(_ context.Context, key string, values ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists[key] = append(m.lists[key], values...)
	return nil
}

func (m *mockStore) LTrim(_ context.Context, key string, start, stop int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	n := int64(len(list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 {
		m.lists[key] = nil
		return nil
	}
	m.lists[key] = list[start : stop+1]
	return nil
}

func (m *mockStore) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[key]
	n := int64(len(list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || n == 0 {
		return nil, nil
	}
	out := make([]string, stop-start+1)
	copy(out, list[start:stop+1])
	return out, nil
}

func (m *mockStore) Expire(_ context.Context, _ string, _ time.Duration, _ bool) error {
	return nil
}

func (m *mockStore) Publish(_ context.Context, channel string, payload []byte) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publication{channel: channel, payload: payload})
	return nil
}
