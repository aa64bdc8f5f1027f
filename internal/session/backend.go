package session

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Valkey stores sessions in a Valkey (Redis-compatible) server.
type Valkey struct {
	client *redis.Client
}

// NewValkey returns a Backend on client.
func NewValkey(client *redis.Client) *Valkey {
	return &Valkey{client: client}
}

func (v *Valkey) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return v.client.Set(ctx, key, value, ttl).Err()
}

func (v *Valkey) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := v.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrMissing
	}
	return b, err
}

func (v *Valkey) Del(ctx context.Context, key string) error {
	return v.client.Del(ctx, key).Err()
}

// Memory keeps sessions in process memory. Expired entries are dropped
// when read. Sessions do not survive a restart.
type Memory struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value   []byte
	expires time.Time
}

// NewMemory returns an empty in-memory Backend.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]memoryItem), now: time.Now}
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = memoryItem{value: append([]byte(nil), value...), expires: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok {
		return nil, ErrMissing
	}
	if !m.now().Before(item.expires) {
		delete(m.items, key)
		return nil, ErrMissing
	}
	return item.value, nil
}

func (m *Memory) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
