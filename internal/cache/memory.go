package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory es un cache in-process sobre go-cache.
// Pensado para dev/testing y despliegues single-node.
type Memory struct {
	c      *gocache.Cache
	prefix string

	mu sync.Mutex // protege Incr (get+set no atómico en go-cache para TTL nuevo)
}

// NewMemory crea un cache en memoria.
func NewMemory(cfg Config) *Memory {
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Memory{
		c:      gocache.New(ttl, time.Minute),
		prefix: cfg.Prefix,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	v, ok := m.c.Get(m.prefix + key)
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(m.prefix+key, value, ttl)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Delete(m.prefix + key)
	return nil
}

func (m *Memory) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := m.prefix + key
	if _, ok := m.c.Get(k); !ok {
		m.c.Set(k, int64(1), ttl)
		return 1, nil
	}
	n, err := m.c.IncrementInt64(k, 1)
	if err != nil {
		// la key expiró entre Get e Increment
		m.c.Set(k, int64(1), ttl)
		return 1, nil
	}
	return n, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }
