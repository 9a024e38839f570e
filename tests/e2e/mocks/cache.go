package mocks

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// InMemoryCache stands in for redis in end-to-end tests. Expired and missing
// keys return redis.Nil.
type InMemoryCache struct {
	mu       sync.Mutex
	data     map[string]CacheEntry
	GetCalls int
	SetCalls int
}

type CacheEntry struct {
	Value  []byte
	Expiry time.Time
}

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{data: make(map[string]CacheEntry)}
}

func (c *InMemoryCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GetCalls++
	entry, ok := c.data[key]
	if !ok || (!entry.Expiry.IsZero() && time.Now().After(entry.Expiry)) {
		return redis.Nil
	}
	return json.Unmarshal(entry.Value, dest)
}

func (c *InMemoryCache) Set(ctx context.Context, key string, value any, exp time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SetCalls++
	entry := CacheEntry{Value: raw}
	if exp > 0 {
		entry.Expiry = time.Now().Add(exp)
	}
	c.data[key] = entry
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *InMemoryCache) Close() error {
	return nil
}
