package cache

import (
	"encoding/json"
	"path"
	"sync"
	"time"
)

// MemoryCache is the in-process L1. Values are stored as marshaled JSON so
// Get semantics match the redis layer exactly.
type MemoryCache struct {
	store sync.Map
}

type memoryItem struct {
	data       []byte
	expiration time.Time
}

func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{}
	go c.cleanup()
	return c
}

func (c *MemoryCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store.Store(key, &memoryItem{
		data:       data,
		expiration: time.Now().Add(ttl),
	})
	return nil
}

func (c *MemoryCache) Get(key string, dest interface{}) error {
	value, exists := c.store.Load(key)
	if !exists {
		return ErrCacheMiss
	}
	item := value.(*memoryItem)
	if time.Now().After(item.expiration) {
		c.store.Delete(key)
		return ErrCacheMiss
	}
	return json.Unmarshal(item.data, dest)
}

func (c *MemoryCache) Delete(key string) error {
	c.store.Delete(key)
	return nil
}

// DeletePattern matches keys with path.Match glob semantics, mirroring the
// redis KEYS pattern style used by the L2.
func (c *MemoryCache) DeletePattern(pattern string) error {
	c.store.Range(func(key, _ interface{}) bool {
		if matched, _ := path.Match(pattern, key.(string)); matched {
			c.store.Delete(key)
		}
		return true
	})
	return nil
}

func (c *MemoryCache) Exists(key string) (bool, error) {
	var discard json.RawMessage
	err := c.Get(key, &discard)
	if err == ErrCacheMiss {
		return false, nil
	}
	return err == nil, err
}

func (c *MemoryCache) Health() error { return nil }

func (c *MemoryCache) Close() error { return nil }

func (c *MemoryCache) cleanup() {
	for range time.Tick(time.Minute) {
		now := time.Now()
		c.store.Range(func(key, value interface{}) bool {
			if now.After(value.(*memoryItem).expiration) {
				c.store.Delete(key)
			}
			return true
		})
	}
}
