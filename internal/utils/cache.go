package utils

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem wraps a cached value with its expiry.
type CacheItem struct {
	Data      any
	ExpiresAt time.Time
}

// Cache is a size-bounded LRU whose entries also expire after a TTL.
type Cache struct {
	lruCache *lru.Cache[string, CacheItem]
}

func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = 500
	}
	l, err := lru.New[string, CacheItem](size)
	if err != nil {
		return nil, err
	}
	return &Cache{lruCache: l}, nil
}

func (c *Cache) Set(key string, data any, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get returns nil when the key is missing or expired.
func (c *Cache) Get(key string) any {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}

	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}

	return val.Data
}

// DeletePrefix drops every key starting with prefix.
func (c *Cache) DeletePrefix(prefix string) {
	for _, k := range c.lruCache.Keys() {
		if strings.HasPrefix(k, prefix) {
			c.lruCache.Remove(k)
		}
	}
}

func (c *Cache) Len() int {
	return c.lruCache.Len()
}
