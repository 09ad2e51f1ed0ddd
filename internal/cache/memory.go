package cache

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type memoryAnswerCache struct {
	cache *ttlcache.Cache[string, AnswerRecord]
}

// NewMemoryAnswerCache keeps answers in process memory until ttl expires.
func NewMemoryAnswerCache(ttl time.Duration, capacity uint64) AnswerCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	opts := []ttlcache.Option[string, AnswerRecord]{
		ttlcache.WithTTL[string, AnswerRecord](ttl),
		ttlcache.WithDisableTouchOnHit[string, AnswerRecord](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, AnswerRecord](capacity))
	}
	c := ttlcache.New(opts...)
	go c.Start()
	return &memoryAnswerCache{cache: c}
}

func (c *memoryAnswerCache) Get(_ context.Context, key string) (*AnswerRecord, bool, error) {
	item := c.cache.Get(key)
	if item == nil || item.IsExpired() {
		return nil, false, nil
	}
	record := item.Value()
	return &record, true, nil
}

func (c *memoryAnswerCache) Set(_ context.Context, key string, record AnswerRecord) error {
	c.cache.Set(key, record, ttlcache.DefaultTTL)
	return nil
}

func (c *memoryAnswerCache) Close() error {
	c.cache.Stop()
	return nil
}
