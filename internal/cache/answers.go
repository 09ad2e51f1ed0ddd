package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// AnswerRecord is a cached successful answer.
type AnswerRecord struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AnswerCache stores answers keyed by a normalised question hash.
type AnswerCache interface {
	Get(ctx context.Context, key string) (*AnswerRecord, bool, error)
	Set(ctx context.Context, key string, record AnswerRecord) error
	Close() error
}

type redisAnswerCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisAnswerCache builds a Redis-backed cache.
func NewRedisAnswerCache(addr, password string, db int, ttl time.Duration, prefix string) (AnswerCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	if prefix == "" {
		prefix = "sqlchat_answer"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisAnswerCache{client: client, ttl: ttl, prefix: prefix}, nil
}

func (c *redisAnswerCache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

func (c *redisAnswerCache) Get(ctx context.Context, key string) (*AnswerRecord, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var record AnswerRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (c *redisAnswerCache) Set(ctx context.Context, key string, record AnswerRecord) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), payload, c.ttl).Err()
}

func (c *redisAnswerCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
