package cache

import (
	"github.com/hetulpatel/sqlchat/internal/config"
	"github.com/hetulpatel/sqlchat/internal/logging"
)

const defaultMemoryCapacity = 1024

// FromConfig returns the configured answer cache, or nil when caching is
// disabled (ANSWER_CACHE_TTL unset or zero).
func FromConfig(cfg config.Config) (AnswerCache, error) {
	if cfg.CacheTTL <= 0 {
		return nil, nil
	}
	if cfg.RedisAddr != "" {
		logging.Infof("[cache] redis answer cache at %s (ttl=%s)", cfg.RedisAddr, cfg.CacheTTL)
		return NewRedisAnswerCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL, "")
	}
	logging.Infof("[cache] in-memory answer cache (ttl=%s)", cfg.CacheTTL)
	return NewMemoryAnswerCache(cfg.CacheTTL, defaultMemoryCapacity), nil
}
