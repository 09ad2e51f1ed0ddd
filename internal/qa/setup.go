package qa

import (
	"github.com/hetulpatel/sqlchat/internal/cache"
	"github.com/hetulpatel/sqlchat/internal/config"
	"github.com/hetulpatel/sqlchat/internal/logging"
	"github.com/hetulpatel/sqlchat/internal/sqlagent"
)

// Setup wires a Service from cfg: an agent factory, the answer cache
// selected by the cache settings and an optional recorder. The returned
// func releases the cache.
func Setup(cfg config.Config, source string, rec Recorder, opts ...sqlagent.Option) (*Service, func(), error) {
	answers, err := cache.FromConfig(cfg)
	if err != nil {
		// A broken cache only costs repeated LLM calls.
		logging.Warnf("[qa] answer cache disabled: %v", err)
		answers = nil
	}
	cleanup := func() {
		if answers != nil {
			_ = answers.Close()
		}
	}

	svc, err := New(Config{
		Build:      FromFactory(sqlagent.NewFactory(cfg, opts...)),
		Cache:      answers,
		Recorder:   rec,
		CacheScope: []string{cfg.DBPath, cfg.Model},
		Source:     source,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
