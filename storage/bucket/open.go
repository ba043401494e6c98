package bucket

import (
	"fmt"

	"github.com/jrife/kvbucket/config"
	"github.com/jrife/kvbucket/storage/kv/plugins"
	"github.com/jrife/kvbucket/utils/log"
	"go.uber.org/zap"
)

// Open builds a logger at cfg.Log.Level, opens the engine
// selected by cfg.Storage and returns its root store.
// options are applied after the logger so they may
// replace it. Closing the store closes the engine.
func Open(cfg config.Config, options ...Option) (*Store, error) {
	logger, err := log.New(cfg.Log.Level)

	if err != nil {
		return nil, err
	}

	engine, err := plugins.Open(cfg.Storage, logger)

	if err != nil {
		return nil, fmt.Errorf("Could not open %s engine: %w", cfg.Storage.Driver, err)
	}

	store := New(engine, append([]Option{WithLogger(logger)}, options...)...)
	store.logger.Info("opened store", zap.String("driver", cfg.Storage.Driver), zap.Binary("prefix", store.prefix))

	return store, nil
}
