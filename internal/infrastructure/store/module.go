package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"traffic-recorder/internal/config"
	"traffic-recorder/internal/domain/repository"
	"traffic-recorder/internal/infrastructure/database"
	"traffic-recorder/internal/infrastructure/redis"
)

var (
	// ErrStoreClosed is returned by operations on a closed store
	ErrStoreClosed = errors.New("store is closed")
	// ErrUnsupportedDriver is returned for an unknown store.driver value
	ErrUnsupportedDriver = errors.New("unsupported store driver")
)

var Module = fx.Module("store",
	fx.Provide(NewKVStore),
)

// NewKVStore builds the backend selected by store.driver and closes it on shutdown
func NewKVStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (repository.KVStore, error) {
	kv, err := open(cfg, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("Store ready",
		zap.String("driver", cfg.Store.Driver),
		zap.String("namespace", cfg.Store.Namespace),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return kv.Close()
		},
	})

	return kv, nil
}

func open(cfg *config.Config, logger *zap.Logger) (repository.KVStore, error) {
	switch cfg.Store.Driver {
	case "", config.StoreDriverMemory:
		return NewMemoryStore(logger), nil

	case config.StoreDriverRedis:
		client, err := redis.NewRedisClient(cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Store.Namespace, logger), nil

	case config.StoreDriverPostgres:
		db, err := database.NewDatabase(cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(db, cfg.Store.Namespace, logger), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, cfg.Store.Driver)
	}
}
