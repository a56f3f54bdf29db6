package repository

import (
	"context"
	"fmt"

	"furnace/pkg/client"
	"furnace/pkg/config"
)

// Open builds the repository selected by cfg.StoreBackend.
func Open(ctx context.Context, cfg *config.Config) (BookingRepository, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return NewMemoryBookingRepository(), nil

	case config.BackendRedis:
		rdb, err := client.NewRedisClient(ctx, cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.StorageTimeout)
		if err != nil {
			return nil, err
		}
		return NewRedisBookingRepository(rdb, cfg.RedisKey, cfg.StorageTimeout), nil

	case config.BackendMongo:
		mc, err := client.NewMongoClient(ctx, cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
		if err != nil {
			return nil, err
		}
		repo := NewMongoBookingRepository(mc, cfg.MongoDatabaseName, cfg.StorageTimeout)
		if err := EnsureIndexes(ctx, repo); err != nil {
			_ = repo.Close(ctx)
			return nil, err
		}
		return repo, nil

	case config.BackendSQLite:
		return NewSQLiteBookingRepository(cfg.SQLitePath, cfg.StorageTimeout)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
