package repo

import (
	"context"
	"fmt"

	"github.com/KrakenByte/mission-accomplishable/internal/config"
)

// Open builds the store selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg config.Config) (KVStore, error) {
	switch cfg.StorageDriver {
	case config.DriverMemory:
		return NewMemoryStore(), nil
	case config.DriverFile:
		return NewFileStore(cfg.StoragePath)
	case config.DriverSQLite:
		return NewSQLiteStore(ctx, cfg.StoragePath)
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	case config.DriverS3:
		return NewS3Store(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			Prefix:    cfg.S3Prefix,
			PathStyle: cfg.S3PathStyle,
		})
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
