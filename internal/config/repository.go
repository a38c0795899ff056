package config

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"tasklist/internal/cache"
	"tasklist/internal/repository/postgres"
	"tasklist/internal/repository/sqlite"
	"tasklist/internal/services"
)

// Store is a task store that also manages its own schema.
type Store interface {
	services.TaskGateway
	Migrate(ctx context.Context) ([]int, error)
	Rollback(ctx context.Context) (int, error)
}

// OpenStore opens the configured database without any cache in front of it.
// Pending migrations are applied on open when Database.AutoMigrate is set.
func OpenStore(ctx context.Context, config *Config) (Store, error) {
	switch config.Database.Driver {
	case DriverPostgres:
		repo, err := postgres.New(ctx, postgres.Options{
			DSN:            config.Database.DSN,
			MaxConns:       int32(config.Database.MaxConns),
			QueryTimeout:   config.Database.QueryTimeout,
			WriteTimeout:   config.Database.WriteTimeout,
			SkipMigrations: !config.Database.AutoMigrate,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	default:
		if err := os.MkdirAll(config.Database.Dir, os.FileMode(config.Database.DirPermissions)); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		repo, err := sqlite.New(sqlite.Options{
			Path:           config.GetDatabasePath(),
			QueryTimeout:   config.Database.QueryTimeout,
			WriteTimeout:   config.Database.WriteTimeout,
			SkipMigrations: !config.Database.AutoMigrate,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	}
}

// CreateRepository creates the configured task store, wrapped in the Redis
// cache when one is configured.
func CreateRepository(ctx context.Context, config *Config, logger logrus.FieldLogger) (services.TaskGateway, error) {
	store, err := OpenStore(ctx, config)
	if err != nil {
		return nil, err
	}

	if !config.CacheEnabled() {
		return store, nil
	}

	client, err := cache.Connect(ctx, config.Cache.RedisURL)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return cache.New(store, client, config.Cache.TTL, config.Cache.KeyPrefix, logger).
		WithLookupTimeout(config.Database.QueryTimeout), nil
}

// CreateTestRepository creates an in-memory SQLite store for testing
func CreateTestRepository() (services.TaskGateway, error) {
	repo, err := sqlite.New(sqlite.Options{Path: ":memory:"})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize test database: %w", err)
	}
	return repo, nil
}
