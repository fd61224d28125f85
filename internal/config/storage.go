package config

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"coleta-seletiva/internal/table"
)

// Storage is the table backend selected by STORAGE_DRIVER together with the
// resources it holds open.
type Storage struct {
	Backend table.Backend
	DB      *sqlx.DB
	Redis   *redis.Client
}

func (s *Storage) Close() error {
	var firstErr error
	if s.DB != nil {
		firstErr = s.DB.Close()
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewStorage(ctx context.Context, cfg *Config) (*Storage, error) {
	switch cfg.StorageDriver {
	case StorageFile:
		return newFileStorage(ctx, cfg)
	case StoragePostgres:
		db, err := NewPostgresDB(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return newSQLStorage(ctx, db)
	case StorageSQLite:
		db, err := NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return newSQLStorage(ctx, db)
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func newFileStorage(ctx context.Context, cfg *Config) (*Storage, error) {
	storage := &Storage{}

	var locker table.Locker
	switch cfg.TableLock {
	case LockFlock:
		locker = table.NewFlockLocker(cfg.DataDir)
	case LockRedis:
		client, err := NewRedisClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		storage.Redis = client
		locker = table.NewRedisLocker(client, "coleta:", cfg.LockTTL)
	default:
		return nil, fmt.Errorf("unknown TABLE_LOCK %q", cfg.TableLock)
	}

	backend, err := table.NewFileBackend(cfg.DataDir, locker)
	if err != nil {
		_ = storage.Close()
		return nil, err
	}
	storage.Backend = backend
	return storage, nil
}

func newSQLStorage(ctx context.Context, db *sqlx.DB) (*Storage, error) {
	backend := table.NewSQLBackend(db)
	if err := backend.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Storage{Backend: backend, DB: db}, nil
}
