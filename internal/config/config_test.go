package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coleta-seletiva/internal/table"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORAGE_DRIVER", "TABLE_LOCK", "CHAT_MAX_LENGTH", "LOCALE", "JWT_ACCESS_EXPIRY", "SEED_DATA"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageFile, cfg.StorageDriver)
	assert.Equal(t, LockFlock, cfg.TableLock)
	assert.Equal(t, 500, cfg.ChatMaxLength)
	assert.Equal(t, "pt-BR", cfg.Locale)
	assert.Equal(t, 24*time.Hour, cfg.JWTAccessExpiry)
	assert.True(t, cfg.Seed)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("CHAT_MAX_LENGTH", "120")
	t.Setenv("JWT_ACCESS_EXPIRY", "15m")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("SEED_DATA", "false")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, 120, cfg.ChatMaxLength)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.True(t, cfg.MinIOUseSSL)
	assert.False(t, cfg.Seed)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("CHAT_MAX_LENGTH", "lots")
	t.Setenv("LOCK_TTL", "soon")

	cfg := Load()

	assert.Equal(t, 500, cfg.ChatMaxLength)
	assert.Equal(t, 10*time.Second, cfg.LockTTL)
}

func TestNewStorage_FileAndSQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	fileStorage, err := NewStorage(ctx, &Config{StorageDriver: StorageFile, TableLock: LockFlock, DataDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &table.FileBackend{}, fileStorage.Backend)
	require.NoError(t, fileStorage.Close())

	sqliteStorage, err := NewStorage(ctx, &Config{StorageDriver: StorageSQLite, SQLitePath: filepath.Join(dir, "db", "coleta.db")})
	require.NoError(t, err)
	assert.IsType(t, &table.SQLBackend{}, sqliteStorage.Backend)
	require.NoError(t, sqliteStorage.Close())
}

func TestNewStorage_RejectsUnknownDriver(t *testing.T) {
	_, err := NewStorage(context.Background(), &Config{StorageDriver: "mongo"})
	assert.Error(t, err)

	_, err = NewStorage(context.Background(), &Config{StorageDriver: StorageFile, TableLock: "zookeeper", DataDir: t.TempDir()})
	assert.Error(t, err)
}
