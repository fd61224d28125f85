package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"

	LockFlock = "flock"
	LockRedis = "redis"

	PhotoLocal = "local"
	PhotoMinIO = "minio"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	CORSOrigins string

	StorageDriver string
	DataDir       string
	DatabaseURL   string
	SQLitePath    string
	TableLock     string
	RedisURL      string
	LockTTL       time.Duration

	JWTSecret       string
	JWTAccessExpiry time.Duration
	JWTIssuer       string

	PhotoStorage   string
	UploadDir      string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOBucket    string
	MinIOUseSSL    bool

	ResendAPIKey string
	FromEmail    string

	AMQPURL      string
	AMQPExchange string

	ChatMaxLength int
	Locale        string
	Seed          bool
}

// Load reads the configuration from the environment. Unset keys fall back to
// defaults that run the API on local files with no external services.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return &Config{
		Port:        getString(v, "PORT", "8080"),
		Environment: getString(v, "ENVIRONMENT", "development"),
		LogLevel:    getString(v, "LOG_LEVEL", "info"),
		CORSOrigins: getString(v, "CORS_ORIGINS", "http://localhost:5173"),

		StorageDriver: strings.ToLower(getString(v, "STORAGE_DRIVER", StorageFile)),
		DataDir:       getString(v, "DATA_DIR", "data"),
		DatabaseURL:   getString(v, "DATABASE_URL", ""),
		SQLitePath:    getString(v, "SQLITE_PATH", "data/coleta.db"),
		TableLock:     strings.ToLower(getString(v, "TABLE_LOCK", LockFlock)),
		RedisURL:      getString(v, "REDIS_URL", "redis://localhost:6379"),
		LockTTL:       getDuration(v, "LOCK_TTL", 10*time.Second),

		JWTSecret:       getString(v, "JWT_SECRET", ""),
		JWTAccessExpiry: getDuration(v, "JWT_ACCESS_EXPIRY", 24*time.Hour),
		JWTIssuer:       getString(v, "JWT_ISSUER", "coleta-seletiva"),

		PhotoStorage:   strings.ToLower(getString(v, "PHOTO_STORAGE", PhotoLocal)),
		UploadDir:      getString(v, "UPLOAD_DIR", "."),
		MinIOEndpoint:  getString(v, "MINIO_ENDPOINT", "localhost:9000"),
		MinIOAccessKey: getString(v, "MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getString(v, "MINIO_SECRET_KEY", "minioadmin"),
		MinIOBucket:    getString(v, "MINIO_BUCKET", "coleta-fotos"),
		MinIOUseSSL:    getBool(v, "MINIO_USE_SSL", false),

		ResendAPIKey: getString(v, "RESEND_API_KEY", ""),
		FromEmail:    getString(v, "FROM_EMAIL", "noreply@example.com"),

		AMQPURL:      getString(v, "AMQP_URL", ""),
		AMQPExchange: getString(v, "AMQP_EXCHANGE", "coleta.events"),

		ChatMaxLength: getInt(v, "CHAT_MAX_LENGTH", 500),
		Locale:        getString(v, "LOCALE", "pt-BR"),
		Seed:          getBool(v, "SEED_DATA", true),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getString(v *viper.Viper, key, def string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if value := v.GetString(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if value := v.GetString(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return def
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if value := v.GetString(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return def
}
