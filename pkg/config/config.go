package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	DocStore  DocStoreConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Cache     CacheConfig
	Push      PushConfig
	Sweeper   SweeperConfig
	Resources ResourcesConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// DocStoreConfig points at the MongoDB instance holding profile documents
// and push subscriptions.
type DocStoreConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the two signing secrets. Access and refresh tokens are
// signed with distinct secrets and carry distinct expiries.
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig tunes the read-through cache for schedule views.
type CacheConfig struct {
	Enabled  bool
	TTL      time.Duration
	ViewsTTL time.Duration
}

// PushConfig governs the notification dispatcher lanes and delivery workers.
type PushConfig struct {
	Enabled        bool
	MediumInterval time.Duration
	LowInterval    time.Duration
	MediumBatch    int
	LowBatch       int
	Workers        int
}

// SweeperConfig controls the background class-expiry sweep.
type SweeperConfig struct {
	Enabled bool
	Spec    string
}

// ResourcesConfig controls storage of uploaded course resources.
type ResourcesConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
}

// SchedulerConfig toggles the automated schedule generator.
type SchedulerConfig struct {
	GeneratorEnabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.DocStore = DocStoreConfig{
		URI:            v.GetString("MONGO_URI"),
		Database:       v.GetString("MONGO_DATABASE"),
		ConnectTimeout: parseDuration(v.GetString("MONGO_CONNECT_TIMEOUT"), 10*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		AccessSecret:  v.GetString("JWT_ACCESS_SECRET"),
		RefreshSecret: v.GetString("JWT_REFRESH_SECRET"),
		AccessExpiry:  parseDuration(v.GetString("JWT_ACCESS_EXPIRATION"), 15*time.Minute),
		RefreshExpiry: parseDuration(v.GetString("JWT_REFRESH_EXPIRATION"), 7*24*time.Hour),
		Issuer:        v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled:  v.GetBool("ENABLE_CACHE"),
		TTL:      parseDuration(v.GetString("CACHE_TTL"), 10*time.Minute),
		ViewsTTL: parseDuration(v.GetString("CACHE_VIEWS_TTL"), 2*time.Minute),
	}

	cfg.Push = PushConfig{
		Enabled:        v.GetBool("ENABLE_PUSH"),
		MediumInterval: parseDuration(v.GetString("PUSH_MEDIUM_INTERVAL"), 5*time.Second),
		LowInterval:    parseDuration(v.GetString("PUSH_LOW_INTERVAL"), 10*time.Second),
		MediumBatch:    v.GetInt("PUSH_MEDIUM_BATCH"),
		LowBatch:       v.GetInt("PUSH_LOW_BATCH"),
		Workers:        v.GetInt("PUSH_WORKERS"),
	}

	cfg.Sweeper = SweeperConfig{
		Enabled: v.GetBool("ENABLE_SWEEPER"),
		Spec:    v.GetString("SWEEPER_CRON_SPEC"),
	}

	maxResourceSize := v.GetInt64("RESOURCES_MAX_FILE_SIZE")
	if maxResourceSize <= 0 {
		maxResourceSize = 25 * 1024 * 1024
	}
	cfg.Resources = ResourcesConfig{
		StorageDir:       v.GetString("RESOURCES_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("RESOURCES_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("RESOURCES_SIGNED_URL_TTL"), time.Hour),
		MaxFileSizeBytes: maxResourceSize,
	}

	cfg.Scheduler = SchedulerConfig{
		GeneratorEnabled: v.GetBool("ENABLE_SCHEDULE_GENERATOR"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "campushq")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "campushq_profiles")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ACCESS_SECRET", "dev_access_secret")
	v.SetDefault("JWT_REFRESH_SECRET", "dev_refresh_secret")
	v.SetDefault("JWT_ACCESS_EXPIRATION", "15m")
	v.SetDefault("JWT_REFRESH_EXPIRATION", "168h")
	v.SetDefault("JWT_ISSUER", "campushq")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("CACHE_VIEWS_TTL", "2m")

	v.SetDefault("ENABLE_PUSH", true)
	v.SetDefault("PUSH_MEDIUM_INTERVAL", "5s")
	v.SetDefault("PUSH_LOW_INTERVAL", "10s")
	v.SetDefault("PUSH_MEDIUM_BATCH", 20)
	v.SetDefault("PUSH_LOW_BATCH", 10)
	v.SetDefault("PUSH_WORKERS", 4)

	v.SetDefault("ENABLE_SWEEPER", true)
	v.SetDefault("SWEEPER_CRON_SPEC", "@every 1m")

	v.SetDefault("RESOURCES_STORAGE_DIR", "./resources")
	v.SetDefault("RESOURCES_SIGNED_URL_SECRET", "dev_resources_secret")
	v.SetDefault("RESOURCES_SIGNED_URL_TTL", "1h")
	v.SetDefault("RESOURCES_MAX_FILE_SIZE", 25*1024*1024)

	v.SetDefault("ENABLE_SCHEDULE_GENERATOR", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
