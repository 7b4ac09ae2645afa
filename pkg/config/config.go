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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Waitlist WaitlistConfig
	Scoring  ScoringSourceConfig
	Cache    CacheConfig
	Exports  ExportsConfig
	Rescore  RescoreConfig
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

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// WaitlistConfig tunes beta capacity and queue-wave behaviour.
type WaitlistConfig struct {
	BetaCap             int
	DailyWaveCapacity   int
	SignalLookupTimeout time.Duration
}

// ScoringSourceConfig points at the remote scoring configuration document.
type ScoringSourceConfig struct {
	URL          string
	FetchTimeout time.Duration
	CacheTTL     time.Duration
}

// CacheConfig governs Redis-backed caching of queue snapshots.
type CacheConfig struct {
	Enabled  bool
	QueueTTL time.Duration
}

// ExportsConfig gates the admin applicant export endpoints.
type ExportsConfig struct {
	Enabled bool
	Dir     string
	URLTTL  time.Duration
}

// RescoreConfig controls the background rescore queue.
type RescoreConfig struct {
	Workers   int
	Retries   int
	BatchSize int
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

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Waitlist = WaitlistConfig{
		BetaCap:             v.GetInt("WAITLIST_BETA_CAP"),
		DailyWaveCapacity:   v.GetInt("WAITLIST_DAILY_WAVE_CAPACITY"),
		SignalLookupTimeout: parseDuration(v.GetString("WAITLIST_SIGNAL_TIMEOUT"), 2*time.Second),
	}

	cfg.Scoring = ScoringSourceConfig{
		URL:          v.GetString("SCORING_CONFIG_URL"),
		FetchTimeout: parseDuration(v.GetString("SCORING_CONFIG_FETCH_TIMEOUT"), 3*time.Second),
		CacheTTL:     parseDuration(v.GetString("SCORING_CONFIG_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Cache = CacheConfig{
		Enabled:  v.GetBool("ENABLE_QUEUE_CACHE"),
		QueueTTL: parseDuration(v.GetString("QUEUE_CACHE_TTL"), 30*time.Second),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
		Dir:     v.GetString("EXPORTS_DIR"),
		URLTTL:  parseDuration(v.GetString("EXPORTS_URL_TTL"), 24*time.Hour),
	}

	cfg.Rescore = RescoreConfig{
		Workers:   v.GetInt("RESCORE_WORKERS"),
		Retries:   v.GetInt("RESCORE_RETRIES"),
		BatchSize: v.GetInt("RESCORE_BATCH_SIZE"),
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
	v.SetDefault("DB_NAME", "teebox")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WAITLIST_BETA_CAP", 500)
	v.SetDefault("WAITLIST_DAILY_WAVE_CAPACITY", 50)
	v.SetDefault("WAITLIST_SIGNAL_TIMEOUT", "2s")

	v.SetDefault("SCORING_CONFIG_URL", "")
	v.SetDefault("SCORING_CONFIG_FETCH_TIMEOUT", "3s")
	v.SetDefault("SCORING_CONFIG_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_QUEUE_CACHE", false)
	v.SetDefault("QUEUE_CACHE_TTL", "30s")

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORTS_DIR", "./exports")
	v.SetDefault("EXPORTS_URL_TTL", "24h")

	v.SetDefault("RESCORE_WORKERS", 1)
	v.SetDefault("RESCORE_RETRIES", 3)
	v.SetDefault("RESCORE_BATCH_SIZE", 200)
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
