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

	Realtime  RealtimeConfig
	Auth      AuthProviderConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Mailer    MailerConfig
	Events    EventsConfig
	Exports   ExportsConfig
}

// RealtimeConfig points at the realtime database REST endpoint.
type RealtimeConfig struct {
	DatabaseURL    string
	AuthToken      string
	WatchRetryWait time.Duration
}

// AuthProviderConfig configures the external credential verifier.
type AuthProviderConfig struct {
	WebAPIKey string
	Endpoint  string
	Timeout   time.Duration
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
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs dashboard caching and the SSE stream.
type DashboardConfig struct {
	CacheEnabled      bool
	CacheTTL          time.Duration
	StreamBuffer      int
	HeartbeatInterval time.Duration
}

// MailerConfig controls instructor decision notifications.
type MailerConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Workers  int
}

// EventsConfig controls moderation event publication.
type EventsConfig struct {
	Enabled       bool
	URL           string
	SubjectPrefix string
}

// ExportsConfig toggles the review-queue export endpoints.
type ExportsConfig struct {
	Enabled bool
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

	cfg.Realtime = RealtimeConfig{
		DatabaseURL:    strings.TrimRight(v.GetString("RTDB_URL"), "/"),
		AuthToken:      v.GetString("RTDB_AUTH_TOKEN"),
		WatchRetryWait: parseDuration(v.GetString("RTDB_WATCH_RETRY_WAIT"), 5*time.Second),
	}

	cfg.Auth = AuthProviderConfig{
		WebAPIKey: v.GetString("AUTH_WEB_API_KEY"),
		Endpoint:  strings.TrimRight(v.GetString("AUTH_ENDPOINT"), "/"),
		Timeout:   parseDuration(v.GetString("AUTH_TIMEOUT"), 10*time.Second),
	}

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
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled:      v.GetBool("DASHBOARD_CACHE_ENABLED"),
		CacheTTL:          parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), time.Minute),
		StreamBuffer:      v.GetInt("DASHBOARD_STREAM_BUFFER"),
		HeartbeatInterval: parseDuration(v.GetString("DASHBOARD_HEARTBEAT_INTERVAL"), 30*time.Second),
	}

	cfg.Mailer = MailerConfig{
		Enabled:  v.GetBool("MAIL_ENABLED"),
		Host:     v.GetString("SMTP_HOST"),
		Port:     v.GetInt("SMTP_PORT"),
		Username: v.GetString("SMTP_USERNAME"),
		Password: v.GetString("SMTP_PASSWORD"),
		From:     v.GetString("SMTP_FROM"),
		Workers:  v.GetInt("MAIL_WORKERS"),
	}

	cfg.Events = EventsConfig{
		Enabled:       v.GetBool("EVENTS_ENABLED"),
		URL:           v.GetString("NATS_URL"),
		SubjectPrefix: v.GetString("EVENTS_SUBJECT_PREFIX"),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("RTDB_URL", "http://localhost:9000")
	v.SetDefault("RTDB_AUTH_TOKEN", "")
	v.SetDefault("RTDB_WATCH_RETRY_WAIT", "5s")

	v.SetDefault("AUTH_WEB_API_KEY", "")
	v.SetDefault("AUTH_ENDPOINT", "https://identitytoolkit.googleapis.com/v1")
	v.SetDefault("AUTH_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "admin_console")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "motherland-admin-console")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DASHBOARD_CACHE_ENABLED", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "1m")
	v.SetDefault("DASHBOARD_STREAM_BUFFER", 8)
	v.SetDefault("DASHBOARD_HEARTBEAT_INTERVAL", "30s")

	v.SetDefault("MAIL_ENABLED", false)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("MAIL_WORKERS", 1)

	v.SetDefault("EVENTS_ENABLED", false)
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("EVENTS_SUBJECT_PREFIX", "listings")

	v.SetDefault("ENABLE_EXPORTS", true)
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
