package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server   ServerConfig
	App      AppConfig
	Cache    CacheConfig
	WebCache WebCacheConfig
	FetchLog FetchLogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"alx-cache-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Debug       bool   `envconfig:"APP_DEBUG" default:"false"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// CacheConfig holds key-value store settings.
type CacheConfig struct {
	// StoreType selects the backend: redis or memory.
	StoreType string `envconfig:"CACHE_STORE" default:"redis"`

	// ResetOnStart wipes the whole store during startup. Every key is
	// lost, including counters and call history.
	ResetOnStart bool `envconfig:"CACHE_RESET_ON_START" default:"false"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	RedisDialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	RedisReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	RedisWriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// WebCacheConfig holds page cache settings.
type WebCacheConfig struct {
	TTL          time.Duration `envconfig:"WEBCACHE_TTL" default:"10s"`
	FetchTimeout time.Duration `envconfig:"WEBCACHE_FETCH_TIMEOUT" default:"15s"`
}

// FetchLogConfig holds fetch journal settings.
type FetchLogConfig struct {
	// Type selects the backend: sqlite, mysql or none.
	Type string `envconfig:"FETCHLOG_DB_TYPE" default:"sqlite"`
	Path string `envconfig:"FETCHLOG_DB_PATH" default:"./data/fetchlog.db"`

	// MySQL settings
	MySQLHost     string `envconfig:"FETCHLOG_DB_HOST" default:"localhost"`
	MySQLPort     int    `envconfig:"FETCHLOG_DB_PORT" default:"3306"`
	MySQLName     string `envconfig:"FETCHLOG_DB_NAME" default:"alx_cache"`
	MySQLUser     string `envconfig:"FETCHLOG_DB_USER" default:"root"`
	MySQLPassword string `envconfig:"FETCHLOG_DB_PASS" default:""`

	RetentionPeriod time.Duration `envconfig:"FETCHLOG_RETENTION" default:"168h"`
	CleanupInterval time.Duration `envconfig:"FETCHLOG_CLEANUP_INTERVAL" default:"1h"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// MySQLDSN returns the MySQL data source name.
func (f *FetchLogConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		f.MySQLUser, f.MySQLPassword, f.MySQLHost, f.MySQLPort, f.MySQLName)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (a *AppConfig) IsProduction() bool {
	return a.Environment == "production"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
