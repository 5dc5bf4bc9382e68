package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "apothex"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	// Env var names referenced by tests and deploy tooling.
	EnvAppEnv   = "APOTHEX_APP_ENV"
	EnvPort     = "APOTHEX_APP_PORT"
	EnvDBDSN    = "APOTHEX_DB_DSN"
	EnvRedisURL = "APOTHEX_REDIS_URL"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	PriceCache   PriceCacheConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"APOTHEX_APP_ENV" required:"true"`
	Port         string `envconfig:"APOTHEX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"APOTHEX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"APOTHEX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"APOTHEX_DB_DSN" required:"true"`
	Driver string `envconfig:"APOTHEX_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"APOTHEX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"APOTHEX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"APOTHEX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"APOTHEX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"APOTHEX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"APOTHEX_REDIS_ADDR"`
	Password     string        `envconfig:"APOTHEX_REDIS_PASSWORD"`
	DB           int           `envconfig:"APOTHEX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"APOTHEX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"APOTHEX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"APOTHEX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"APOTHEX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"APOTHEX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PriceCacheConfig controls caching of generated customer price lists.
type PriceCacheConfig struct {
	TTL     time.Duration `envconfig:"APOTHEX_PRICE_CACHE_TTL" default:"15m"`
	Enabled bool          `envconfig:"APOTHEX_PRICE_CACHE_ENABLED" default:"true"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"APOTHEX_AUTO_MIGRATE" default:"false"`
}
