package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config captures everything the server needs from the environment. Stores
// fall back to in-memory implementations when DatabaseURL or RedisURL are
// left empty, which keeps local development dependency-free.
type Config struct {
	Addr          string        `envconfig:"ADDR" default:":8080"`
	DatabaseURL   string        `envconfig:"DATABASE_URL"`
	RedisURL      string        `envconfig:"REDIS_URL"`
	JWTSigningKey string        `envconfig:"JWT_SIGNING_KEY" default:"dev-secret-key-change-in-production"`
	JWTIssuer     string        `envconfig:"JWT_ISSUER" default:"access-gate"`
	StoreTimeout  time.Duration `envconfig:"STORE_TIMEOUT" default:"2s"`

	// Permission-check cache. Entries expire by TTL from insertion; the
	// cache is bounded so a burst of distinct checks cannot grow it without
	// limit.
	PermCacheTTL  time.Duration `envconfig:"PERM_CACHE_TTL" default:"5m"`
	PermCacheSize int           `envconfig:"PERM_CACHE_SIZE" default:"4096"`

	// Router-level request throttle.
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"300"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// RedisOptions tunes the Redis connection pool.
type RedisOptions struct {
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// FromEnv builds the configuration from environment variables so main stays
// lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("ACCESS_GATE", &cfg); err != nil {
		return Config{}, fmt.Errorf("process config: %w", err)
	}
	return cfg, nil
}

// RedisFromEnv builds the Redis pool options.
func RedisFromEnv() (RedisOptions, error) {
	var opts RedisOptions
	if err := envconfig.Process("ACCESS_GATE", &opts); err != nil {
		return RedisOptions{}, fmt.Errorf("process redis config: %w", err)
	}
	return opts, nil
}
