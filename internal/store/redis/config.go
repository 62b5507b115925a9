// Package redis stores dialog sessions in Redis with a sliding TTL.
package redis

import "time"

type Config struct {
	Address  string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	// KeyPrefix is prepended to all keys.
	KeyPrefix string

	// TTL is refreshed on every write. Zero keeps sessions until deleted.
	TTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		Address:      "localhost:6379",
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		KeyPrefix:    "recipebot:",
		TTL:          24 * time.Hour,
	}
}

type ConfigOption func(*Config)

func WithAddress(addr string) ConfigOption {
	return func(c *Config) {
		c.Address = addr
	}
}

func WithPassword(password string) ConfigOption {
	return func(c *Config) {
		c.Password = password
	}
}

func WithDB(db int) ConfigOption {
	return func(c *Config) {
		c.DB = db
	}
}

func WithKeyPrefix(prefix string) ConfigOption {
	return func(c *Config) {
		c.KeyPrefix = prefix
	}
}

func WithTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.TTL = ttl
	}
}
