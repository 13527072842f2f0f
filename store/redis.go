package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pberrors "github.com/kbukum/gopocket/errors"
	"github.com/kbukum/gopocket/logger"
)

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	// Addr is the Redis server address (host:port).
	Addr string `yaml:"addr" mapstructure:"addr"`

	// Password is the Redis server password.
	Password string `yaml:"password" mapstructure:"password"`

	// DB is the Redis database number.
	DB int `yaml:"db" mapstructure:"db"`

	// KeyPrefix is prepended verbatim to every key.
	KeyPrefix string `yaml:"key_prefix" mapstructure:"key_prefix"`

	// PoolSize is the maximum number of socket connections.
	PoolSize int `yaml:"pool_size" mapstructure:"pool_size"`

	DialTimeout  time.Duration `yaml:"dial_timeout" mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *RedisConfig) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 4
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = 3 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 3 * time.Second
	}
}

// Redis stores entries as plain string keys.
type Redis struct {
	rdb    goredis.UniversalClient
	prefix string
	log    *logger.Logger

	mu     sync.Mutex
	closed bool
}

// NewRedis connects to Redis. The connection is lazy; call Ping to verify it.
func NewRedis(cfg RedisConfig, log *logger.Logger) *Redis {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	log.Debug("Redis auth store created", logger.Fields(
		"addr", cfg.Addr,
		"db", cfg.DB,
		"pool_size", cfg.PoolSize,
	))
	return &Redis{rdb: rdb, prefix: cfg.KeyPrefix, log: log}
}

// NewRedisWithClient wraps an existing client. Close closes it.
func NewRedisWithClient(rdb goredis.UniversalClient, keyPrefix string) *Redis {
	return &Redis{rdb: rdb, prefix: keyPrefix, log: logger.Nop()}
}

func (r *Redis) fullKey(key string) string { return r.prefix + key }

// Get returns the value stored under key.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.fullKey(key)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, pberrors.StorageAccess("store.redis.get", err)
	}
	return v, true, nil
}

// Set stores value under key without expiry.
func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.fullKey(key), value, 0).Err(); err != nil {
		return pberrors.StorageAccess("store.redis.set", err)
	}
	return nil
}

// Delete removes key.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, r.fullKey(key)).Err(); err != nil {
		return pberrors.StorageAccess("store.redis.delete", err)
	}
	return nil
}

// Ping verifies the Redis connection is alive.
func (r *Redis) Ping(ctx context.Context) error {
	pong, err := r.rdb.Ping(ctx).Result()
	if err != nil {
		return pberrors.StorageAccess("store.redis.ping", err)
	}
	if pong != "PONG" {
		return pberrors.StorageAccess("store.redis.ping", fmt.Errorf("unexpected response %q", pong))
	}
	return nil
}

// Close closes the connection. Safe to call multiple times.
func (r *Redis) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.log.Debug("Closing Redis auth store")
	return r.rdb.Close()
}

// Unwrap returns the underlying go-redis client for advanced operations.
func (r *Redis) Unwrap() goredis.UniversalClient { return r.rdb }

var (
	_ Storage = (*Redis)(nil)
	_ Pinger  = (*Redis)(nil)
)
