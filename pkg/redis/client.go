package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nhc-it/assetlend-backend/pkg/config"
	"github.com/nhc-it/assetlend-backend/pkg/logger"
)

const (
	keyNamespace      = "al"
	idempotencyPrefix = "idempotency"

	// placeholder held while the first request for a key is still running
	reservedMarker = "__reserved__"
)

var errNotInitialized = errors.New("redis client not initialized")

type cmdable interface {
	Ping(context.Context) *redis.StatusCmd
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	SetNX(context.Context, string, any, time.Duration) *redis.BoolCmd
	Del(context.Context, ...string) *redis.IntCmd
}

// Client wraps the redis helpers used by the API.
type Client struct {
	store cmdable
	raw   *redis.Client
}

// IdempotencyStore keeps one slot per Idempotency-Key. A slot is reserved
// before the handler runs, then either saved with the settled response or
// released so the caller may retry.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Load(ctx context.Context, key string) (Slot, error)
	Save(ctx context.Context, key, record string, ttl time.Duration) error
	Release(ctx context.Context, key string) error
	IdempotencyKey(scope, id string) string
}

// Slot is what Load found under a key.
type Slot struct {
	Record  string
	Pending bool
}

// Empty reports whether the key held nothing.
func (s Slot) Empty() bool {
	return !s.Pending && s.Record == ""
}

// New bootstraps a Redis client with pooling/timeouts and verifies connectivity.
func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	raw := redis.NewClient(opts)
	if err := raw.Ping(ctx).Err(); err != nil {
		_ = raw.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	if logg != nil {
		logg.Info(ctx, "redis connection established")
	}
	return &Client{store: raw, raw: raw}, nil
}

func optionsFromConfig(cfg config.RedisConfig) (*redis.Options, error) {
	if cfg.URL == "" && cfg.Address == "" {
		return nil, errors.New("redis url or address is required")
	}
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	if opts.DB == 0 {
		opts.DB = cfg.DB
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Reserve claims key for an in-flight request. It returns false when the key
// is already reserved or holds a saved response.
func (c *Client) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if c.store == nil {
		return false, errNotInitialized
	}
	return c.store.SetNX(ctx, key, reservedMarker, ttl).Result()
}

// Load reads the slot stored at key. A missing key yields an empty slot.
func (c *Client) Load(ctx context.Context, key string) (Slot, error) {
	if c.store == nil {
		return Slot{}, errNotInitialized
	}
	value, err := c.store.Get(ctx, key).Result()
	switch {
	case IsNil(err):
		return Slot{}, nil
	case err != nil:
		return Slot{}, err
	case value == reservedMarker:
		return Slot{Pending: true}, nil
	}
	return Slot{Record: value}, nil
}

// Save replaces the reservation with the settled response record.
func (c *Client) Save(ctx context.Context, key, record string, ttl time.Duration) error {
	if c.store == nil {
		return errNotInitialized
	}
	if record == "" || record == reservedMarker {
		return fmt.Errorf("refusing to save empty idempotency record for %s", key)
	}
	return c.store.Set(ctx, key, record, ttl).Err()
}

// Release drops the slot so the same key can be used again.
func (c *Client) Release(ctx context.Context, key string) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Del(ctx, key).Err()
}

// Ping verifies the connection.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return errNotInitialized
	}
	return c.store.Ping(ctx).Err()
}

// Close shuts down the underlying client if available.
func (c *Client) Close() error {
	if c.raw == nil {
		return nil
	}
	return c.raw.Close()
}

// IdempotencyKey returns a namespaced key for idempotency storage.
func (c *Client) IdempotencyKey(scope, id string) string {
	return buildKey(idempotencyPrefix, scope, id)
}

// IsNil reports whether err signals a missing key.
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func buildKey(parts ...string) string {
	clean := []string{keyNamespace}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		clean = append(clean, part)
	}
	return strings.Join(clean, ":")
}
