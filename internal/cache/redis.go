package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 5 * time.Minute

// Catalog caches JSON-encoded catalog reads in Redis. Keys embed a version
// counter; Invalidate bumps it so every older entry is orphaned and expires
// by TTL.
type Catalog struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		Protocol: 2,
	})
}

func NewCatalog(client *redis.Client, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Catalog{Client: client, Prefix: "catalog", TTL: ttl}
}

func (c *Catalog) versionKey() string {
	return c.Prefix + ":version"
}

func (c *Catalog) key(ctx context.Context, k string) (string, error) {
	v, err := c.Client.Get(ctx, c.versionKey()).Int64()
	if errors.Is(err, redis.Nil) {
		v = 0
	} else if err != nil {
		return "", fmt.Errorf("redis: read version: %w", err)
	}
	return fmt.Sprintf("%s:v%d:%s", c.Prefix, v, k), nil
}

func (c *Catalog) Get(ctx context.Context, k string, dst any) (bool, error) {
	key, err := c.key(ctx, k)
	if err != nil {
		return false, err
	}

	b, err := c.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis: get %s: %w", key, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("redis: decode %s: %w", key, err)
	}
	return true, nil
}

func (c *Catalog) Set(ctx context.Context, k string, v any) error {
	key, err := c.key(ctx, k)
	if err != nil {
		return err
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redis: encode %s: %w", key, err)
	}
	if err := c.Client.Set(ctx, key, b, c.TTL).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (c *Catalog) Invalidate(ctx context.Context) error {
	if err := c.Client.Incr(ctx, c.versionKey()).Err(); err != nil {
		return fmt.Errorf("redis: bump version: %w", err)
	}
	return nil
}

func (c *Catalog) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
