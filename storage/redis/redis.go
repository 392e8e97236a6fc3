// Package redis provides a Storage backed by github.com/redis/go-redis/v9.
// Keys are laid out as <prefix><namespace>:<key> and expire natively.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ggoodman/mcp-toolkit-go/storage"
)

// Config contains configuration options for the Redis storage.
type Config struct {
	// Client is the Redis client instance.
	Client *redis.Client

	// KeyPrefix is prepended to every key. Default: "mcp:storage:".
	KeyPrefix string
}

// Storage implements storage.Storage on Redis.
type Storage struct {
	client    *redis.Client
	keyPrefix string
}

type storedItem struct {
	Data      []byte     `json:"data"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// New creates a Redis-backed store.
func New(cfg Config) (*Storage, error) {
	if cfg.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "mcp:storage:"
	}
	return &Storage{client: cfg.Client, keyPrefix: cfg.KeyPrefix}, nil
}

func (s *Storage) nsPrefix(ns string) string { return s.keyPrefix + ns + ":" }

func (s *Storage) Get(ctx context.Context, key string, opts ...storage.Option) (*storage.Item, error) {
	o := storage.Apply(opts...)
	redisKey := s.nsPrefix(o.Namespace) + key

	raw, err := s.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key %s: %w", redisKey, err)
	}

	var item storedItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored data: %w", err)
	}
	out := &storage.Item{Data: item.Data, CreatedAt: item.CreatedAt, ExpiresAt: item.ExpiresAt}
	if out.IsExpired() {
		s.client.Del(ctx, redisKey)
		return nil, nil
	}
	return out, nil
}

func (s *Storage) Set(ctx context.Context, key string, data []byte, opts ...storage.Option) error {
	o := storage.Apply(opts...)
	redisKey := s.nsPrefix(o.Namespace) + key

	now := time.Now()
	item := storedItem{Data: data, CreatedAt: now, ExpiresAt: o.Expiry(now)}
	var ttl time.Duration
	if item.ExpiresAt != nil {
		ttl = *o.TTL
	}

	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal storage item: %w", err)
	}
	if err := s.client.Set(ctx, redisKey, b, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", redisKey, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, opts ...storage.Option) error {
	o := storage.Apply(opts...)
	if o.Key != nil {
		redisKey := s.nsPrefix(o.Namespace) + *o.Key
		if err := s.client.Del(ctx, redisKey).Err(); err != nil {
			return fmt.Errorf("failed to delete key %s: %w", redisKey, err)
		}
		return nil
	}

	keys, err := s.scan(ctx, o.Namespace)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

func (s *Storage) Keys(ctx context.Context, opts ...storage.Option) ([]string, error) {
	o := storage.Apply(opts...)
	full, err := s.scan(ctx, o.Namespace)
	if err != nil {
		return nil, err
	}
	prefix := s.nsPrefix(o.Namespace)
	// SCAN may return a key more than once.
	seen := make(map[string]struct{}, len(full))
	keys := make([]string, 0, len(full))
	for _, k := range full {
		k = strings.TrimPrefix(k, prefix)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close closes the underlying client.
func (s *Storage) Close() error {
	return s.client.Close()
}

// scan returns the full Redis keys of a namespace using SCAN.
func (s *Storage) scan(ctx context.Context, ns string) ([]string, error) {
	pattern := escapeGlob(s.nsPrefix(ns)) + "*"
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys for pattern %s: %w", pattern, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func escapeGlob(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(s)
}

var _ storage.Storage = (*Storage)(nil)
