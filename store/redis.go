// Package store provides the Redis-backed Store implementation for
// deployments where sessions and mood history must survive restarts.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	mindful "github.com/mindfulai/agents-go"
)

// RedisStore implements mindful.Store over Redis. Keys are namespaced as
// "{prefix}:{namespace}:{key}" for KV and "{prefix}:{namespace}:list:{key}"
// for lists.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	ctx    context.Context
}

// RedisStoreConfig configures the Redis store.
type RedisStoreConfig struct {
	Prefix string        // key prefix, default "mindful"
	TTL    time.Duration // default TTL for KV entries, 0 = no expiry
}

// NewRedisStore wraps an existing client. Compatible with Client,
// ClusterClient, and Ring.
func NewRedisStore(client redis.UniversalClient, config ...RedisStoreConfig) *RedisStore {
	cfg := RedisStoreConfig{Prefix: "mindful"}
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "mindful"
	}
	return &RedisStore{
		client: client,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
		ctx:    context.Background(),
	}
}

// Dial connects to Redis and returns a store over the connection.
func Dial(addr, password string, db int, config ...RedisStoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return NewRedisStore(client, config...), nil
}

func (r *RedisStore) kvKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, namespace, key)
}

func (r *RedisStore) listKey(namespace, key string) string {
	return fmt.Sprintf("%s:%s:list:%s", r.prefix, namespace, key)
}

func (r *RedisStore) Get(namespace, key string) (string, error) {
	val, err := r.client.Get(r.ctx, r.kvKey(namespace, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return val, nil
}

func (r *RedisStore) Set(namespace, key, value string) error {
	return r.client.Set(r.ctx, r.kvKey(namespace, key), value, r.ttl).Err()
}

func (r *RedisStore) Delete(namespace, key string) error {
	return r.client.Del(r.ctx, r.kvKey(namespace, key)).Err()
}

func (r *RedisStore) Append(namespace, key, value string) error {
	return r.client.RPush(r.ctx, r.listKey(namespace, key), value).Err()
}

func (r *RedisStore) GetList(namespace, key string, limit, offset int) ([]string, error) {
	start := int64(offset)
	var stop int64
	if limit > 0 {
		stop = start + int64(limit) - 1
	} else {
		stop = -1
	}
	return r.client.LRange(r.ctx, r.listKey(namespace, key), start, stop).Result()
}

func (r *RedisStore) TrimList(namespace, key string, maxSize int) error {
	// LTrim(0, -1) keeps everything, so an empty-the-list trim must be
	// a delete instead.
	if maxSize <= 0 {
		return r.client.Del(r.ctx, r.listKey(namespace, key)).Err()
	}
	return r.client.LTrim(r.ctx, r.listKey(namespace, key), int64(-maxSize), -1).Err()
}

func (r *RedisStore) ClearList(namespace, key string) error {
	return r.client.Del(r.ctx, r.listKey(namespace, key)).Err()
}

func (r *RedisStore) ListLength(namespace, key string) (int, error) {
	n, err := r.client.LLen(r.ctx, r.listKey(namespace, key)).Result()
	return int(n), err
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Compile-time interface check.
var _ mindful.Store = (*RedisStore)(nil)
