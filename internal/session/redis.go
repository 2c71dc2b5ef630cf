package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix 会话键前缀
const DefaultRedisPrefix = "dcfassist:session:"

// RedisStore 基于 Redis 的会话存储，过期交给键的 TTL 处理
type RedisStore struct {
	client *redis.Client
	prefix string
	opts   options
}

// NewRedisStore 使用已建立的客户端
func NewRedisStore(client *redis.Client, prefix string, opts ...Option) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, opts: buildOptions(opts)}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Create(ctx context.Context, s *Session) (string, error) {
	stored := r.opts.prepare(s)
	payload, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(stored.ID), payload, r.opts.ttl).Err(); err != nil {
		return "", fmt.Errorf("redis set: %w", err)
	}
	return stored.ID, nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	payload, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}

	sess.LastAccessed = r.opts.now()
	if updated, err := json.Marshal(&sess); err == nil {
		// 刷新访问时间但保留原有 TTL
		if err := r.client.Set(ctx, r.key(id), updated, redis.KeepTTL).Err(); err != nil {
			return nil, fmt.Errorf("redis set: %w", err)
		}
	}
	return &sess, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := r.client.Del(ctx, r.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Sweep Redis 自行淘汰过期键，无需清理
func (r *RedisStore) Sweep(context.Context) (int, error) {
	return 0, nil
}

func (r *RedisStore) Count(ctx context.Context) (int, error) {
	n := 0
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("redis scan: %w", err)
	}
	return n, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
