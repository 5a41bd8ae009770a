package store

import (
	"context"
	"errors"
	"fmt"

	"proprompt-mcp/common"

	"github.com/redis/go-redis/v9"
)

// 所有键统一加前缀，避免与同库的其他应用冲突
const redisKeyPrefix = "proprompt:"

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisKV 基于 Redis 的键值存储
type RedisKV struct {
	client *redis.Client
}

// NewRedis 连接 Redis 并做一次 PING
func NewRedis(ctx context.Context, cfg RedisConfig) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	common.WithField("addr", cfg.Addr).Debug("Redis store connected")
	return &RedisKV{client: client}, nil
}

// Get 实现 KV
func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

// Set 实现 KV，不设置过期时间
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Close 实现 KV
func (r *RedisKV) Close() error {
	return r.client.Close()
}
