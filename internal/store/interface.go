package store

import (
	"context"
	"errors"
)

// ErrNotFound key 不存在
var ErrNotFound = errors.New("store: key not found")

// 持久化的键名
const (
	KeyHistory     = "pro_prompt_history"
	KeyChannelName = "channel_name"
)

// KV 持久化键值存储：启动时读取一次，每次变更时写入
type KV interface {
	// Get 读取 key，不存在时返回 ErrNotFound
	Get(ctx context.Context, key string) (string, error)
	// Set 写入 key
	Set(ctx context.Context, key, value string) error
	// Close 释放底层连接
	Close() error
}
