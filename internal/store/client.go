package store

import (
	"context"
	"fmt"

	"proprompt-mcp/common"
)

// NewKVFromConfig 按 STORE_DRIVER 创建存储
func NewKVFromConfig(ctx context.Context, cfg *common.Config) (KV, error) {
	switch cfg.StoreDriver {
	case common.StoreDriverRedis:
		return NewRedis(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	case common.StoreDriverSQLite:
		return NewSQLite(cfg.SQLitePath)
	case common.StoreDriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.StoreDriver)
	}
}

var (
	_ KV = (*SQLiteKV)(nil)
	_ KV = (*RedisKV)(nil)
	_ KV = (*MemoryKV)(nil)
)
