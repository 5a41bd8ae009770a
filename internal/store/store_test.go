package store

import (
	"context"
	"path/filepath"
	"testing"

	"proprompt-mcp/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) KV {
	t.Helper()
	kv, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv
}

func setupRedis(t *testing.T) (KV, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	kv, err := NewRedis(context.Background(), RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })
	return kv, mr
}

func runKVContract(t *testing.T, kv KV) {
	ctx := context.Background()

	_, err := kv.Get(ctx, KeyHistory)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, kv.Set(ctx, KeyChannelName, "Kênh Lịch Sử"))
	got, err := kv.Get(ctx, KeyChannelName)
	require.NoError(t, err)
	assert.Equal(t, "Kênh Lịch Sử", got)

	// 覆盖写
	require.NoError(t, kv.Set(ctx, KeyChannelName, "second"))
	got, err = kv.Get(ctx, KeyChannelName)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	// 空字符串也是合法值
	require.NoError(t, kv.Set(ctx, KeyChannelName, ""))
	got, err = kv.Get(ctx, KeyChannelName)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestSQLiteKV(t *testing.T) {
	runKVContract(t, setupSQLite(t))
}

func TestRedisKV(t *testing.T) {
	kv, _ := setupRedis(t)
	runKVContract(t, kv)
}

func TestMemoryKV(t *testing.T) {
	runKVContract(t, NewMemory())
}

func TestRedisKV_UsesPrefix(t *testing.T) {
	kv, mr := setupRedis(t)
	require.NoError(t, kv.Set(context.Background(), KeyHistory, "[]"))

	v, err := mr.Get("proprompt:" + KeyHistory)
	require.NoError(t, err)
	assert.Equal(t, "[]", v)
}

func TestSQLiteKV_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "persist.db")
	ctx := context.Background()

	kv, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, KeyHistory, `[{"id":1}]`))
	require.NoError(t, kv.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, KeyHistory)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, got)
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedis(context.Background(), RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestNewKVFromConfig(t *testing.T) {
	kv, err := NewKVFromConfig(context.Background(), &common.Config{
		StoreDriver: common.StoreDriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "cfg.db"),
	})
	require.NoError(t, err)
	defer kv.Close()
	assert.IsType(t, &SQLiteKV{}, kv)

	_, err = NewKVFromConfig(context.Background(), &common.Config{StoreDriver: "bolt"})
	assert.Error(t, err)
}
