package store

import (
	"context"
	"sync"
)

// MemoryKV 进程内存储，进程退出即丢失（STORE_DRIVER=memory）
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory 创建内存存储
func NewMemory() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

// Get 实现 KV
func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set 实现 KV
func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Close 实现 KV
func (m *MemoryKV) Close() error { return nil }
