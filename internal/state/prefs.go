package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"proprompt-mcp/internal/store"
)

// Preferences 跨会话保存的偏好设置
type Preferences struct {
	mu          sync.RWMutex
	kv          store.KV
	channelName string
}

// NewPreferences 创建偏好设置
func NewPreferences(kv store.KV) *Preferences {
	return &Preferences{kv: kv}
}

// Load 启动时读取一次
func (p *Preferences) Load(ctx context.Context) error {
	name, err := p.kv.Get(ctx, store.KeyChannelName)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load channel name: %w", err)
	}
	p.mu.Lock()
	p.channelName = name
	p.mu.Unlock()
	return nil
}

// ChannelName 频道名称
func (p *Preferences) ChannelName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.channelName
}

// SetChannelName 修改频道名称并持久化
func (p *Preferences) SetChannelName(ctx context.Context, name string) error {
	p.mu.Lock()
	p.channelName = name
	p.mu.Unlock()
	return p.kv.Set(ctx, store.KeyChannelName, name)
}
