// Package state 保存进程级的应用状态，由调用方显式注入到 runner、studio 和 tools。
package state

import (
	"context"
	"time"

	"proprompt-mcp/internal/store"
)

// App 应用状态容器
type App struct {
	Auth    *Auth
	Busy    *Busy
	History *History
	Prefs   *Preferences
}

// New 创建状态容器，now 为 nil 时使用 time.Now
func New(kv store.KV, now func() time.Time) *App {
	return &App{
		Auth:    &Auth{},
		Busy:    &Busy{},
		History: NewHistory(kv, now),
		Prefs:   NewPreferences(kv),
	}
}

// Load 启动时从存储读取历史记录和偏好设置
func (a *App) Load(ctx context.Context) error {
	if err := a.History.Load(ctx); err != nil {
		return err
	}
	return a.Prefs.Load(ctx)
}
