package state

import "sync"

// Progress 进度视图快照
type Progress struct {
	Token   uint64 `json:"token"`
	Busy    bool   `json:"busy"`
	Percent int    `json:"percent"`
	Status  string `json:"status"`
}

// Busy 单例进度视图。每次 Begin 生成新的 token，只有最新 token 的更新才会生效，
// 旧任务的 ticker 在下一次 Advance 时发现自己过期并退出。
type Busy struct {
	mu      sync.Mutex
	token   uint64
	busy    bool
	percent int
	status  string
}

// Begin 进入忙碌状态，进度归零，返回新的 token
func (b *Busy) Begin(status string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token++
	b.busy = true
	b.percent = 0
	b.status = status
	return b.token
}

// Advance 进度前进 step，封顶 ceiling。token 已过期时返回 false。
func (b *Busy) Advance(token uint64, step, ceiling int) (Progress, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if token != b.token || !b.busy {
		return b.snapshotLocked(), false
	}
	if b.percent < ceiling {
		b.percent = min(b.percent+step, ceiling)
	}
	return b.snapshotLocked(), true
}

// SetStatus 更新状态文案
func (b *Busy) SetStatus(token uint64, status string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if token != b.token || !b.busy {
		return false
	}
	b.status = status
	return true
}

// Complete 任务结束，进度置为 100
func (b *Busy) Complete(token uint64) (Progress, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if token != b.token || !b.busy {
		return b.snapshotLocked(), false
	}
	b.percent = 100
	return b.snapshotLocked(), true
}

// Clear 退出忙碌状态。被更新的任务覆盖后不做任何事。
func (b *Busy) Clear(token uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if token != b.token {
		return false
	}
	b.busy = false
	b.status = ""
	return true
}

// Snapshot 当前进度
func (b *Busy) Snapshot() Progress {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

func (b *Busy) snapshotLocked() Progress {
	return Progress{Token: b.token, Busy: b.busy, Percent: b.percent, Status: b.status}
}
