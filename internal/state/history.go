package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"proprompt-mcp/common"
	"proprompt-mcp/internal/metrics"
	"proprompt-mcp/internal/store"
)

// HistoryLimit 历史记录上限
const HistoryLimit = 50

// 历史记录分类
const (
	TypeVisualPrompt = "Visual Prompt"
	TypeScript       = "Kịch bản"
	TypeSEO          = "SEO Video"
	TypeTimelapse    = "Timelapse"
	TypeSpy          = "Spy Video"
)

const historyTimeLayout = "2006-01-02 15:04:05"

// HistoryEntry 一条生成记录
type HistoryEntry struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

// History 最新在前、最多 50 条的生成记录，每次变更后写入存储
type History struct {
	mu      sync.Mutex
	entries []HistoryEntry
	kv      store.KV
	now     func() time.Time

	// persistMu 在释放 mu 之前获取，写入顺序与列表变更顺序一致
	persistMu sync.Mutex
}

// NewHistory 创建历史记录，now 为 nil 时使用 time.Now
func NewHistory(kv store.KV, now func() time.Time) *History {
	if now == nil {
		now = time.Now
	}
	return &History{kv: kv, now: now}
}

// Load 启动时从存储读取一次。没有记录时为空列表。
func (h *History) Load(ctx context.Context) error {
	raw, err := h.kv.Get(ctx, store.KeyHistory)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return fmt.Errorf("failed to parse stored history: %w", err)
	}
	if len(entries) > HistoryLimit {
		entries = entries[:HistoryLimit]
	}

	h.mu.Lock()
	h.entries = entries
	h.mu.Unlock()
	metrics.SetHistorySize(len(entries))
	return nil
}

// Add 在头部插入一条记录并持久化。持久化失败只记日志，内存中的记录仍然保留。
func (h *History) Add(ctx context.Context, text, typ string) HistoryEntry {
	h.mu.Lock()
	now := h.now()
	id := now.UnixMilli()
	if len(h.entries) > 0 && id <= h.entries[0].ID {
		id = h.entries[0].ID + 1
	}
	entry := HistoryEntry{ID: id, Text: text, Type: typ, Time: now.Format(historyTimeLayout)}

	next := make([]HistoryEntry, 0, min(len(h.entries)+1, HistoryLimit))
	next = append(next, entry)
	next = append(next, h.entries...)
	if len(next) > HistoryLimit {
		next = next[:HistoryLimit]
	}
	h.entries = next
	raw, err := marshalEntries(next)
	h.persistMu.Lock()
	h.mu.Unlock()
	defer h.persistMu.Unlock()

	metrics.SetHistorySize(len(next))
	if err == nil {
		err = h.kv.Set(ctx, store.KeyHistory, raw)
	}
	if err != nil {
		common.WithError(err).WithField("type", typ).Error("Failed to persist history")
	}
	return entry
}

// Entries 返回记录副本，最新在前
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len 当前记录条数
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func marshalEntries(entries []HistoryEntry) (string, error) {
	b, err := json.Marshal(entries)
	if err != nil {
		return "", fmt.Errorf("failed to encode history: %w", err)
	}
	return string(b), nil
}
