package studio

import (
	"errors"
	"sync"
)

var (
	// ErrNotFound 看板上没有这个缩略图
	ErrNotFound = errors.New("thumbnail not found")
	// ErrBusyItem 该缩略图正在生成中
	ErrBusyItem = errors.New("thumbnail is already generating")
	// ErrNothingToEdit 没有图片或没有编辑指令
	ErrNothingToEdit = errors.New("thumbnail has no image or edit instruction")
)

// ThumbnailVariation 看板上的一个缩略图，带自己的生成状态
type ThumbnailVariation struct {
	ID           string `json:"id" validate:"required"`
	Prompt       string `json:"prompt" validate:"required"`
	ImageURL     string `json:"imageUrl,omitempty"`
	IsGenerating bool   `json:"isGenerating"`
	EditInput    string `json:"editInput,omitempty"`

	// image 最近一次生成的图片（data URI），编辑时作为源图
	image string
}

// Board 缩略图看板，每个条目独立于全局进度
type Board struct {
	mu    sync.Mutex
	items []ThumbnailVariation
	// batch 每次 Replace 加一，条目生成只写回开始时的那一批
	batch uint64
}

// Replace 用新的一组提示词替换看板
func (b *Board) Replace(items []ThumbnailVariation) {
	fresh := make([]ThumbnailVariation, len(items))
	for i, it := range items {
		fresh[i] = ThumbnailVariation{ID: it.ID, Prompt: it.Prompt}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = fresh
	b.batch++
}

// List 看板快照
func (b *Board) List() []ThumbnailVariation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ThumbnailVariation(nil), b.items...)
}

// Get 按 ID 查找
func (b *Board) Get(id string) (ThumbnailVariation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(id)
	if i < 0 {
		return ThumbnailVariation{}, ErrNotFound
	}
	return b.items[i], nil
}

// SetEditInput 保存编辑指令
func (b *Board) SetEditInput(id, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(id)
	if i < 0 {
		return ErrNotFound
	}
	b.items[i].EditInput = text
	return nil
}

// begin 标记开始生成，返回条目和当前批次。edit 为 true 时要求已有图片和编辑指令。
func (b *Board) begin(id string, edit bool) (ThumbnailVariation, uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(id)
	if i < 0 {
		return ThumbnailVariation{}, 0, ErrNotFound
	}
	it := &b.items[i]
	if it.IsGenerating {
		return ThumbnailVariation{}, 0, ErrBusyItem
	}
	if edit && (it.image == "" || it.EditInput == "") {
		return ThumbnailVariation{}, 0, ErrNothingToEdit
	}
	it.IsGenerating = true
	return *it, b.batch, nil
}

// finish 生成结束。image 为空表示没有拿到图片，原有图片也一并清除。
func (b *Board) finish(batch uint64, id, image, url string, clearEdit bool) ThumbnailVariation {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(id)
	if batch != b.batch || i < 0 {
		// 生成期间看板被替换
		return ThumbnailVariation{ID: id, image: image, ImageURL: url}
	}
	it := &b.items[i]
	it.IsGenerating = false
	it.image = image
	it.ImageURL = url
	if clearEdit {
		it.EditInput = ""
	}
	return *it
}

// fail 生成失败，只清除生成标记
func (b *Board) fail(batch uint64, id string) ThumbnailVariation {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexLocked(id)
	if batch != b.batch || i < 0 {
		return ThumbnailVariation{ID: id}
	}
	b.items[i].IsGenerating = false
	return b.items[i]
}

func (b *Board) indexLocked(id string) int {
	for i := range b.items {
		if b.items[i].ID == id {
			return i
		}
	}
	return -1
}
