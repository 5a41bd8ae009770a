package runner

import (
	"context"
	"errors"

	"proprompt-mcp/internal/state"
)

// GenericNotice 非凭证类失败时展示给用户的通用提示
const GenericNotice = "Có lỗi xảy ra, vui lòng thử lại."

// ErrTaskPanicked 动作执行中发生 panic
var ErrTaskPanicked = errors.New("task panicked")

// LoadingPhrases 忙碌时轮换展示的状态文案
var LoadingPhrases = []string{
	"Đang triệu hồi AI...",
	"Đang kết nối Banana Pro...",
	"Đang vẽ kịch bản triệu view...",
	"Sắp hoàn tất, đừng rời mắt...",
}

// Action 一次用户触发的生成动作
type Action func(ctx context.Context) error

// Reporter 接收进度快照
type Reporter interface {
	Report(ctx context.Context, p state.Progress)
}

// ReporterFunc 把函数适配为 Reporter
type ReporterFunc func(ctx context.Context, p state.Progress)

// Report 实现 Reporter
func (f ReporterFunc) Report(ctx context.Context, p state.Progress) { f(ctx, p) }

// Notifier 向用户展示一条提示
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Reauthorizer 重新选择凭证
type Reauthorizer interface {
	SelectKey(ctx context.Context) error
}

type reporterKey struct{}

// WithReporter 把本次调用的进度接收者放进 ctx
func WithReporter(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, r)
}

func reporterFrom(ctx context.Context) Reporter {
	if r, ok := ctx.Value(reporterKey{}).(Reporter); ok && r != nil {
		return r
	}
	return nil
}
