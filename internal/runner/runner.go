package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"proprompt-mcp/common"
	"proprompt-mcp/internal/genai/gemini"
	"proprompt-mcp/internal/metrics"
	"proprompt-mcp/internal/state"
)

// Status 任务结果
type Status int

const (
	Succeeded Status = iota
	// Reauthorized 凭证失败，已经重新走过一次选择流程
	Reauthorized
	Failed
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Reauthorized:
		return "reauthorized"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Kind 失败分类
type Kind int

const (
	KindNone Kind = iota
	KindAuthorization
	KindMalformed
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAuthorization:
		return "authorization"
	case KindMalformed:
		return "malformed"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Outcome 一次 Run 的结果
type Outcome struct {
	Status Status
	Kind   Kind
	Err    error
	// Notice 已经展示给用户的提示，没有则为空
	Notice string
}

// OK 是否成功
func (o Outcome) OK() bool { return o.Status == Succeeded }

// Classify 对动作返回的错误分类
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case gemini.IsAuthorizationError(err):
		return KindAuthorization
	case errors.Is(err, gemini.ErrMalformedResponse):
		return KindMalformed
	default:
		return KindTransport
	}
}

// Options 进度条节奏
type Options struct {
	Interval time.Duration // 刷新间隔
	Settle   time.Duration // 到达 100 后清除忙碌状态前的停留时间
	Step     int           // 每次前进的百分比
	Ceiling  int           // 完成前的上限
	// PhraseEvery 每隔多少次刷新切换一次状态文案
	PhraseEvery int
	Phrases     []string
}

// DefaultOptions 默认节奏：300ms 前进 2%，封顶 98%，停留 500ms
func DefaultOptions() Options {
	return Options{
		Interval:    300 * time.Millisecond,
		Settle:      500 * time.Millisecond,
		Step:        2,
		Ceiling:     98,
		PhraseEvery: 10,
		Phrases:     LoadingPhrases,
	}
}

// Runner 包装每一次用户触发的生成动作：进度、错误分类、凭证重新选择
type Runner struct {
	app      *state.App
	reauth   Reauthorizer
	notifier Notifier
	opts     Options
}

// New 创建 Runner，opts 中的零值使用默认值
func New(app *state.App, reauth Reauthorizer, notifier Notifier, opts Options) *Runner {
	def := DefaultOptions()
	if opts.Interval <= 0 {
		opts.Interval = def.Interval
	}
	if opts.Settle < 0 {
		opts.Settle = 0
	}
	if opts.Step <= 0 {
		opts.Step = def.Step
	}
	if opts.Ceiling <= 0 || opts.Ceiling > 100 {
		opts.Ceiling = def.Ceiling
	}
	if opts.PhraseEvery <= 0 {
		opts.PhraseEvery = def.PhraseEvery
	}
	if len(opts.Phrases) == 0 {
		opts.Phrases = def.Phrases
	}
	return &Runner{app: app, reauth: reauth, notifier: notifier, opts: opts}
}

// NewFromConfig 按配置创建 Runner
func NewFromConfig(cfg *common.Config, app *state.App, reauth Reauthorizer, notifier Notifier) *Runner {
	opts := DefaultOptions()
	opts.Interval = cfg.ProgressInterval()
	opts.Settle = cfg.ProgressSettle()
	return New(app, reauth, notifier, opts)
}

// Run 执行一次动作。返回时进度已经是 100，忙碌状态在停留时间之后清除。
func (r *Runner) Run(ctx context.Context, action Action) Outcome {
	busy := r.app.Busy
	reporter := reporterFrom(ctx)
	report := func(p state.Progress) {
		if reporter != nil {
			reporter.Report(ctx, p)
		}
	}

	token := busy.Begin(r.opts.Phrases[0])
	report(busy.Snapshot())

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.tick(token, stop, done, report)

	err := invoke(ctx, action)
	outcome := r.settleError(ctx, err)

	close(stop)
	<-done
	if p, ok := busy.Complete(token); ok {
		report(p)
	}
	time.AfterFunc(r.opts.Settle, func() {
		busy.Clear(token)
	})

	metrics.ObserveTask(taskStatus(outcome))
	return outcome
}

// invoke 执行动作，panic 转为普通失败，保证进度条正常收尾
func invoke(ctx context.Context, action Action) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, p)
		}
	}()
	return action(ctx)
}

// tick 近似进度：固定节奏前进，封顶 Ceiling。token 过期后退出。
func (r *Runner) tick(token uint64, stop <-chan struct{}, done chan<- struct{}, report func(state.Progress)) {
	defer close(done)
	ticker := time.NewTicker(r.opts.Interval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
		if n%r.opts.PhraseEvery == 0 {
			phrase := r.opts.Phrases[(n/r.opts.PhraseEvery)%len(r.opts.Phrases)]
			r.app.Busy.SetStatus(token, phrase)
		}
		p, ok := r.app.Busy.Advance(token, r.opts.Step, r.opts.Ceiling)
		if !ok {
			return
		}
		report(p)
	}
}

// settleError 按错误分类更新凭证状态并提示用户
func (r *Runner) settleError(ctx context.Context, err error) Outcome {
	kind := Classify(err)
	switch kind {
	case KindNone:
		r.app.Auth.ConfirmSuccess()
		return Outcome{Status: Succeeded}

	case KindAuthorization:
		return r.Reauthorize(ctx, err)

	default:
		common.WithError(err).WithField("kind", kind.String()).Error("Generation task failed")
		r.notifier.Notify(ctx, GenericNotice)
		return Outcome{Status: Failed, Kind: kind, Err: err, Notice: GenericNotice}
	}
}

// Reauthorize 凭证失效：标记为未授权，打开一次 Key 选择，选择完成后进入待验证状态
func (r *Runner) Reauthorize(ctx context.Context, cause error) Outcome {
	if cause != nil {
		common.WithError(cause).Warn("Credential rejected, reselecting API key")
	}
	r.app.Auth.MarkUnauthorized()
	if err := r.reauth.SelectKey(ctx); err != nil {
		common.WithError(err).Error("API key selection failed")
		return Outcome{Status: Failed, Kind: KindAuthorization, Err: cause}
	}
	r.app.Auth.MarkSelected()
	return Outcome{Status: Reauthorized, Kind: KindAuthorization, Err: cause}
}

func taskStatus(o Outcome) string {
	switch {
	case o.Status == Succeeded:
		return metrics.StatusSuccess
	case o.Status == Reauthorized:
		return metrics.StatusReauthed
	case o.Kind == KindAuthorization:
		return metrics.StatusAuth
	case o.Kind == KindMalformed:
		return metrics.StatusMalform
	default:
		return metrics.StatusError
	}
}
