// Package studio 实现各个生成功能：组装提示词、调用网关、解析结果、写入历史记录。
package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"proprompt-mcp/common"
	"proprompt-mcp/internal/genai/gemini"
	"proprompt-mcp/internal/runner"
	"proprompt-mcp/internal/state"

	"github.com/go-playground/validator/v10"
)

// DegradedNotice 拿不到图片时（免费额度）的提示
const DegradedNotice = "Lưu ý: Bạn đang dùng API Free, vui lòng copy Prompt để tạo ảnh bên ngoài."

var (
	// ErrInvalidRequest 请求参数不合法
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNoScript 还没有生成过剧本
	ErrNoScript = errors.New("no script has been generated yet")
)

// TaskRunner 包装用户触发的动作
type TaskRunner interface {
	Run(ctx context.Context, action runner.Action) runner.Outcome
	Reauthorize(ctx context.Context, cause error) runner.Outcome
}

// ImagePublisher 把 data URI 图片发布为 URL
type ImagePublisher interface {
	Publish(ctx context.Context, dataURI string) (string, error)
}

// Result 一次动作的结果。Value 只有在成功且远端返回了内容时才有意义。
type Result[T any] struct {
	Value   T
	Outcome runner.Outcome
	// Empty 远端没有返回内容（null），不算错误
	Empty bool
}

// Studio 各生成功能的入口
type Studio struct {
	gateway   gemini.Gateway
	tasks     TaskRunner
	app       *state.App
	notifier  runner.Notifier
	publisher ImagePublisher
	validate  *validator.Validate
	board     *Board

	mu          sync.Mutex
	draft       VisualRequest
	script      *ScriptResult
	scriptTopic string
}

// Option Studio 可选项
type Option func(*Studio)

// WithPublisher 生成的图片上传到对象存储
func WithPublisher(p ImagePublisher) Option {
	return func(s *Studio) { s.publisher = p }
}

// New 创建 Studio
func New(gateway gemini.Gateway, tasks TaskRunner, app *state.App, notifier runner.Notifier, opts ...Option) *Studio {
	s := &Studio{
		gateway:  gateway,
		tasks:    tasks,
		app:      app,
		notifier: notifier,
		validate: validator.New(),
		board:    &Board{},
		draft:    DefaultVisualRequest(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Board 缩略图看板
func (s *Studio) Board() *Board { return s.board }

// VisualDraft 当前的视觉提示词表单（剧本同步后会被预填）
func (s *Studio) VisualDraft() VisualRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft
}

func (s *Studio) check(req Request) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRequest, req.Kind(), err)
	}
	return nil
}

// mergeDraft 空字段沿用表单中的值
func (s *Studio) mergeDraft(r VisualRequest) VisualRequest {
	d := s.VisualDraft()
	r.Idea = orDefault(r.Idea, d.Idea)
	r.VisualAnchor = orDefault(r.VisualAnchor, d.VisualAnchor)
	r.BackgroundAnchor = orDefault(r.BackgroundAnchor, d.BackgroundAnchor)
	r.Style = orDefault(r.Style, d.Style)
	r.OutputLanguage = orDefault(r.OutputLanguage, d.OutputLanguage)
	r.VoiceType = orDefault(r.VoiceType, d.VoiceType)
	r.Consistency = orDefault(r.Consistency, d.Consistency)
	r.Camera = orDefault(r.Camera, d.Camera)
	r.Lighting = orDefault(r.Lighting, d.Lighting)
	r.Focus = orDefault(r.Focus, d.Focus)
	r.ColorGrade = orDefault(r.ColorGrade, d.ColorGrade)
	if r.Count == 0 {
		r.Count = d.Count
	}
	return r
}

// UpdateVisualDraft 合并并保存表单，不调用远端
func (s *Studio) UpdateVisualDraft(r VisualRequest) (VisualRequest, error) {
	r = s.mergeDraft(r)
	if err := s.check(r); err != nil {
		return VisualRequest{}, err
	}
	s.mu.Lock()
	s.draft = r
	s.mu.Unlock()
	return r, nil
}

// GenerateVisualPrompts 生成分镜视觉提示词
func (s *Studio) GenerateVisualPrompts(ctx context.Context, req VisualRequest) (Result[VisualResult], error) {
	req, err := s.UpdateVisualDraft(req)
	if err != nil {
		return Result[VisualResult]{}, err
	}
	stylePrompt := req.Style
	if opt, ok := StyleLibrary.Find(req.Style); ok {
		stylePrompt = opt.Prompt
	}

	var res Result[VisualResult]
	res.Outcome = s.tasks.Run(ctx, func(ctx context.Context) error {
		raw, err := s.gateway.Invoke(ctx, gemini.Text(visualPrompt(req, stylePrompt)), false, nil)
		if err != nil {
			return err
		}
		if raw == "" {
			res.Empty = true
			return nil
		}
		res.Value = VisualResult{Raw: raw, Scenes: SplitScenes(raw)}
		s.app.History.Add(ctx, raw, state.TypeVisualPrompt)
		return nil
	})
	return res, nil
}

// GenerateScript 生成剧本，成功后可以同步到视觉提示词表单
func (s *Studio) GenerateScript(ctx context.Context, req ScriptRequest) (Result[ScriptResult], error) {
	req = req.withDefaults()
	if err := s.check(req); err != nil {
		return Result[ScriptResult]{}, err
	}

	var res Result[ScriptResult]
	res.Outcome = s.tasks.Run(ctx, func(ctx context.Context) error {
		raw, err := s.gateway.Invoke(ctx, gemini.Text(scriptPrompt(req)), true, scriptSchema)
		if err != nil {
			return err
		}
		var script ScriptResult
		if err := gemini.ParseStructured(raw, &script); err != nil {
			return fmt.Errorf("script: %w", err)
		}
		res.Value = script

		s.mu.Lock()
		s.script, s.scriptTopic = &script, req.Topic
		s.mu.Unlock()

		s.app.History.Add(ctx, script.Script, state.TypeScript)
		return nil
	})
	return res, nil
}

// ScriptToVisual 把最近一次剧本的角色和场景预填到视觉提示词表单，不调用远端
func (s *Studio) ScriptToVisual() (VisualRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.script == nil {
		return VisualRequest{}, ErrNoScript
	}
	s.draft.VisualAnchor = s.script.Character
	s.draft.BackgroundAnchor = s.script.Background
	s.draft.Idea = "Ý tưởng từ kịch bản: " + s.scriptTopic
	return s.draft, nil
}

// GenerateSEO 生成视频 SEO 元数据
func (s *Studio) GenerateSEO(ctx context.Context, req SEORequest) (Result[SEOResult], error) {
	req = req.withDefaults()
	if req.Topic == "" {
		req.Topic = s.VisualDraft().Idea
	}
	if req.Channel == "" {
		req.Channel = s.app.Prefs.ChannelName()
	} else if err := s.app.Prefs.SetChannelName(ctx, req.Channel); err != nil {
		common.WithError(err).Warn("Failed to persist channel name")
	}
	if err := s.check(req); err != nil {
		return Result[SEOResult]{}, err
	}

	var res Result[SEOResult]
	res.Outcome = s.tasks.Run(ctx, func(ctx context.Context) error {
		raw, err := s.gateway.Invoke(ctx, gemini.Text(seoPrompt(req)), true, seoSchema)
		if err != nil {
			return err
		}
		var seo SEOResult
		if err := gemini.ParseStructured(raw, &seo); err != nil {
			return fmt.Errorf("seo: %w", err)
		}
		res.Value = seo
		s.app.History.Add(ctx, raw, state.TypeSEO)
		return nil
	})
	return res, nil
}

// GenerateThumbnailPrompts 生成一组缩略图提示词并替换看板
func (s *Studio) GenerateThumbnailPrompts(ctx context.Context, req ThumbnailRequest) (Result[[]ThumbnailVariation], error) {
	req = req.withDefaults()
	if req.Anchor == "" {
		req.Anchor = s.VisualDraft().VisualAnchor
	}
	if err := s.check(req); err != nil {
		return Result[[]ThumbnailVariation]{}, err
	}

	var res Result[[]ThumbnailVariation]
	res.Outcome = s.tasks.Run(ctx, func(ctx context.Context) error {
		raw, err := s.gateway.Invoke(ctx, gemini.Text(thumbnailPrompt(req)), true, thumbnailSchema)
		if err != nil {
			return err
		}
		var items []ThumbnailVariation
		if err := gemini.ParseStructured(raw, &items); err != nil {
			return fmt.Errorf("thumbnails: %w", err)
		}
		s.board.Replace(items)
		res.Value = s.board.List()
		return nil
	})
	return res, nil
}

// GenerateTimelapse 生成延时摄影提示词，batch_img 模式会附带参考图片
func (s *Studio) GenerateTimelapse(ctx context.Context, req TimelapseRequest) (Result[string], error) {
	req = req.withDefaults()
	if req.Character == "" {
		req.Character = s.VisualDraft().VisualAnchor
	}
	if err := s.check(req); err != nil {
		return Result[string]{}, err
	}
	styleLabel := req.Style
	if opt, ok := TimelapseStyles.Find(req.Style); ok {
		styleLabel = opt.Label
	}

	payload := gemini.Text(timelapsePrompt(req, styleLabel))
	if req.Mode == TimelapseBatchImage {
		payload.Attachments = req.Frames
	}

	var res Result[string]
	res.Outcome = s.tasks.Run(ctx, func(ctx context.Context) error {
		raw, err := s.gateway.Invoke(ctx, payload, false, nil)
		if err != nil {
			return err
		}
		if raw == "" {
			res.Empty = true
			return nil
		}
		res.Value = raw
		s.app.History.Add(ctx, raw, state.TypeTimelapse)
		return nil
	})
	return res, nil
}

// AnalyzeCompetitor 拆解竞品内容
func (s *Studio) AnalyzeCompetitor(ctx context.Context, req SpyRequest) (Result[SpyResult], error) {
	if err := s.check(req); err != nil {
		return Result[SpyResult]{}, err
	}

	var res Result[SpyResult]
	res.Outcome = s.tasks.Run(ctx, func(ctx context.Context) error {
		raw, err := s.gateway.Invoke(ctx, gemini.Text(spyPrompt(req)), true, spySchema)
		if err != nil {
			return err
		}
		var spy SpyResult
		if err := gemini.ParseStructured(raw, &spy); err != nil {
			return fmt.Errorf("spy: %w", err)
		}
		res.Value = spy
		s.app.History.Add(ctx, raw, state.TypeSpy)
		return nil
	})
	return res, nil
}
