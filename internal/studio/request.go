package studio

import (
	"proprompt-mcp/internal/genai/gemini"
)

// Kind 请求类型标签
type Kind string

const (
	KindVisual    Kind = "visual"
	KindScript    Kind = "script"
	KindSEO       Kind = "seo"
	KindThumbnail Kind = "thumbnail"
	KindImage     Kind = "image"
	KindEdit      Kind = "edit"
	KindTimelapse Kind = "timelapse"
	KindSpy       Kind = "spy"
)

// Request 一次生成请求。每个动作构造一个新的值，构造后不再修改。
type Request interface {
	Kind() Kind
}

// VisualRequest 分镜视觉提示词
type VisualRequest struct {
	Idea             string `json:"idea"`
	Count            int    `json:"count" validate:"min=1,max=100"`
	Style            string `json:"style"`
	OutputLanguage   string `json:"outputLanguage"`
	VoiceType        string `json:"voiceType"`
	Consistency      string `json:"consistency" validate:"oneof=dynamic fixed"`
	VisualAnchor     string `json:"visualAnchor"`
	BackgroundAnchor string `json:"backgroundAnchor"`
	Camera           string `json:"camera"`
	Lighting         string `json:"lighting"`
	Focus            string `json:"focus"`
	ColorGrade       string `json:"colorGrade"`
}

func (VisualRequest) Kind() Kind { return KindVisual }

// DefaultVisualRequest 表单的初始值
func DefaultVisualRequest() VisualRequest {
	return VisualRequest{
		Count:          10,
		Style:          "cinematic",
		OutputLanguage: "English",
		VoiceType:      "off",
		Consistency:    "dynamic",
		Camera:         "static",
		Lighting:       "natural",
		Focus:          "deep",
		ColorGrade:     "standard",
	}
}

// ScriptRequest 剧本
type ScriptRequest struct {
	Topic    string `json:"topic"`
	Language string `json:"language"`
	Tone     string `json:"tone"`
	Length   string `json:"length" validate:"oneof=short standard long"`
	Format   string `json:"format"`
}

func (ScriptRequest) Kind() Kind { return KindScript }

// SEORequest 视频 SEO 元数据。Topic 为空时使用当前视觉提示词的创意，Channel 为空时使用保存的频道名称。
type SEORequest struct {
	Topic    string `json:"topic"`
	Channel  string `json:"channel"`
	Language string `json:"language"`
	Style    string `json:"style"`
}

func (SEORequest) Kind() Kind { return KindSEO }

// ThumbnailRequest 一组缩略图提示词。Anchor 为空时使用当前视觉锚点。
type ThumbnailRequest struct {
	Context string `json:"context"`
	Anchor  string `json:"anchor"`
	Style   string `json:"style"`
}

func (ThumbnailRequest) Kind() Kind { return KindThumbnail }

// ImageRequest 为看板上的一个缩略图生成图片
type ImageRequest struct {
	ID          string `json:"id" validate:"required"`
	Quality     string `json:"quality" validate:"oneof=1K 2K 4K"`
	AspectRatio string `json:"aspectRatio" validate:"required"`
}

func (ImageRequest) Kind() Kind { return KindImage }

// EditRequest 编辑看板上已经生成的图片。Instruction 为空时使用之前保存的编辑输入。
type EditRequest struct {
	ID          string `json:"id" validate:"required"`
	Instruction string `json:"instruction"`
}

func (EditRequest) Kind() Kind { return KindEdit }

// 延时摄影模式
const (
	TimelapseManual     = "manual"
	TimelapseBatch      = "batch"
	TimelapseBatchImage = "batch_img"
)

// Phases 分阶段描述（0%、30%、50%、70%、100%）
type Phases struct {
	P0   string `json:"p0"`
	P30  string `json:"p30"`
	P50  string `json:"p50"`
	P70  string `json:"p70"`
	P100 string `json:"p100"`
}

// TimelapseRequest 延时摄影提示词。batch_img 模式下 Frames 作为内联图片一起发送。
type TimelapseRequest struct {
	Character string              `json:"character"`
	Style     string              `json:"style"`
	Mode      string              `json:"mode" validate:"oneof=manual batch batch_img"`
	From      string              `json:"from"`
	To        string              `json:"to"`
	Phases    Phases              `json:"phases"`
	Frames    []gemini.InlineData `json:"-"`
}

func (TimelapseRequest) Kind() Kind { return KindTimelapse }

// SpyRequest 竞品内容分析
type SpyRequest struct {
	Input string `json:"input" validate:"required"`
}

func (SpyRequest) Kind() Kind { return KindSpy }

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func (r ScriptRequest) withDefaults() ScriptRequest {
	r.Language = orDefault(r.Language, "Vietnamese")
	r.Tone = orDefault(r.Tone, "Logical")
	r.Length = orDefault(r.Length, "standard")
	r.Format = orDefault(r.Format, "movie")
	return r
}

func (r SEORequest) withDefaults() SEORequest {
	r.Language = orDefault(r.Language, "Vietnamese")
	r.Style = orDefault(r.Style, "clickbait")
	return r
}

func (r ThumbnailRequest) withDefaults() ThumbnailRequest {
	r.Style = orDefault(r.Style, "Hyper-realistic")
	return r
}

func (r ImageRequest) withDefaults() ImageRequest {
	r.Quality = orDefault(r.Quality, "1K")
	r.AspectRatio = orDefault(r.AspectRatio, "16:9")
	return r
}

func (r TimelapseRequest) withDefaults() TimelapseRequest {
	r.Style = orDefault(r.Style, "urban_pulse")
	r.Mode = orDefault(r.Mode, TimelapseManual)
	return r
}
