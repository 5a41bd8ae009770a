package studio

import (
	"strings"

	"proprompt-mcp/internal/genai/gemini"
)

// ScriptResult 剧本：角色（视觉锚点）、场景（背景锁定）与正文
type ScriptResult struct {
	Character  string `json:"character" validate:"required"`
	Background string `json:"background" validate:"required"`
	Script     string `json:"script" validate:"required"`
}

// SEOResult 视频元数据
type SEOResult struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Hashtags    string `json:"hashtags" validate:"required"`
}

// SpyResult 竞品拆解
type SpyResult struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	Prompts     string `json:"prompts" validate:"required"`
	Script      string `json:"script" validate:"required"`
}

// Scene 视觉提示词中的一行分镜
type Scene struct {
	Number string   `json:"number"`
	Visual string   `json:"visual"`
	Fields []string `json:"fields"`
	// Text 复制用的完整文本
	Text string `json:"text"`
}

// VisualResult 视觉提示词原文和拆分后的分镜
type VisualResult struct {
	Raw    string  `json:"raw"`
	Scenes []Scene `json:"scenes"`
}

// 远端的结构化输出约束
var (
	scriptSchema    = gemini.StringObject("character", "background", "script")
	seoSchema       = gemini.StringObject("title", "description", "hashtags")
	spySchema       = gemini.StringObject("title", "description", "prompts", "script")
	thumbnailSchema = gemini.ArrayOf(gemini.StringObject("id", "prompt"))
)

// SplitScenes 按 "Scene" 切分原文，每段再按 "|" 切成字段
func SplitScenes(raw string) []Scene {
	var scenes []Scene
	for _, chunk := range strings.Split(raw, "Scene") {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		parts := strings.Split(chunk, "|")
		fields := make([]string, len(parts))
		for i, p := range parts {
			fields[i] = strings.TrimSpace(p)
		}
		scene := Scene{
			Number: fields[0],
			Fields: fields,
			Text:   "Scene " + strings.TrimSpace(chunk),
		}
		if len(fields) > 1 {
			scene.Visual = fields[1]
		}
		scenes = append(scenes, scene)
	}
	return scenes
}
