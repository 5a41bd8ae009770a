package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"proprompt-mcp/common"
	"proprompt-mcp/internal/genai/gemini"
	"proprompt-mcp/internal/runner"
	"proprompt-mcp/internal/studio"
	"proprompt-mcp/internal/utils"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// reauthorizedText 凭证被拒绝并重新选择后返回给客户端的文字
const reauthorizedText = "The API key was rejected or missing. A key has been (re)selected, please run the tool again."

// studioTools 各生成工具的处理函数
type studioTools struct {
	studio *studio.Studio
}

// RegisterStudioTools 注册各生成功能的 MCP tools
func RegisterStudioTools(s *server.MCPServer, st *studio.Studio) error {
	if st == nil {
		return errors.New("studio is required")
	}
	h := &studioTools{studio: st}

	s.AddTool(mcp.NewTool(
		"generate_visual_prompts",
		mcp.WithDescription("Generate a batch of scene-by-scene video prompts (Veo/Runway/Luma). Empty fields reuse the current visual form, which script_to_visual can prefill."),
		mcp.WithString("idea", mcp.Description("Video idea")),
		mcp.WithNumber("count", mcp.Description("Number of scenes"), mcp.Min(1), mcp.Max(100)),
		mcp.WithString("style", mcp.Description("Visual style"), mcp.Enum(studio.StyleLibrary.Values()...)),
		mcp.WithString("output_language", mcp.Description("Language of the scene descriptions, e.g. English")),
		mcp.WithString("voice_type", mcp.Description("Dialogue voice, off for silent scenes"), mcp.Enum(studio.VoiceTypes.Values()...)),
		mcp.WithString("consistency", mcp.Description("Character movement"), mcp.Enum("dynamic", "fixed")),
		mcp.WithString("visual_anchor", mcp.Description("Main character description kept in every scene")),
		mcp.WithString("background_anchor", mcp.Description("Environment kept in every scene")),
		mcp.WithString("camera", mcp.Enum(studio.CameraMovements.Values()...)),
		mcp.WithString("lighting", mcp.Enum(studio.LightingModes.Values()...)),
		mcp.WithString("focus", mcp.Enum(studio.FocusModes.Values()...)),
		mcp.WithString("color_grade", mcp.Enum(studio.ColorGrades.Values()...)),
	), h.generateVisualPrompts)

	s.AddTool(mcp.NewTool(
		"generate_script",
		mcp.WithDescription("Write a cinematic script with a character (visual anchor) and a background lock."),
		mcp.WithString("topic", mcp.Required(), mcp.Description("Script topic")),
		mcp.WithString("language", mcp.Description("Script language, default Vietnamese")),
		mcp.WithString("tone", mcp.Description("Tone, default Logical")),
		mcp.WithString("length", mcp.Enum(studio.ScriptLengths.Values()...)),
		mcp.WithString("format", mcp.Enum(studio.ScriptFormats.Values()...)),
	), h.generateScript)

	s.AddTool(mcp.NewTool(
		"script_to_visual",
		mcp.WithDescription("Copy the character and background of the latest script into the visual prompt form."),
	), h.scriptToVisual)

	s.AddTool(mcp.NewTool(
		"generate_seo",
		mcp.WithDescription("Generate a YouTube title, description and hashtags. Topic defaults to the current visual idea, channel to the saved channel name."),
		mcp.WithString("topic", mcp.Description("Video topic")),
		mcp.WithString("channel", mcp.Description("Channel name, saved for next time")),
		mcp.WithString("language", mcp.Description("Metadata language, default Vietnamese")),
		mcp.WithString("style", mcp.Enum(studio.SEOStyles.Values()...)),
	), h.generateSEO)

	s.AddTool(mcp.NewTool(
		"generate_thumbnail_prompts",
		mcp.WithDescription("Generate 3 thumbnail prompts and replace the thumbnail board."),
		mcp.WithString("context", mcp.Required(), mcp.Description("What the video is about")),
		mcp.WithString("anchor", mcp.Description("Subject, defaults to the current visual anchor")),
		mcp.WithString("style", mcp.Enum(studio.ThumbnailStyles.Values()...)),
	), h.generateThumbnailPrompts)

	s.AddTool(mcp.NewTool(
		"list_thumbnails",
		mcp.WithDescription("List the thumbnail board with each item's generation state."),
	), h.listThumbnails)

	s.AddTool(mcp.NewTool(
		"generate_thumbnail_image",
		mcp.WithDescription("Render the image of one thumbnail on the board."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Thumbnail id")),
		mcp.WithString("quality", mcp.Enum(studio.ImageQualities.Values()...)),
		mcp.WithString("aspect_ratio", mcp.Description("Aspect ratio, default 16:9")),
	), h.generateThumbnailImage)

	s.AddTool(mcp.NewTool(
		"edit_thumbnail_image",
		mcp.WithDescription("Edit the rendered image of one thumbnail with an instruction."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Thumbnail id")),
		mcp.WithString("instruction", mcp.Description("Edit instruction, defaults to the saved one")),
	), h.editThumbnailImage)

	s.AddTool(mcp.NewTool(
		"generate_timelapse",
		mcp.WithDescription("Generate a master timelapse prompt. Modes: manual (from/to), batch (phases), batch_img (reference frames)."),
		mcp.WithString("character", mcp.Description("Subject, defaults to the current visual anchor")),
		mcp.WithString("style", mcp.Enum(studio.TimelapseStyles.Values()...)),
		mcp.WithString("mode", mcp.Enum(studio.TimelapseManual, studio.TimelapseBatch, studio.TimelapseBatchImage)),
		mcp.WithString("from", mcp.Description("Start state (manual)")),
		mcp.WithString("to", mcp.Description("End state (manual)")),
		mcp.WithString("p0", mcp.Description("Phase 0% (batch)")),
		mcp.WithString("p30", mcp.Description("Phase 30% (batch)")),
		mcp.WithString("p50", mcp.Description("Phase 50% (batch)")),
		mcp.WithString("p70", mcp.Description("Phase 70% (batch)")),
		mcp.WithString("p100", mcp.Description("Phase 100% (batch)")),
		mcp.WithArray("frames", mcp.Description("Local paths or URLs of reference frames (batch_img)"), mcp.WithStringItems()),
	), h.generateTimelapse)

	s.AddTool(mcp.NewTool(
		"analyze_competitor",
		mcp.WithDescription("Deconstruct a competitor video's hooks, keywords and AI prompts."),
		mcp.WithString("input", mcp.Required(), mcp.Description("Competitor title, description or transcript")),
	), h.analyzeCompetitor)

	return nil
}

func (h *studioTools) generateVisualPrompts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.studio.GenerateVisualPrompts(withProgress(ctx, req), studio.VisualRequest{
		Idea:             req.GetString("idea", ""),
		Count:            req.GetInt("count", 0),
		Style:            req.GetString("style", ""),
		OutputLanguage:   req.GetString("output_language", ""),
		VoiceType:        req.GetString("voice_type", ""),
		Consistency:      req.GetString("consistency", ""),
		VisualAnchor:     req.GetString("visual_anchor", ""),
		BackgroundAnchor: req.GetString("background_anchor", ""),
		Camera:           req.GetString("camera", ""),
		Lighting:         req.GetString("lighting", ""),
		Focus:            req.GetString("focus", ""),
		ColorGrade:       req.GetString("color_grade", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return outcomeResult(res.Outcome, res.Empty, res.Value)
}

func (h *studioTools) generateScript(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	topic, err := req.RequireString("topic")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("topic parameter is required: %v", err)), nil
	}
	res, err := h.studio.GenerateScript(withProgress(ctx, req), studio.ScriptRequest{
		Topic:    topic,
		Language: req.GetString("language", ""),
		Tone:     req.GetString("tone", ""),
		Length:   req.GetString("length", ""),
		Format:   req.GetString("format", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return outcomeResult(res.Outcome, res.Empty, res.Value)
}

func (h *studioTools) scriptToVisual(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draft, err := h.studio.ScriptToVisual()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult("Đã đồng bộ Anchor & Background!", draft)
}

func (h *studioTools) generateSEO(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := h.studio.GenerateSEO(withProgress(ctx, req), studio.SEORequest{
		Topic:    req.GetString("topic", ""),
		Channel:  req.GetString("channel", ""),
		Language: req.GetString("language", ""),
		Style:    req.GetString("style", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return outcomeResult(res.Outcome, res.Empty, res.Value)
}

func (h *studioTools) generateThumbnailPrompts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	thumbContext, err := req.RequireString("context")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("context parameter is required: %v", err)), nil
	}
	res, err := h.studio.GenerateThumbnailPrompts(withProgress(ctx, req), studio.ThumbnailRequest{
		Context: thumbContext,
		Anchor:  req.GetString("anchor", ""),
		Style:   req.GetString("style", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return outcomeResult(res.Outcome, res.Empty, res.Value)
}

func (h *studioTools) listThumbnails(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult("", h.studio.Board().List())
}

func (h *studioTools) generateThumbnailImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("id parameter is required: %v", err)), nil
	}
	res, err := h.studio.GenerateThumbnailImage(ctx, studio.ImageRequest{
		ID:          id,
		Quality:     req.GetString("quality", ""),
		AspectRatio: req.GetString("aspect_ratio", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return imageResult(res)
}

func (h *studioTools) editThumbnailImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("id parameter is required: %v", err)), nil
	}
	res, err := h.studio.EditThumbnailImage(ctx, studio.EditRequest{
		ID:          id,
		Instruction: req.GetString("instruction", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return imageResult(res)
}

func (h *studioTools) generateTimelapse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tr := studio.TimelapseRequest{
		Character: req.GetString("character", ""),
		Style:     req.GetString("style", ""),
		Mode:      req.GetString("mode", ""),
		From:      req.GetString("from", ""),
		To:        req.GetString("to", ""),
		Phases: studio.Phases{
			P0:   req.GetString("p0", ""),
			P30:  req.GetString("p30", ""),
			P50:  req.GetString("p50", ""),
			P70:  req.GetString("p70", ""),
			P100: req.GetString("p100", ""),
		},
	}
	if tr.Mode == studio.TimelapseBatchImage {
		for _, src := range req.GetStringSlice("frames", nil) {
			data, mimeType, err := utils.LoadImage(ctx, src)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("failed to load frame: %v", err)), nil
			}
			tr.Frames = append(tr.Frames, gemini.InlineData{MIMEType: mimeType, Data: data})
		}
	}

	res, err := h.studio.GenerateTimelapse(withProgress(ctx, req), tr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !res.Outcome.OK() || res.Empty {
		return outcomeResult(res.Outcome, res.Empty, nil)
	}
	return mcp.NewToolResultText(res.Value), nil
}

func (h *studioTools) analyzeCompetitor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := req.RequireString("input")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("input parameter is required: %v", err)), nil
	}
	res, err := h.studio.AnalyzeCompetitor(withProgress(ctx, req), studio.SpyRequest{Input: input})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return outcomeResult(res.Outcome, res.Empty, res.Value)
}

// outcomeResult 把一次任务的结果转换成工具返回值
func outcomeResult(out runner.Outcome, empty bool, value any) (*mcp.CallToolResult, error) {
	switch out.Status {
	case runner.Reauthorized:
		return mcp.NewToolResultError(reauthorizedText), nil
	case runner.Failed:
		msg := out.Notice
		if msg == "" {
			msg = "Generation failed"
		}
		if out.Err != nil {
			msg = fmt.Sprintf("%s (%v)", msg, out.Err)
		}
		return mcp.NewToolResultError(msg), nil
	}
	if empty {
		return mcp.NewToolResultText("The model returned no content."), nil
	}
	return jsonResult("", value)
}

// imageResult data URI 以图片内容返回，URL 以文本返回
func imageResult(res studio.Result[studio.ThumbnailVariation]) (*mcp.CallToolResult, error) {
	if !res.Outcome.OK() {
		return outcomeResult(res.Outcome, false, nil)
	}
	item := res.Value
	if res.Empty {
		if res.Outcome.Notice != "" {
			return mcp.NewToolResultText(res.Outcome.Notice + "\n\nPrompt: " + item.Prompt), nil
		}
		return mcp.NewToolResultText("The model returned no image."), nil
	}

	if header, payload, ok := strings.Cut(item.ImageURL, ","); ok && strings.HasPrefix(header, "data:") {
		mimeType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		return mcp.NewToolResultImage(fmt.Sprintf("Thumbnail %s", item.ID), payload, mimeType), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Thumbnail %s: %s", item.ID, item.ImageURL)), nil
}

// jsonResult 结构化结果以缩进 JSON 文本返回，prefix 非空时放在最前面
func jsonResult(prefix string, value any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		common.WithError(err).Error("Failed to encode tool result")
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	if prefix != "" {
		return mcp.NewToolResultText(prefix + "\n" + string(data)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
