package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"proprompt-mcp/common"
	"proprompt-mcp/internal/metrics"
	"proprompt-mcp/internal/utils"

	"google.golang.org/genai"
)

const (
	// 文生图请求的固定前缀
	imagePromptPrefix = "High-end professional thumbnail art: "
	// 返回给调用方的图片统一按 PNG data URI 编码
	imageMIMEType = "image/png"
)

// 调用类型，用于日志和指标
const (
	opText       = "text"
	opStructured = "structured"
	opImage      = "image"
	opEdit       = "edit"
)

// Client Gemini 网关实现
type Client struct {
	keys            KeySource
	baseURL         string
	httpClient      *http.Client
	textModel       string
	structuredModel string
	imageModel      string
	editModel       string
	temperature     float32
	timeout         time.Duration

	mu      sync.Mutex
	clients map[string]*genai.Client
}

// Config Gemini 网关配置
type Config struct {
	Keys            KeySource    // 当前 API Key 的来源
	BaseURL         string       // 自定义 Base URL，如果为空则使用默认值
	HTTPClient      *http.Client // 可选，测试时注入
	TextModel       string       // 纯文本任务使用的快速模型
	StructuredModel string       // 结构化 JSON 任务使用的高能力模型
	ImageModel      string       // 文生图模型
	EditModel       string       // 图片编辑模型
	Temperature     float64
	Timeout         time.Duration // 0 表示不额外设置超时
}

// NewClient 创建新的 Gemini 网关
func NewClient(cfg Config) (*Client, error) {
	if cfg.Keys == nil {
		return nil, fmt.Errorf("key source is required")
	}
	if cfg.TextModel == "" || cfg.StructuredModel == "" {
		return nil, fmt.Errorf("text and structured model names are required")
	}
	if cfg.ImageModel == "" || cfg.EditModel == "" {
		return nil, fmt.Errorf("image and edit model names are required")
	}

	return &Client{
		keys:            cfg.Keys,
		baseURL:         cfg.BaseURL,
		httpClient:      cfg.HTTPClient,
		textModel:       cfg.TextModel,
		structuredModel: cfg.StructuredModel,
		imageModel:      cfg.ImageModel,
		editModel:       cfg.EditModel,
		temperature:     float32(cfg.Temperature),
		timeout:         cfg.Timeout,
		clients:         make(map[string]*genai.Client),
	}, nil
}

// sdk 按当前 API Key 取得（或创建）SDK 客户端。Key 被重新选择后自动换新客户端。
func (c *Client) sdk(ctx context.Context) (*genai.Client, error) {
	key := strings.TrimSpace(c.keys.APIKey())
	if key == "" {
		return nil, ErrNoCredential
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cli, ok := c.clients[key]; ok {
		return cli, nil
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     key,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
	}
	if c.baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}

	cli, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	// 旧 Key 的客户端不再使用
	clear(c.clients)
	c.clients[key] = cli
	return cli, nil
}

// Invoke 发送文本或多段消息并返回主文本字段。远端错误原样返回。
func (c *Client) Invoke(ctx context.Context, payload Payload, structured bool, schema *Schema) (string, error) {
	model, op := c.textModel, opText
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	}
	if structured {
		model, op = c.structuredModel, opStructured
		config.ResponseMIMEType = "application/json"
		if schema != nil {
			config.ResponseSchema = schema
		}
	}

	parts := []*genai.Part{genai.NewPartFromText(payload.Text)}
	for _, a := range payload.Attachments {
		parts = append(parts, genai.NewPartFromBytes(a.Data, a.MIMEType))
	}

	common.WithFields(map[string]interface{}{
		"model":       model,
		"structured":  structured,
		"has_schema":  schema != nil,
		"attachments": len(payload.Attachments),
	}).Debug("Invoking Gemini")

	resp, err := c.generate(ctx, model, op, parts, config)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		common.WithField("model", model).Warn("Gemini returned an empty text body")
	}
	return text, nil
}

// InvokeImage 文生图。响应中没有图片片段时返回空字符串（免费额度降级）。
func (c *Client) InvokeImage(ctx context.Context, prompt string, quality string, aspectRatio string) (string, error) {
	config := &genai.GenerateContentConfig{
		ImageConfig: &genai.ImageConfig{
			AspectRatio: aspectRatio,
			ImageSize:   quality,
		},
	}
	parts := []*genai.Part{genai.NewPartFromText(imagePromptPrefix + prompt)}

	resp, err := c.generate(ctx, c.imageModel, opImage, parts, config)
	if err != nil {
		return "", err
	}
	return firstInlineImage(resp), nil
}

// EditImage 图片编辑：源图片作为内联 PNG，后接编辑指令
func (c *Client) EditImage(ctx context.Context, sourceImage string, instruction string) (string, error) {
	data, err := decodeImageSource(sourceImage)
	if err != nil {
		return "", err
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(data, imageMIMEType),
		genai.NewPartFromText(instruction),
	}

	resp, err := c.generate(ctx, c.editModel, opEdit, parts, nil)
	if err != nil {
		return "", err
	}
	return firstInlineImage(resp), nil
}

// generate 调用 GenerateContent，记录诊断日志与指标，不做重试
func (c *Client) generate(ctx context.Context, model, op string, parts []*genai.Part, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	start := time.Now()

	cli, err := c.sdk(ctx)
	if err != nil {
		metrics.ObserveGenAI(model, op, metrics.StatusAuth, time.Since(start))
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := cli.Models.GenerateContent(ctx, model, []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}, config)
	if err != nil {
		status := metrics.StatusError
		if IsAuthorizationError(err) {
			status = metrics.StatusAuth
		}
		metrics.ObserveGenAI(model, op, status, time.Since(start))
		common.WithError(err).WithFields(map[string]interface{}{
			"model":     model,
			"operation": op,
		}).Error("Gemini engine error")
		return nil, err
	}

	metrics.ObserveGenAI(model, op, metrics.StatusSuccess, time.Since(start))
	return resp, nil
}

// firstInlineImage 取第一个候选中第一个带内联数据的片段，编码为 PNG data URI
func firstInlineImage(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}
	for _, part := range candidate.Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return utils.EncodeDataURI(imageMIMEType, part.InlineData.Data)
		}
	}
	common.Warn("No image data found in Gemini response")
	return ""
}

// decodeImageSource 接受 data URI 或裸 base64
func decodeImageSource(src string) ([]byte, error) {
	if i := strings.Index(src, ","); i >= 0 {
		src = src[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(src)
	if err != nil {
		return nil, fmt.Errorf("failed to decode source image: %w", err)
	}
	return data, nil
}
