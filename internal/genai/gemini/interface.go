package gemini

import "context"

// Gateway 对 Gemini 的出站调用。空字符串表示远端没有返回可用内容（null），不是错误。
type Gateway interface {
	// Invoke 发送文本或多段消息。structured 为 true 时走结构化 JSON 模型，schema 可选。
	Invoke(ctx context.Context, payload Payload, structured bool, schema *Schema) (string, error)
	// InvokeImage 文生图，quality 为 1K/2K/4K，aspectRatio 如 16:9
	InvokeImage(ctx context.Context, prompt string, quality string, aspectRatio string) (string, error)
	// EditImage 图片编辑，sourceImage 可以是 data URI 或裸 base64
	EditImage(ctx context.Context, sourceImage string, instruction string) (string, error)
}

// KeySource 提供当前选中的 API Key。每次调用都会重新读取，以便重新选择后立即生效。
type KeySource interface {
	APIKey() string
}

// KeySourceFunc 把函数适配为 KeySource
type KeySourceFunc func() string

// APIKey 实现 KeySource
func (f KeySourceFunc) APIKey() string { return f() }

// InlineData 内联二进制片段（例如参考图片）
type InlineData struct {
	MIMEType string
	Data     []byte
}

// Payload 纯文本指令或多段消息：文本 + 零个或多个内联附件
type Payload struct {
	Text        string
	Attachments []InlineData
}

// Text 构造纯文本 Payload
func Text(s string) Payload {
	return Payload{Text: s}
}

// IsMultipart 是否带有附件
func (p Payload) IsMultipart() bool {
	return len(p.Attachments) > 0
}
