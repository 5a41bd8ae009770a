package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"proprompt-mcp/internal/auth"
	"proprompt-mcp/internal/state"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// historyURI 历史记录资源
const historyURI = "history://entries"

// KeySelector 凭证选择，同时提供当前 Key
type KeySelector interface {
	APIKey() string
	Provide(key string)
	SelectKey(ctx context.Context) error
}

// sessionTools 凭证、频道名称、历史记录等非生成类工具
type sessionTools struct {
	app      *state.App
	selector KeySelector
}

// RegisterSessionTools 注册凭证、偏好设置和历史记录相关的 tools 与资源
func RegisterSessionTools(s *server.MCPServer, app *state.App, selector KeySelector) error {
	if app == nil || selector == nil {
		return fmt.Errorf("app state and key selector are required")
	}
	h := &sessionTools{app: app, selector: selector}

	s.AddTool(mcp.NewTool(
		"auth_status",
		mcp.WithDescription("Show whether an API key is selected and whether it has been confirmed by a successful call."),
	), h.authStatus)

	s.AddTool(mcp.NewTool(
		"select_api_key",
		mcp.WithDescription("Select the API key. Pass api_key directly, or omit it to reload GENAI_API_KEY from the env file."),
		mcp.WithString("api_key", mcp.Description("Gemini API key")),
	), h.selectAPIKey)

	s.AddTool(mcp.NewTool(
		"set_channel_name",
		mcp.WithDescription("Save the channel name used by generate_seo."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Channel name")),
	), h.setChannelName)

	s.AddTool(mcp.NewTool(
		"list_history",
		mcp.WithDescription("List generation history, most recent first (at most 50 entries)."),
		mcp.WithString("type", mcp.Description("Only entries of this type"),
			mcp.Enum(state.TypeVisualPrompt, state.TypeScript, state.TypeSEO, state.TypeTimelapse, state.TypeSpy)),
		mcp.WithNumber("limit", mcp.Description("Maximum number of entries"), mcp.Min(1), mcp.Max(state.HistoryLimit)),
	), h.listHistory)

	s.AddResource(mcp.NewResource(
		historyURI,
		"Generation history",
		mcp.WithResourceDescription("Generation history, most recent first"),
		mcp.WithMIMEType("application/json"),
	), h.readHistory)

	return nil
}

type authStatusView struct {
	Status    string `json:"status"`
	HasKey    bool   `json:"hasKey"`
	MaskedKey string `json:"maskedKey,omitempty"`
}

func (h *sessionTools) authStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := h.selector.APIKey()
	view := authStatusView{Status: h.app.Auth.Status().String(), HasKey: key != ""}
	if key != "" {
		view.MaskedKey = auth.MaskAPIKey(key)
	}
	return jsonResult("", view)
}

func (h *sessionTools) selectAPIKey(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if key := strings.TrimSpace(req.GetString("api_key", "")); key != "" {
		h.selector.Provide(key)
	}
	if err := h.selector.SelectKey(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to select API key: %v", err)), nil
	}
	if h.selector.APIKey() == "" {
		return mcp.NewToolResultError("No API key found. Pass api_key or set GENAI_API_KEY in the env file."), nil
	}
	h.app.Auth.MarkSelected()
	return mcp.NewToolResultText(fmt.Sprintf("API key %s selected; it will be confirmed by the next successful call.",
		auth.MaskAPIKey(h.selector.APIKey()))), nil
}

func (h *sessionTools) setChannelName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("name parameter is required: %v", err)), nil
	}
	if err := h.app.Prefs.SetChannelName(ctx, name); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save channel name: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Channel name saved: %s", name)), nil
}

func (h *sessionTools) listHistory(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	typ := req.GetString("type", "")
	limit := req.GetInt("limit", state.HistoryLimit)
	if limit <= 0 || limit > state.HistoryLimit {
		limit = state.HistoryLimit
	}

	entries := make([]state.HistoryEntry, 0, limit)
	for _, e := range h.app.History.Entries() {
		if len(entries) >= limit {
			break
		}
		if typ == "" || e.Type == typ {
			entries = append(entries, e)
		}
	}
	return jsonResult("", entries)
}

func (h *sessionTools) readHistory(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(h.app.History.Entries())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      historyURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
