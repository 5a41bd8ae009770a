package tools

import (
	"context"

	"proprompt-mcp/common"
	"proprompt-mcp/internal/runner"
	"proprompt-mcp/internal/state"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	methodProgress = "notifications/progress"
	methodMessage  = "notifications/message"
	loggerName     = "proprompt"
)

// ClientNotifier 通过 MCP 日志通知把提示推给客户端，同时写一条日志
type ClientNotifier struct{}

// Notify 实现 runner.Notifier
func (ClientNotifier) Notify(ctx context.Context, message string) {
	common.WithField("notice", message).Info("User notice")
	send(ctx, methodMessage, map[string]any{
		"level":  "warning",
		"logger": loggerName,
		"data":   message,
	})
}

// progressReporter 客户端在请求里带了 progressToken 时，把进度转成 notifications/progress
func progressReporter(req mcp.CallToolRequest) runner.Reporter {
	if req.Params.Meta == nil || req.Params.Meta.ProgressToken == nil {
		return nil
	}
	token := req.Params.Meta.ProgressToken
	return runner.ReporterFunc(func(ctx context.Context, p state.Progress) {
		send(ctx, methodProgress, map[string]any{
			"progressToken": token,
			"progress":      p.Percent,
			"total":         100,
			"message":       p.Status,
		})
	})
}

// withProgress 把本次请求的进度接收者放进 ctx
func withProgress(ctx context.Context, req mcp.CallToolRequest) context.Context {
	if r := progressReporter(req); r != nil {
		return runner.WithReporter(ctx, r)
	}
	return ctx
}

func send(ctx context.Context, method string, params map[string]any) {
	srv := server.ServerFromContext(ctx)
	if srv == nil {
		return
	}
	if err := srv.SendNotificationToClient(ctx, method, params); err != nil {
		common.WithError(err).WithField("method", method).Debug("Failed to send notification")
	}
}
