package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"proprompt-mcp/common"
	"proprompt-mcp/internal/auth"
	"proprompt-mcp/internal/genai/gemini"
	"proprompt-mcp/internal/metrics"
	"proprompt-mcp/internal/oss"
	"proprompt-mcp/internal/runner"
	"proprompt-mcp/internal/state"
	"proprompt-mcp/internal/store"
	"proprompt-mcp/internal/studio"
	"proprompt-mcp/internal/tools"

	"github.com/mark3labs/mcp-go/server"
)

func main() {
	// 加载配置（同时初始化日志）
	config, err := common.LoadConfig()
	if err != nil {
		common.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	common.WithFields(map[string]interface{}{
		"base_url":         config.GenAIBaseURL,
		"text_model":       config.GenAITextModelName,
		"structured_model": config.GenAIStructuredModelName,
		"image_model":      config.GenAIImageModelName,
		"edit_model":       config.GenAIEditModelName,
		"api_key":          auth.MaskAPIKey(config.GenAIAPIKey),
		"store":            config.StoreDriver,
		"image_format":     config.GenAIImageFormat,
	}).Info("Server starting...")

	// 持久化存储与应用状态
	kv, err := store.NewKVFromConfig(ctx, config)
	if err != nil {
		common.Fatalf("Failed to open store: %v", err)
	}
	defer kv.Close()

	app := state.New(kv, nil)
	if err := app.Load(ctx); err != nil {
		common.WithError(err).Warn("Failed to load saved state, starting empty")
	}

	// 凭证：启动时探测一次
	selector := auth.NewEnvSelector(config.EnvFile, config.GenAIAPIKey)
	hasKey, err := selector.HasSelectedKey(ctx)
	if err != nil {
		common.WithError(err).Warn("Failed to probe API key")
	}
	app.Auth.Probe(hasKey)
	app.Auth.Watch(func(s state.AuthStatus) {
		common.WithField("status", s.String()).Info("Credential state changed")
	})

	gateway, err := gemini.NewGatewayFromConfig(config, selector)
	if err != nil {
		common.Fatalf("Failed to create Gemini gateway: %v", err)
	}

	notifier := tools.ClientNotifier{}
	tasks := runner.NewFromConfig(config, app, selector, notifier)

	var opts []studio.Option
	publisher, err := oss.NewPublisherFromConfig(config)
	if err != nil {
		common.Fatalf("Failed to create OSS client: %v", err)
	}
	if publisher != nil {
		opts = append(opts, studio.WithPublisher(publisher))
	}
	st := studio.New(gateway, tasks, app, notifier, opts...)

	// 创建 MCP 服务器
	s := server.NewMCPServer(
		"ProPrompt MCP Server",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithLogging(),
		server.WithRecovery(),
	)

	if err := tools.RegisterStudioTools(s, st); err != nil {
		common.Fatalf("Failed to register studio tools: %v", err)
	}
	if err := tools.RegisterSessionTools(s, app, selector); err != nil {
		common.Fatalf("Failed to register session tools: %v", err)
	}

	if config.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, config.MetricsAddr); err != nil {
				common.WithError(err).Error("Metrics endpoint stopped")
			}
		}()
	}

	// 启动 stdio 服务器
	if err := server.ServeStdio(s); err != nil {
		common.Fatalf("Server error: %v", err)
	}
}
