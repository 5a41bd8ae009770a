package gemini

import (
	"fmt"

	"proprompt-mcp/common"
)

// NewGatewayFromConfig 从配置创建 Gemini 网关，API Key 由 keys 在每次调用时提供
func NewGatewayFromConfig(cfg *common.Config, keys KeySource) (*Client, error) {
	client, err := NewClient(Config{
		Keys:            keys,
		BaseURL:         cfg.GenAIBaseURL,
		TextModel:       cfg.GenAITextModelName,
		StructuredModel: cfg.GenAIStructuredModelName,
		ImageModel:      cfg.GenAIImageModelName,
		EditModel:       cfg.GenAIEditModelName,
		Temperature:     cfg.GenAITemperature,
		Timeout:         cfg.GenAITimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini gateway: %w", err)
	}
	return client, nil
}

var _ Gateway = (*Client)(nil)
