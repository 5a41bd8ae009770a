package auth

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"

	"proprompt-mcp/common"

	"github.com/joho/godotenv"
)

// apiKeyEnv .env 与环境变量中的 Key 名称
const apiKeyEnv = "GENAI_API_KEY"

// Selector 凭证选择：探测是否已有 Key，以及让用户（重新）选择 Key
type Selector interface {
	// HasSelectedKey 是否已经选中可用的 Key
	HasSelectedKey(ctx context.Context) (bool, error)
	// SelectKey 打开选择流程，返回即视为完成（不做远端验证）
	SelectKey(ctx context.Context) error
}

// EnvSelector 以 .env 文件为"选择界面"：重新选择时重新读取文件，
// 用户也可以通过 Provide 直接提交一个 Key，下次选择时优先使用。
type EnvSelector struct {
	envFile string

	mu      sync.RWMutex
	key     string
	pending string
}

// NewEnvSelector 创建选择器，initialKey 通常来自启动配置
func NewEnvSelector(envFile, initialKey string) *EnvSelector {
	return &EnvSelector{envFile: envFile, key: strings.TrimSpace(initialKey)}
}

// APIKey 当前选中的 Key，实现 gemini.KeySource
func (s *EnvSelector) APIKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key
}

// HasSelectedKey 实现 Selector
func (s *EnvSelector) HasSelectedKey(_ context.Context) (bool, error) {
	return s.APIKey() != "", nil
}

// Provide 用户提交的 Key，在下一次 SelectKey 时生效
func (s *EnvSelector) Provide(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = strings.TrimSpace(key)
}

// SelectKey 实现 Selector。优先使用 Provide 提交的 Key，其次重新读取 .env，最后读环境变量。
func (s *EnvSelector) SelectKey(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != "" {
		s.key, s.pending = s.pending, ""
		common.Info("API key selected from user input")
		return nil
	}

	values, err := godotenv.Read(s.envFile)
	switch {
	case err == nil:
		if k := strings.TrimSpace(values[apiKeyEnv]); k != "" {
			s.key = k
			common.WithField("env_file", s.envFile).Info("API key reloaded from env file")
			return nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return err
	}

	if k := strings.TrimSpace(os.Getenv(apiKeyEnv)); k != "" {
		s.key = k
		common.Info("API key reloaded from environment")
		return nil
	}

	common.WithField("env_file", s.envFile).Warn("No API key found while reselecting credentials")
	return nil
}

// MaskAPIKey 隐藏 API Key 的敏感部分
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
