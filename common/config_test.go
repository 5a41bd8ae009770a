package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"GENAI_BASE_URL", "GENAI_API_KEY", "GENAI_TEXT_MODEL_NAME", "GENAI_STRUCTURED_MODEL_NAME",
	"GENAI_IMAGE_MODEL_NAME", "GENAI_EDIT_MODEL_NAME", "GENAI_TEMPERATURE", "GENAI_TIMEOUT_SECONDS",
	"GENAI_IMAGE_FORMAT", "OSS_ENDPOINT", "OSS_REGION", "OSS_ACCESS_KEY", "OSS_SECRET_KEY",
	"OSS_BUCKET", "OSS_PATH_STYLE", "STORE_DRIVER", "SQLITE_PATH", "REDIS_ADDR", "REDIS_PASSWORD",
	"REDIS_DB", "PROGRESS_INTERVAL_MS", "PROGRESS_SETTLE_MS", "METRICS_ADDR",
	"LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "LOG_FILE",
}

// cleanEnv 清空配置相关的环境变量，并指向一个不存在的 .env
func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "", cfg.GenAIAPIKey)
	assert.Equal(t, "gemini-3-flash-preview", cfg.GenAITextModelName)
	assert.Equal(t, "gemini-3-pro-preview", cfg.GenAIStructuredModelName)
	assert.Equal(t, "gemini-3-pro-image-preview", cfg.GenAIImageModelName)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.GenAIEditModelName)
	assert.InDelta(t, 0.8, cfg.GenAITemperature, 1e-9)
	assert.Equal(t, ImageFormatBase64, cfg.GenAIImageFormat)
	assert.False(t, cfg.OSSUploadEnabled())
	assert.False(t, cfg.OSSUsePathStyle)
	assert.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	assert.Equal(t, 300*time.Millisecond, cfg.ProgressInterval())
	assert.Equal(t, 500*time.Millisecond, cfg.ProgressSettle())
	assert.Equal(t, time.Duration(0), cfg.GenAITimeout())
	assert.Equal(t, "stderr", cfg.LogOutput)
	assert.NotNil(t, GetLogger())
}

func TestLoadConfig_FromEnvFile(t *testing.T) {
	cleanEnv(t)
	// godotenv 不覆盖已存在的变量，这里先移除，测试结束后由 t.Setenv 恢复
	require.NoError(t, os.Unsetenv("GENAI_API_KEY"))
	require.NoError(t, os.Unsetenv("STORE_DRIVER"))

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GENAI_API_KEY=AIzaFromFile\nSTORE_DRIVER=Memory\n"), 0o600))
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("GENAI_TIMEOUT_SECONDS", "30")
	t.Setenv("OSS_PATH_STYLE", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, envFile, cfg.EnvFile)
	assert.Equal(t, "AIzaFromFile", cfg.GenAIAPIKey)
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, 30*time.Second, cfg.GenAITimeout())
	assert.True(t, cfg.OSSUsePathStyle)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown image format", map[string]string{"GENAI_IMAGE_FORMAT": "gif"}},
		{"url without bucket", map[string]string{"GENAI_IMAGE_FORMAT": "url"}},
		{"unknown store", map[string]string{"STORE_DRIVER": "mongo"}},
		{"temperature out of range", map[string]string{"GENAI_TEMPERATURE": "3.5"}},
		{"zero interval", map[string]string{"PROGRESS_INTERVAL_MS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestValidate_URLMode(t *testing.T) {
	cfg := &Config{
		GenAIImageFormat:   ImageFormatURL,
		OSSBucket:          "thumbs",
		StoreDriver:        StoreDriverRedis,
		GenAITemperature:   1,
		ProgressIntervalMs: 100,
	}
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.OSSUploadEnabled())
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("PP_INT", "42")
	t.Setenv("PP_BAD_INT", "x")
	t.Setenv("PP_BOOL", "1")
	t.Setenv("PP_BAD_BOOL", "maybe")
	t.Setenv("PP_FLOAT", "0.25")
	t.Setenv("PP_EMPTY", "")

	assert.Equal(t, 42, getEnvInt("PP_INT", 7))
	assert.Equal(t, 7, getEnvInt("PP_BAD_INT", 7))
	assert.True(t, getEnvBool("PP_BOOL", false))
	assert.True(t, getEnvBool("PP_BAD_BOOL", true))
	assert.InDelta(t, 0.25, getEnvFloat("PP_FLOAT", 1), 1e-9)
	assert.Equal(t, "fallback", getEnv("PP_EMPTY", "fallback"))
}
