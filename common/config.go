package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 图片输出格式
const (
	ImageFormatBase64 = "base64"
	ImageFormatURL    = "url"
)

// 持久化存储驱动
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverRedis  = "redis"
	StoreDriverMemory = "memory"
)

// Config 应用配置结构
type Config struct {
	// .env 文件路径，同时也是重新选择 API Key 时重新读取的文件
	EnvFile string

	// Gemini 配置
	GenAIBaseURL string
	GenAIAPIKey  string
	// 纯文本（快速）模型与结构化 JSON（高能力）模型
	GenAITextModelName       string
	GenAIStructuredModelName string
	// 图片生成与图片编辑模型
	GenAIImageModelName string
	GenAIEditModelName  string
	GenAITemperature    float64
	// GenAI 请求超时时间（秒），0 表示不额外设置超时
	GenAITimeoutSeconds int
	// 图片输出格式: base64 或 url
	GenAIImageFormat string

	// OSS 配置（GenAIImageFormat 为 url 时使用）
	OSSEndpoint  string
	OSSRegion    string
	OSSAccessKey string
	OSSSecretKey string
	OSSBucket    string

	// 自建服务（如 MinIO）使用 endpoint/bucket/key 形式
	OSSUsePathStyle bool

	// 持久化存储（历史记录、频道名称）
	StoreDriver   string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// 进度条节奏
	ProgressIntervalMs int
	ProgressSettleMs   int

	// Prometheus 指标监听地址，为空则不启动
	MetricsAddr string

	// 日志配置
	LogLevel  string // 日志级别: debug, info, warn, error
	LogFormat string // 日志格式: json, text
	LogOutput string // 输出位置: stdout, stderr, file（stdio 模式下 stdout 被 MCP 协议占用）
	LogFile   string // 日志文件路径（当 LogOutput 为 file 时）
}

// LoadConfig 从 .env 文件和环境变量加载配置
func LoadConfig() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil {
		// 这里不能写 stdout，stdout 属于 MCP 协议
		fmt.Fprintf(os.Stderr, "Warning: %s not found, using environment variables\n", envFile)
	}

	config := &Config{
		EnvFile:                  envFile,
		GenAIBaseURL:             getEnv("GENAI_BASE_URL", ""),
		GenAIAPIKey:              getEnv("GENAI_API_KEY", ""),
		GenAITextModelName:       getEnv("GENAI_TEXT_MODEL_NAME", "gemini-3-flash-preview"),
		GenAIStructuredModelName: getEnv("GENAI_STRUCTURED_MODEL_NAME", "gemini-3-pro-preview"),
		GenAIImageModelName:      getEnv("GENAI_IMAGE_MODEL_NAME", "gemini-3-pro-image-preview"),
		GenAIEditModelName:       getEnv("GENAI_EDIT_MODEL_NAME", "gemini-2.5-flash-image"),
		GenAITemperature:         getEnvFloat("GENAI_TEMPERATURE", 0.8),
		GenAITimeoutSeconds:      getEnvInt("GENAI_TIMEOUT_SECONDS", 0),
		GenAIImageFormat:         strings.ToLower(getEnv("GENAI_IMAGE_FORMAT", ImageFormatBase64)),
		// OSS 配置
		OSSEndpoint:  getEnv("OSS_ENDPOINT", ""),
		OSSRegion:    getEnv("OSS_REGION", "us-east-1"),
		OSSAccessKey: getEnv("OSS_ACCESS_KEY", ""),
		OSSSecretKey: getEnv("OSS_SECRET_KEY", ""),
		OSSBucket:    getEnv("OSS_BUCKET", ""),
		// MinIO 等自建服务
		OSSUsePathStyle: getEnvBool("OSS_PATH_STYLE", false),
		// 存储配置
		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreDriverSQLite)),
		SQLitePath:    getEnv("SQLITE_PATH", "proprompt.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		// 进度条
		ProgressIntervalMs: getEnvInt("PROGRESS_INTERVAL_MS", 300),
		ProgressSettleMs:   getEnvInt("PROGRESS_SETTLE_MS", 500),
		MetricsAddr:        getEnv("METRICS_ADDR", ""),
		// 日志配置
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		LogOutput: getEnv("LOG_OUTPUT", "stderr"),
		LogFile:   getEnv("LOG_FILE", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// 初始化日志系统
	logConfig := &LogConfig{
		Level:    config.LogLevel,
		Format:   config.LogFormat,
		Output:   config.LogOutput,
		FilePath: config.LogFile,
	}
	if err := InitLogger(logConfig); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return config, nil
}

// Validate 校验配置组合。API Key 允许为空：用户可以在运行期间重新选择。
func (c *Config) Validate() error {
	switch c.GenAIImageFormat {
	case ImageFormatBase64:
	case ImageFormatURL:
		if c.OSSBucket == "" {
			return fmt.Errorf("OSS_BUCKET is required when GENAI_IMAGE_FORMAT=%s", ImageFormatURL)
		}
	default:
		return fmt.Errorf("unsupported GENAI_IMAGE_FORMAT: %s", c.GenAIImageFormat)
	}

	switch c.StoreDriver {
	case StoreDriverSQLite, StoreDriverRedis, StoreDriverMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER: %s", c.StoreDriver)
	}

	if c.GenAITemperature < 0 || c.GenAITemperature > 2 {
		return fmt.Errorf("GENAI_TEMPERATURE must be within [0, 2], got %v", c.GenAITemperature)
	}
	if c.ProgressIntervalMs <= 0 {
		return fmt.Errorf("PROGRESS_INTERVAL_MS must be positive")
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 获取整型环境变量
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return defaultValue
}

// getEnvBool 获取布尔型环境变量
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return defaultValue
}

// getEnvFloat 获取浮点型环境变量
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return defaultValue
}

// GenAITimeout 返回单次 Gemini 调用的超时时间，0 表示不限制
func (c *Config) GenAITimeout() time.Duration {
	if c.GenAITimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.GenAITimeoutSeconds) * time.Second
}

// ProgressInterval 返回进度条的刷新间隔
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.ProgressIntervalMs) * time.Millisecond
}

// ProgressSettle 返回进度到 100% 后清除忙碌状态前的停留时间
func (c *Config) ProgressSettle() time.Duration {
	return time.Duration(c.ProgressSettleMs) * time.Millisecond
}

// OSSUploadEnabled 图片是否需要上传到 OSS
func (c *Config) OSSUploadEnabled() bool {
	return c.GenAIImageFormat == ImageFormatURL
}
