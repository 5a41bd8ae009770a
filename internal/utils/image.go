package utils

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrNotImage 内容不是图片
var ErrNotImage = errors.New("content is not an image")

// maxImageBytes 单张参考图片的大小上限
const maxImageBytes = 20 << 20

// ReadImageFile 读取本地图片文件，按内容嗅探 MIME 类型
func ReadImageFile(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image file: %w", err)
	}
	mimeType, err := sniffImage(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return data, mimeType, nil
}

// DownloadImageFromURL 从 URL 下载图片，返回图片数据和 MIME 类型
func DownloadImageFromURL(ctx context.Context, url string) ([]byte, string, error) {
	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: status code %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	// 不信任 Content-Type，按内容判断
	mimeType, err := sniffImage(data)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", url, err)
	}
	return data, mimeType, nil
}

// LoadImage 本地路径或 http(s) URL
func LoadImage(ctx context.Context, source string) ([]byte, string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return DownloadImageFromURL(ctx, source)
	}
	return ReadImageFile(source)
}

func sniffImage(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return mt.String(), nil
		}
	}
	return "", fmt.Errorf("%w: detected %s", ErrNotImage, mt.String())
}

// EncodeDataURI 编码为 data URI
func EncodeDataURI(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}

// DecodeDataURI 解析 data:<mime>;base64,<data>。MIME 缺失时按内容嗅探。
func DecodeDataURI(uri string) ([]byte, string, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasPrefix(header, "data:") || !strings.HasSuffix(header, ";base64") {
		return nil, "", fmt.Errorf("invalid data URI")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("invalid data URI payload: %w", err)
	}
	mimeType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	if mimeType == "" {
		mimeType = mimetype.Detect(data).String()
	}
	return data, mimeType, nil
}

// GenerateImageKey 生成对象存储的 Key：images/yyyy-MM-dd/{uuid}{ext}
func GenerateImageKey(now time.Time, mimeType string) string {
	return fmt.Sprintf("images/%s/%s%s", now.Format("2006-01-02"), uuid.NewString(), GetExtensionFromMimeType(mimeType))
}

// GetExtensionFromMimeType 根据 MIME 类型获取文件扩展名，未知类型使用 .png
func GetExtensionFromMimeType(mimeType string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if mt == "image/jpg" {
		mt = "image/jpeg"
	}
	if m := mimetype.Lookup(mt); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".png"
}

// TruncateForLog 截断长字符串用于日志，避免打印过长内容（如 base64）
func TruncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
