package oss

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"proprompt-mcp/common"
	"proprompt-mcp/internal/utils"
)

// Publisher 把生成的 data URI 图片上传到对象存储，换成可访问的 URL
type Publisher struct {
	uploader Uploader
	bucket   string
	now      func() time.Time
}

// NewPublisher 创建发布器
func NewPublisher(uploader Uploader, bucket string) *Publisher {
	return &Publisher{uploader: uploader, bucket: bucket, now: time.Now}
}

// Publish 上传 data URI 图片，返回 URL
func (p *Publisher) Publish(ctx context.Context, dataURI string) (string, error) {
	data, mimeType, err := utils.DecodeDataURI(dataURI)
	if err != nil {
		return "", fmt.Errorf("failed to decode generated image: %w", err)
	}

	key := utils.GenerateImageKey(p.now(), mimeType)
	url, err := p.uploader.UploadFileWithURL(ctx, p.bucket, key, bytes.NewReader(data), mimeType)
	if err != nil {
		return "", fmt.Errorf("failed to publish image: %w", err)
	}

	common.WithFields(map[string]interface{}{
		"key": key,
		"url": url,
	}).Debug("Generated image published")
	return url, nil
}
