package oss

import (
	"proprompt-mcp/common"
)

// NewPublisherFromConfig 从配置创建图片发布器。未启用 url 输出时返回 nil。
func NewPublisherFromConfig(cfg *common.Config) (*Publisher, error) {
	if !cfg.OSSUploadEnabled() {
		return nil, nil
	}

	client, err := NewS3Client(S3Config{
		Endpoint:     cfg.OSSEndpoint,
		Region:       cfg.OSSRegion,
		AccessKey:    cfg.OSSAccessKey,
		SecretKey:    cfg.OSSSecretKey,
		UsePathStyle: cfg.OSSUsePathStyle,
	})
	if err != nil {
		return nil, err
	}
	return NewPublisher(client, cfg.OSSBucket), nil
}
