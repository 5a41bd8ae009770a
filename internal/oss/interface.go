package oss

import (
	"context"
	"io"
)

// Uploader 对象存储上传接口
type Uploader interface {
	// UploadFileWithURL 上传文件并返回对象的访问 URL
	UploadFileWithURL(ctx context.Context, bucket, key string, reader io.Reader, contentType string) (string, error)
}
