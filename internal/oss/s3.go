package oss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"proprompt-mcp/common"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const uploadTimeout = 60 * time.Second

// S3Client S3 兼容的对象存储客户端
type S3Client struct {
	client       *s3.Client
	endpoint     string // 带协议的端点，空表示 AWS 默认
	region       string
	usePathStyle bool
	httpClient   *http.Client
}

// S3Config S3 客户端配置
type S3Config struct {
	Endpoint  string // 例如 s3.amazonaws.com、oss-cn-hangzhou.aliyuncs.com，或带协议的 http://127.0.0.1:9000
	Region    string
	AccessKey string
	SecretKey string
	// UsePathStyle 使用 endpoint/bucket/key 形式（MinIO 等自建服务）
	UsePathStyle bool
}

// NewS3Client 创建新的 S3 客户端
func NewS3Client(cfg S3Config) (*S3Client, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := normalizeEndpoint(cfg.Endpoint)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Client{
		client:       client,
		endpoint:     endpoint,
		region:       cfg.Region,
		usePathStyle: cfg.UsePathStyle,
		httpClient:   &http.Client{Timeout: uploadTimeout},
	}, nil
}

// normalizeEndpoint 没有协议时默认 https
func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	return "https://" + endpoint
}

// UploadFile 上传文件
func (c *S3Client) UploadFile(ctx context.Context, bucket, key string, reader io.Reader, contentType string) (string, error) {
	fields := map[string]interface{}{
		"bucket":       bucket,
		"key":          key,
		"content_type": contentType,
	}
	common.WithFields(fields).Debug("Starting file upload to OSS")

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	// 阿里云 OSS 不支持 SDK PutObject 的 aws-chunked 编码，改用预签名 PUT
	if strings.Contains(c.endpoint, ".aliyuncs.com") {
		err = c.presignedPut(ctx, bucket, key, body, contentType)
	} else {
		_, err = c.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(contentType),
		})
	}
	if err != nil {
		common.WithError(err).WithFields(fields).Error("Failed to upload file to OSS")
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	common.WithFields(fields).WithField("size", len(body)).Info("File uploaded to OSS successfully")
	return fmt.Sprintf("%s/%s", bucket, key), nil
}

func (c *S3Client) presignedPut(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	presigned, err := s3.NewPresignClient(c.client).PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to presign PUT URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presigned.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	for k, vs := range presigned.SignedHeader {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("presigned PUT returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// UploadFileWithURL 上传文件并返回对象的公开 URL（不带签名）
func (c *S3Client) UploadFileWithURL(ctx context.Context, bucket, key string, reader io.Reader, contentType string) (string, error) {
	if _, err := c.UploadFile(ctx, bucket, key, reader, contentType); err != nil {
		return "", err
	}
	return c.ObjectURL(bucket, key), nil
}

// ObjectURL 构造对象的公开 URL
func (c *S3Client) ObjectURL(bucket, key string) string {
	if c.endpoint != "" {
		if c.usePathStyle {
			return fmt.Sprintf("%s/%s/%s", c.endpoint, bucket, key)
		}
		scheme, host, _ := strings.Cut(c.endpoint, "://")
		return fmt.Sprintf("%s://%s.%s/%s", scheme, bucket, host, key)
	}
	if c.region != "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, c.region, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}

var _ Uploader = (*S3Client)(nil)
