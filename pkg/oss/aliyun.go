// Package oss 对象存储服务，存放酒店与房间图片
package oss

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

// Uploader 上传器接口
type Uploader interface {
	Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) (string, error)
	Delete(ctx context.Context, objectKey string) error
	GetURL(objectKey string) string
}

// AliyunConfig 阿里云 OSS 配置
type AliyunConfig struct {
	Endpoint        string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	Domain          string // 自定义域名（可选）
	BasePath        string // 基础路径，如 "hotel-images"
}

// AliyunUploader 阿里云 OSS 上传器
type AliyunUploader struct {
	bucket *oss.Bucket
	config *AliyunConfig
}

// NewAliyunUploader 创建阿里云 OSS 上传器
func NewAliyunUploader(config *AliyunConfig) (*AliyunUploader, error) {
	client, err := oss.New(config.Endpoint, config.AccessKeyID, config.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create oss client: %w", err)
	}

	bucket, err := client.Bucket(config.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to open bucket %s: %w", config.BucketName, err)
	}

	return &AliyunUploader{
		bucket: bucket,
		config: config,
	}, nil
}

// Upload 上传对象并返回访问地址
func (u *AliyunUploader) Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) (string, error) {
	options := []oss.Option{oss.WithContext(ctx)}
	if contentType != "" {
		options = append(options, oss.ContentType(contentType))
	}

	if err := u.bucket.PutObject(u.fullKey(objectKey), reader, options...); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	return u.GetURL(objectKey), nil
}

// Delete 删除对象
func (u *AliyunUploader) Delete(ctx context.Context, objectKey string) error {
	return u.bucket.DeleteObject(u.fullKey(objectKey), oss.WithContext(ctx))
}

// GetURL 对象访问地址
func (u *AliyunUploader) GetURL(objectKey string) string {
	fullKey := u.fullKey(objectKey)

	if u.config.Domain != "" {
		return fmt.Sprintf("%s/%s", strings.TrimSuffix(u.config.Domain, "/"), fullKey)
	}

	return fmt.Sprintf("https://%s.%s/%s", u.config.BucketName, u.config.Endpoint, fullKey)
}

func (u *AliyunUploader) fullKey(objectKey string) string {
	if u.config.BasePath == "" {
		return objectKey
	}
	return path.Join(u.config.BasePath, objectKey)
}

// GenerateObjectKey 生成对象键：prefix/yyyy/mm/dd/uuid.ext
func GenerateObjectKey(prefix, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%s/%s%s",
		prefix,
		time.Now().Format("2006/01/02"),
		strings.ReplaceAll(uuid.NewString(), "-", ""),
		ext,
	)
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// GetContentType 根据扩展名获取图片 Content-Type
func GetContentType(filename string) string {
	if ct, ok := imageTypes[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ValidateImage 校验图片扩展名、大小与文件头，返回探测到的 Content-Type
func ValidateImage(filename string, size, maxSize int64, data []byte) (string, error) {
	ext := strings.ToLower(path.Ext(filename))
	if _, ok := imageTypes[ext]; !ok {
		return "", fmt.Errorf("unsupported image format: %s", ext)
	}
	if maxSize > 0 && size > maxSize {
		return "", fmt.Errorf("image exceeds %d bytes", maxSize)
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	contentType := http.DetectContentType(head)
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("file is not a valid image")
	}

	return contentType, nil
}

// MockUploader 模拟上传器（用于开发/测试）
type MockUploader struct {
	mu    sync.Mutex
	Files map[string][]byte
	Types map[string]string
}

// NewMockUploader 创建模拟上传器
func NewMockUploader() *MockUploader {
	return &MockUploader{
		Files: make(map[string][]byte),
		Types: make(map[string]string),
	}
}

// Upload 模拟上传
func (u *MockUploader) Upload(ctx context.Context, objectKey, contentType string, reader io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", err
	}
	u.mu.Lock()
	u.Files[objectKey] = buf.Bytes()
	u.Types[objectKey] = contentType
	u.mu.Unlock()
	return u.GetURL(objectKey), nil
}

// Delete 模拟删除
func (u *MockUploader) Delete(ctx context.Context, objectKey string) error {
	u.mu.Lock()
	delete(u.Files, objectKey)
	delete(u.Types, objectKey)
	u.mu.Unlock()
	return nil
}

// GetURL 获取模拟 URL
func (u *MockUploader) GetURL(objectKey string) string {
	return fmt.Sprintf("https://mock-oss.example.com/%s", objectKey)
}
