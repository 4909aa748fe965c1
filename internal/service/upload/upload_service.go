// Package upload 提供图片上传服务
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/pkg/oss"
)

// MaxImageSize 图片最大大小（10MB）
const MaxImageSize = 10 * 1024 * 1024

// 图片分类，决定对象键前缀
const (
	CategoryHotel = "hotel"
	CategoryRoom  = "room"
)

// UploadService 上传服务
type UploadService struct {
	uploader oss.Uploader
}

// NewUploadService 创建上传服务
func NewUploadService(uploader oss.Uploader) *UploadService {
	return &UploadService{uploader: uploader}
}

// UploadImageResponse 上传图片响应
type UploadImageResponse struct {
	URL         string `json:"url"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// UploadImage 校验并上传酒店或房间图片，返回可作为 thumbnail 的地址
func (s *UploadService) UploadImage(ctx context.Context, file *multipart.FileHeader, category string) (*UploadImageResponse, error) {
	if s.uploader == nil {
		return nil, errors.ErrExternalService.WithMessage("未配置对象存储")
	}
	if file == nil {
		return nil, errors.ErrInvalidParams.WithMessage("请选择要上传的文件")
	}
	if category != CategoryHotel && category != CategoryRoom {
		return nil, errors.ErrInvalidParams.WithMessage("图片分类只能是 hotel 或 room")
	}
	if file.Size > MaxImageSize {
		return nil, errors.ErrInvalidParams.WithMessage(fmt.Sprintf("图片大小不能超过 %dMB", MaxImageSize/(1024*1024)))
	}

	f, err := file.Open()
	if err != nil {
		return nil, errors.ErrInternalError.WithMessage("无法打开文件").WithError(err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, errors.ErrInternalError.WithMessage("读取文件失败").WithError(err)
	}

	contentType, err := oss.ValidateImage(file.Filename, int64(buf.Len()), MaxImageSize, buf.Bytes())
	if err != nil {
		return nil, errors.ErrInvalidParams.WithMessage("文件格式不正确：仅支持 jpg/jpeg/png/gif/webp 格式").WithError(err)
	}

	objectKey := oss.GenerateObjectKey(category, file.Filename)
	url, err := s.uploader.Upload(ctx, objectKey, contentType, bytes.NewReader(buf.Bytes()))
	if err != nil {
		logger.Error("image upload failed", zap.String("object_key", objectKey), zap.Error(err))
		return nil, errors.ErrExternalService.WithMessage("上传文件失败").WithError(err)
	}

	return &UploadImageResponse{
		URL:         url,
		FileName:    file.Filename,
		ContentType: contentType,
		Size:        int64(buf.Len()),
	}, nil
}
