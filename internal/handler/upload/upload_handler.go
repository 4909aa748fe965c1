// Package upload 提供文件上传相关的 HTTP Handler
package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	uploadService "github.com/dumeirei/hotel-booking-backend/internal/service/upload"
)

// maxFormBody 表单请求体上限，略大于单张图片上限
const maxFormBody = uploadService.MaxImageSize + 1<<20

// Handler 上传处理器
type Handler struct {
	uploadService *uploadService.UploadService
}

// NewHandler 创建上传处理器
func NewHandler(uploadSvc *uploadService.UploadService) *Handler {
	return &Handler{
		uploadService: uploadSvc,
	}
}

// UploadImage 上传酒店或房间图片
// @Summary 上传图片（业主/管理员）
// @Description 支持 jpg/jpeg/png/gif/webp 格式，最大 10MB；返回地址可直接用作 thumbnail
// @Tags 文件上传
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param file formData file true "图片文件"
// @Param category formData string true "图片分类" Enums(hotel, room)
// @Success 200 {object} response.Response{data=uploadService.UploadImageResponse}
// @Failure 400 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/upload/image [post]
func (h *Handler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxFormBody)

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "请选择要上传的文件")
		return
	}

	result, err := h.uploadService.UploadImage(c.Request.Context(), file, c.PostForm("category"))
	handler.MustSucceed(c, err, result)
}

// RegisterRoutes 注册路由（业主、管理员）
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/upload/image", h.UploadImage)
}
