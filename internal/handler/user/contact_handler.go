package user

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	userService "github.com/dumeirei/hotel-booking-backend/internal/service/user"
)

// SubmitContact 联系我们
// @Summary 提交联系表单
// @Description 留言转发给值班人员
// @Tags 联系
// @Accept json
// @Produce json
// @Param request body userService.ContactRequest true "请求参数"
// @Success 200 {object} response.Response{data=userService.ContactResponse}
// @Failure 400 {object} response.Response
// @Router /api/v1/contact [post]
func (h *Handler) SubmitContact(c *gin.Context) {
	var req userService.ContactRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.contactService.Submit(c.Request.Context(), &req)
	handler.MustSucceed(c, err, result)
}

// RegisterPublicRoutes 注册公开路由
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.POST("/contact", h.SubmitContact)
}
