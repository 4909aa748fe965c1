// Package analytics 提供统计报表相关的 HTTP Handler
package analytics

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	analyticsService "github.com/dumeirei/hotel-booking-backend/internal/service/analytics"
)

// Handler 统计处理器
type Handler struct {
	analyticsService *analyticsService.AnalyticsService
}

// NewHandler 创建统计处理器
func NewHandler(analyticsSvc *analyticsService.AnalyticsService) *Handler {
	return &Handler{
		analyticsService: analyticsSvc,
	}
}

// GetSummary 统计概要
// @Summary 统计概要（管理员）
// @Description 总收入、用户数、预订数、待处理工单及近 12 个月消费与预订频次
// @Tags 统计
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=analyticsService.Summary}
// @Router /api/v1/analytics/summary [get]
func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.analyticsService.GetSummary(c.Request.Context())
	handler.MustSucceed(c, err, summary)
}

// GetDashboard 仪表盘
// @Summary 仪表盘（管理员）
// @Tags 统计
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=analyticsService.Dashboard}
// @Router /api/v1/analytics/dashboard [get]
func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.analyticsService.GetDashboard(c.Request.Context())
	handler.MustSucceed(c, err, dashboard)
}

// RegisterAdminRoutes 注册管理员路由
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	analytics := r.Group("/analytics")
	{
		analytics.GET("/summary", h.GetSummary)
		analytics.GET("/dashboard", h.GetDashboard)
	}
}
