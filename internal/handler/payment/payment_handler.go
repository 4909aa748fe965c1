// Package payment 提供支付相关的 HTTP Handler
package payment

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	"github.com/dumeirei/hotel-booking-backend/internal/common/response"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	paymentService "github.com/dumeirei/hotel-booking-backend/internal/service/payment"
)

const (
	// maxWebhookBody 回调请求体上限
	maxWebhookBody = 64 << 10
	// signatureHeader 回调签名头
	signatureHeader = "Stripe-Signature"
)

// Handler 支付处理器
type Handler struct {
	paymentService *paymentService.PaymentService
}

// NewHandler 创建支付处理器
func NewHandler(paymentSvc *paymentService.PaymentService) *Handler {
	return &Handler{
		paymentService: paymentSvc,
	}
}

// CreateCheckoutSession 创建收银台会话
// @Summary 为待支付预订创建收银台会话
// @Description 金额缺省为预订总额；返回跳转地址
// @Tags 支付
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body paymentService.CheckoutRequest true "请求参数"
// @Success 200 {object} response.Response{data=paymentService.CheckoutResponse}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /api/v1/create-checkout-session [post]
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	var req paymentService.CheckoutRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	result, err := h.paymentService.CreateCheckoutSession(c.Request.Context(), userID, middleware.IsAdmin(c), &req)
	handler.MustSucceed(c, err, result)
}

// Webhook 支付渠道回调
// @Summary 支付渠道回调
// @Description 使用原始请求体与 Stripe-Signature 头验签；处理失败返回非 2xx 以触发重投
// @Tags 支付
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "签名"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/webhook [post]
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		response.BadRequest(c, "读取请求体失败")
		return
	}

	err = h.paymentService.HandleWebhook(c.Request.Context(), body, c.GetHeader(signatureHeader))
	handler.MustSucceed(c, err, gin.H{"received": true})
}

// ListPayments 支付列表
// @Summary 支付列表（管理员）
// @Tags 支付
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param booking_id query int false "预订ID"
// @Param status query string false "状态" Enums(Pending, Completed, Failed)
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.Payment}}
// @Router /api/v1/payments [get]
func (h *Handler) ListPayments(c *gin.Context) {
	var req paymentService.ListPaymentsRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.paymentService.ListPayments(c.Request.Context(), p.GetOffset(), p.GetLimit(), &req)
	handler.MustSucceedPage(c, err, list, total, p)
}

// ListUserPayments 我的支付记录
// @Summary 我的支付记录
// @Tags 支付
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param booking_id query int false "预订ID"
// @Param status query string false "状态" Enums(Pending, Completed, Failed)
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.Payment}}
// @Router /api/v1/user/payments [get]
func (h *Handler) ListUserPayments(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	var req paymentService.ListPaymentsRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.paymentService.ListUserPayments(c.Request.Context(), userID, p.GetOffset(), p.GetLimit(), &req)
	handler.MustSucceedPage(c, err, list, total, p)
}

// GetPayment 支付详情
// @Summary 支付详情（管理员）
// @Tags 支付
// @Produce json
// @Security Bearer
// @Param id path int true "支付ID"
// @Success 200 {object} response.Response{data=models.Payment}
// @Router /api/v1/payments/{id} [get]
func (h *Handler) GetPayment(c *gin.Context) {
	id, ok := handler.ParseID(c, "支付")
	if !ok {
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), id)
	handler.MustSucceed(c, err, payment)
}

// RegisterCallbackRoutes 注册回调路由（验签，无需登录）
func (h *Handler) RegisterCallbackRoutes(r *gin.RouterGroup) {
	r.POST("/webhook", h.Webhook)
}

// RegisterRoutes 注册用户路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/create-checkout-session", h.CreateCheckoutSession)
	r.GET("/user/payments", h.ListUserPayments)
}

// RegisterAdminRoutes 注册管理员路由
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/payments", h.ListPayments)
	r.GET("/payments/:id", h.GetPayment)
}
