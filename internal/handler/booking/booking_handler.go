// Package booking 提供预订相关的 HTTP Handler
package booking

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	bookingService "github.com/dumeirei/hotel-booking-backend/internal/service/booking"
)

// Handler 预订处理器
type Handler struct {
	bookingService *bookingService.BookingService
	voucherService *bookingService.VoucherService
}

// NewHandler 创建预订处理器
func NewHandler(bookingSvc *bookingService.BookingService, voucherSvc *bookingService.VoucherService) *Handler {
	return &Handler{
		bookingService: bookingSvc,
		voucherService: voucherSvc,
	}
}

func actor(c *gin.Context) bookingService.Actor {
	return bookingService.Actor{UserID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}

// CreateBooking 创建预订
// @Summary 创建预订
// @Description 在事务内锁定房间并复查区间冲突，成功后预订为 Pending
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body bookingService.CreateBookingRequest true "请求参数"
// @Success 201 {object} response.Response{data=bookingService.BookingInfo}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/booking [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	var req bookingService.CreateBookingRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	info, err := h.bookingService.CreateBooking(c.Request.Context(), userID, &req)
	handler.MustCreate(c, err, info)
}

// GetBooking 获取预订详情
// @Summary 获取预订详情
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/booking/{id} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	info, err := h.bookingService.GetBooking(c.Request.Context(), id, actor(c))
	handler.MustSucceed(c, err, info)
}

// UpdateBooking 修改预订
// @Summary 修改预订
// @Description 修改房间或日期时重新检查冲突；状态只能由管理员修改
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body bookingService.UpdateBookingRequest true "请求参数"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Failure 409 {object} response.Response
// @Router /api/v1/booking/{id} [put]
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	var req bookingService.UpdateBookingRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	info, err := h.bookingService.UpdateBooking(c.Request.Context(), id, actor(c), &req)
	handler.MustSucceed(c, err, info)
}

// DeleteBooking 删除预订
// @Summary 删除预订（管理员）
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response
// @Router /api/v1/booking/{id} [delete]
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	err := h.bookingService.DeleteBooking(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}

// CancelBooking 取消预订
// @Summary 取消预订
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Failure 409 {object} response.Response
// @Router /api/v1/booking/{id}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	info, err := h.bookingService.CancelBooking(c.Request.Context(), id, actor(c))
	handler.MustSucceed(c, err, info)
}

// ConfirmBooking 手动确认预订
// @Summary 确认预订（管理员）
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Failure 409 {object} response.Response
// @Router /api/v1/booking/{id}/confirm [put]
func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	info, err := h.bookingService.ConfirmBooking(c.Request.Context(), id)
	handler.MustSucceed(c, err, info)
}

// ListBookings 预订列表
// @Summary 预订列表（管理员）
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param status query string false "状态" Enums(Pending, Confirmed, Cancelled)
// @Param user_id query int false "用户ID"
// @Param room_id query int false "房间ID"
// @Success 200 {object} response.Response{data=response.PageData{list=[]bookingService.BookingInfo}}
// @Router /api/v1/bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	var req bookingService.ListBookingsRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.bookingService.ListBookings(c.Request.Context(), p.GetOffset(), p.GetLimit(), &req)
	handler.MustSucceedPage(c, err, list, total, p)
}

// ListMyBookings 我的预订
// @Summary 我的预订
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param status query string false "状态" Enums(Pending, Confirmed, Cancelled)
// @Success 200 {object} response.Response{data=response.PageData{list=[]bookingService.BookingInfo}}
// @Router /api/v1/user/bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	var req bookingService.ListBookingsRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.bookingService.ListUserBookings(c.Request.Context(), userID, p.GetOffset(), p.GetLimit(), req.Status)
	handler.MustSucceedPage(c, err, list, total, p)
}

// CheckAvailability 检查房间可订
// @Summary 检查房间在日期区间内是否可订
// @Tags 房间
// @Produce json
// @Param id path int true "房间ID"
// @Param check_in_date query string true "入住日期" example(2025-03-10)
// @Param check_out_date query string true "退房日期" example(2025-03-12)
// @Success 200 {object} response.Response{data=bookingService.AvailabilityResult}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/rooms/{id}/availability [get]
func (h *Handler) CheckAvailability(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	result, err := h.bookingService.CheckAvailability(c.Request.Context(), id, c.Query("check_in_date"), c.Query("check_out_date"))
	handler.MustSucceed(c, err, result)
}

// SearchAvailableRooms 查询可订房间
// @Summary 查询日期区间内可订的房间
// @Tags 房间
// @Produce json
// @Param check_in_date query string true "入住日期"
// @Param check_out_date query string true "退房日期"
// @Param capacity query int false "最少入住人数"
// @Param hotel_id query int false "酒店ID"
// @Success 200 {object} response.Response{data=[]bookingService.RoomQuote}
// @Router /api/v1/rooms/available [get]
func (h *Handler) SearchAvailableRooms(c *gin.Context) {
	var req bookingService.SearchRequest
	if !handler.BindQuery(c, &req) {
		return
	}

	rooms, err := h.bookingService.SearchAvailableRooms(c.Request.Context(), &req)
	handler.MustSucceed(c, err, rooms)
}

// GetVoucher 入住凭证二维码
// @Summary 获取已确认预订的入住凭证
// @Tags 预订
// @Produce png
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {file} binary
// @Failure 409 {object} response.Response
// @Router /api/v1/booking/{id}/voucher [get]
func (h *Handler) GetVoucher(c *gin.Context) {
	id, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	png, err := h.voucherService.GeneratePNG(c.Request.Context(), id, actor(c))
	if handler.HandleError(c, err) {
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// VerifyVoucher 前台核验入住凭证
// @Summary 核验入住凭证（管理员/业主）
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body bookingService.VerifyRequest true "二维码内容"
// @Success 200 {object} response.Response{data=bookingService.BookingInfo}
// @Router /api/v1/vouchers/verify [post]
func (h *Handler) VerifyVoucher(c *gin.Context) {
	var req bookingService.VerifyRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	info, err := h.voucherService.Verify(c.Request.Context(), req.Content)
	handler.MustSucceed(c, err, info)
}

// RegisterPublicRoutes 注册公开路由
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	r.GET("/rooms/available", h.SearchAvailableRooms)
	r.GET("/rooms/:id/availability", h.CheckAvailability)
}

// RegisterRoutes 注册用户路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	booking := r.Group("/booking")
	{
		booking.POST("", h.CreateBooking)
		booking.GET("/:id", h.GetBooking)
		booking.PUT("/:id", h.UpdateBooking)
		booking.POST("/:id/cancel", h.CancelBooking)
		booking.GET("/:id/voucher", h.GetVoucher)
	}
	r.GET("/user/bookings", h.ListMyBookings)
}

// RegisterStaffRoutes 注册前台路由（业主、管理员）
func (h *Handler) RegisterStaffRoutes(r *gin.RouterGroup) {
	r.POST("/vouchers/verify", h.VerifyVoucher)
}

// RegisterAdminRoutes 注册管理员路由
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/bookings", h.ListBookings)
	r.PUT("/booking/:id/confirm", h.ConfirmBooking)
	r.DELETE("/booking/:id", h.DeleteBooking)
}
