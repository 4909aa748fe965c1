// Package user 提供用户、地址、工单与联系表单相关的 HTTP Handler
package user

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	userService "github.com/dumeirei/hotel-booking-backend/internal/service/user"
)

// Handler 用户处理器
type Handler struct {
	userService    *userService.UserService
	addressService *userService.AddressService
	ticketService  *userService.TicketService
	contactService *userService.ContactService
}

// NewHandler 创建用户处理器
func NewHandler(
	userSvc *userService.UserService,
	addressSvc *userService.AddressService,
	ticketSvc *userService.TicketService,
	contactSvc *userService.ContactService,
) *Handler {
	return &Handler{
		userService:    userSvc,
		addressService: addressSvc,
		ticketService:  ticketSvc,
		contactService: contactSvc,
	}
}

func operator(c *gin.Context) userService.Operator {
	return userService.Operator{UserID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}

// GetProfile 获取个人信息
// @Summary 获取个人信息
// @Tags 用户
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=userService.UserProfile}
// @Router /api/v1/user/profile [get]
func (h *Handler) GetProfile(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	handler.MustSucceed(c, err, profile)
}

// UpdateProfile 更新个人信息
// @Summary 更新个人信息
// @Tags 用户
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body userService.UpdateProfileRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.User}
// @Failure 409 {object} response.Response
// @Router /api/v1/user/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	var req userService.UpdateProfileRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	handler.MustSucceed(c, err, user)
}

// ListUsers 用户列表
// @Summary 用户列表（管理员）
// @Tags 用户管理
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param role query string false "角色" Enums(user, owner, admin)
// @Param keyword query string false "姓名或邮箱"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.User}}
// @Router /api/v1/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	var req userService.ListUsersRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.userService.ListUsers(c.Request.Context(), p.GetOffset(), p.GetLimit(), &req)
	handler.MustSucceedPage(c, err, list, total, p)
}

// GetUser 用户详情
// @Summary 用户详情（管理员）
// @Tags 用户管理
// @Produce json
// @Security Bearer
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response{data=userService.UserProfile}
// @Router /api/v1/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := handler.ParseID(c, "用户")
	if !ok {
		return
	}

	profile, err := h.userService.GetUser(c.Request.Context(), id)
	handler.MustSucceed(c, err, profile)
}

// UpdateUser 更新用户
// @Summary 更新用户（管理员）
// @Tags 用户管理
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "用户ID"
// @Param request body userService.AdminUpdateUserRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.User}
// @Router /api/v1/users/{id} [put]
func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := handler.ParseID(c, "用户")
	if !ok {
		return
	}

	var req userService.AdminUpdateUserRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, user)
}

// DeleteUser 删除用户
// @Summary 删除用户（管理员）
// @Tags 用户管理
// @Produce json
// @Security Bearer
// @Param id path int true "用户ID"
// @Success 200 {object} response.Response
// @Router /api/v1/users/{id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := handler.ParseID(c, "用户")
	if !ok {
		return
	}

	err := h.userService.DeleteUser(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}

// RegisterRoutes 注册用户路由
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/user/profile", h.GetProfile)
	r.PUT("/user/profile", h.UpdateProfile)

	addresses := r.Group("/addresses")
	{
		addresses.GET("", h.ListAddresses)
		addresses.POST("", h.CreateAddress)
		addresses.GET("/:id", h.GetAddress)
		addresses.PUT("/:id", h.UpdateAddress)
		addresses.DELETE("/:id", h.DeleteAddress)
	}

	tickets := r.Group("/tickets")
	{
		tickets.POST("", h.CreateTicket)
		tickets.GET("/:id", h.GetTicket)
		tickets.PUT("/:id", h.UpdateTicket)
		tickets.DELETE("/:id", h.DeleteTicket)
	}
	r.GET("/user/tickets", h.ListMyTickets)
}

// RegisterAdminRoutes 注册管理员路由
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	r.GET("/tickets", h.ListTickets)
	r.PUT("/tickets/:id/resolve", h.ResolveTicket)
}
