package user

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	"github.com/dumeirei/hotel-booking-backend/internal/middleware"
	userService "github.com/dumeirei/hotel-booking-backend/internal/service/user"
)

// CreateTicket 提交工单
// @Summary 提交客服工单
// @Tags 工单
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body userService.CreateTicketRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.SupportTicket}
// @Router /api/v1/tickets [post]
func (h *Handler) CreateTicket(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	var req userService.CreateTicketRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	ticket, err := h.ticketService.Create(c.Request.Context(), userID, &req)
	handler.MustCreate(c, err, ticket)
}

// GetTicket 工单详情
// @Summary 工单详情
// @Tags 工单
// @Produce json
// @Security Bearer
// @Param id path int true "工单ID"
// @Success 200 {object} response.Response{data=models.SupportTicket}
// @Router /api/v1/tickets/{id} [get]
func (h *Handler) GetTicket(c *gin.Context) {
	id, ok := handler.ParseID(c, "工单")
	if !ok {
		return
	}

	ticket, err := h.ticketService.GetByID(c.Request.Context(), id, middleware.GetUserID(c), middleware.IsAdmin(c))
	handler.MustSucceed(c, err, ticket)
}

// UpdateTicket 更新工单
// @Summary 更新工单
// @Description 状态只能由管理员修改
// @Tags 工单
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "工单ID"
// @Param request body userService.UpdateTicketRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.SupportTicket}
// @Router /api/v1/tickets/{id} [put]
func (h *Handler) UpdateTicket(c *gin.Context) {
	id, ok := handler.ParseID(c, "工单")
	if !ok {
		return
	}

	var req userService.UpdateTicketRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	ticket, err := h.ticketService.Update(c.Request.Context(), id, middleware.GetUserID(c), middleware.IsAdmin(c), &req)
	handler.MustSucceed(c, err, ticket)
}

// DeleteTicket 删除工单
// @Summary 删除工单
// @Tags 工单
// @Produce json
// @Security Bearer
// @Param id path int true "工单ID"
// @Success 200 {object} response.Response
// @Router /api/v1/tickets/{id} [delete]
func (h *Handler) DeleteTicket(c *gin.Context) {
	id, ok := handler.ParseID(c, "工单")
	if !ok {
		return
	}

	err := h.ticketService.Delete(c.Request.Context(), id, middleware.GetUserID(c), middleware.IsAdmin(c))
	handler.MustSucceed(c, err, nil)
}

// ResolveTicket 标记工单已解决
// @Summary 标记工单已解决（管理员）
// @Tags 工单
// @Produce json
// @Security Bearer
// @Param id path int true "工单ID"
// @Success 200 {object} response.Response
// @Router /api/v1/tickets/{id}/resolve [put]
func (h *Handler) ResolveTicket(c *gin.Context) {
	id, ok := handler.ParseID(c, "工单")
	if !ok {
		return
	}

	err := h.ticketService.Resolve(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}

// ListTickets 工单列表
// @Summary 工单列表（管理员）
// @Tags 工单
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param status query string false "状态" Enums(Open, Resolved)
// @Param user_id query int false "用户ID"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.SupportTicket}}
// @Router /api/v1/tickets [get]
func (h *Handler) ListTickets(c *gin.Context) {
	var req userService.ListTicketsRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.ticketService.List(c.Request.Context(), p.GetOffset(), p.GetLimit(), &req)
	handler.MustSucceedPage(c, err, list, total, p)
}

// ListMyTickets 我的工单
// @Summary 我的工单
// @Tags 工单
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param status query string false "状态" Enums(Open, Resolved)
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.SupportTicket}}
// @Router /api/v1/user/tickets [get]
func (h *Handler) ListMyTickets(c *gin.Context) {
	userID, ok := handler.RequireUserID(c)
	if !ok {
		return
	}

	var req userService.ListTicketsRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.ticketService.ListByUser(c.Request.Context(), userID, p.GetOffset(), p.GetLimit(), req.Status)
	handler.MustSucceedPage(c, err, list, total, p)
}
