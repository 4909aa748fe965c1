package user

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	userService "github.com/dumeirei/hotel-booking-backend/internal/service/user"
)

// CreateAddress 创建地址
// @Summary 创建地址
// @Description 用户只能为自己创建地址；酒店地址需要业主或管理员
// @Tags 地址
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body userService.CreateAddressRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.Address}
// @Router /api/v1/addresses [post]
func (h *Handler) CreateAddress(c *gin.Context) {
	var req userService.CreateAddressRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	address, err := h.addressService.Create(c.Request.Context(), operator(c), &req)
	handler.MustCreate(c, err, address)
}

// GetAddress 地址详情
// @Summary 地址详情
// @Tags 地址
// @Produce json
// @Security Bearer
// @Param id path int true "地址ID"
// @Success 200 {object} response.Response{data=models.Address}
// @Router /api/v1/addresses/{id} [get]
func (h *Handler) GetAddress(c *gin.Context) {
	id, ok := handler.ParseID(c, "地址")
	if !ok {
		return
	}

	address, err := h.addressService.GetByID(c.Request.Context(), operator(c), id)
	handler.MustSucceed(c, err, address)
}

// UpdateAddress 更新地址
// @Summary 更新地址
// @Tags 地址
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "地址ID"
// @Param request body userService.UpdateAddressRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Address}
// @Router /api/v1/addresses/{id} [put]
func (h *Handler) UpdateAddress(c *gin.Context) {
	id, ok := handler.ParseID(c, "地址")
	if !ok {
		return
	}

	var req userService.UpdateAddressRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	address, err := h.addressService.Update(c.Request.Context(), operator(c), id, &req)
	handler.MustSucceed(c, err, address)
}

// DeleteAddress 删除地址
// @Summary 删除地址
// @Tags 地址
// @Produce json
// @Security Bearer
// @Param id path int true "地址ID"
// @Success 200 {object} response.Response
// @Router /api/v1/addresses/{id} [delete]
func (h *Handler) DeleteAddress(c *gin.Context) {
	id, ok := handler.ParseID(c, "地址")
	if !ok {
		return
	}

	err := h.addressService.Delete(c.Request.Context(), operator(c), id)
	handler.MustSucceed(c, err, nil)
}

// ListAddresses 地址列表
// @Summary 地址列表
// @Description 非管理员只返回自己的地址
// @Tags 地址
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param entity_type query string false "归属类型" Enums(user, hotel)
// @Param entity_id query int false "归属ID"
// @Param city query string false "城市"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.Address}}
// @Router /api/v1/addresses [get]
func (h *Handler) ListAddresses(c *gin.Context) {
	var req userService.ListAddressesRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.addressService.List(c.Request.Context(), operator(c), p.GetOffset(), p.GetLimit(), &req)
	handler.MustSucceedPage(c, err, list, total, p)
}
