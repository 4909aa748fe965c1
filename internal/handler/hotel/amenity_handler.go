package hotel

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	hotelService "github.com/dumeirei/hotel-booking-backend/internal/service/hotel"
)

// ListAmenities 获取设施列表
// @Summary 获取设施列表
// @Tags 设施
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param name query string false "名称"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.Amenity}}
// @Router /api/v1/amenities [get]
func (h *Handler) ListAmenities(c *gin.Context) {
	p := handler.BindPagination(c)

	list, total, err := h.amenityService.ListAmenities(c.Request.Context(), p.GetOffset(), p.GetLimit(), c.Query("name"))
	handler.MustSucceedPage(c, err, list, total, p)
}

// GetAmenity 获取设施
// @Summary 获取设施
// @Tags 设施
// @Produce json
// @Param id path int true "设施ID"
// @Success 200 {object} response.Response{data=models.Amenity}
// @Router /api/v1/amenities/{id} [get]
func (h *Handler) GetAmenity(c *gin.Context) {
	id, ok := handler.ParseID(c, "设施")
	if !ok {
		return
	}

	amenity, err := h.amenityService.GetAmenity(c.Request.Context(), id)
	handler.MustSucceed(c, err, amenity)
}

// CreateAmenity 创建设施
// @Summary 创建设施（管理员）
// @Tags 设施
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body hotelService.AmenityRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.Amenity}
// @Failure 409 {object} response.Response
// @Router /api/v1/amenities [post]
func (h *Handler) CreateAmenity(c *gin.Context) {
	var req hotelService.AmenityRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	amenity, err := h.amenityService.CreateAmenity(c.Request.Context(), &req)
	handler.MustCreate(c, err, amenity)
}

// UpdateAmenity 更新设施
// @Summary 更新设施（管理员）
// @Tags 设施
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "设施ID"
// @Param request body hotelService.UpdateAmenityRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Amenity}
// @Router /api/v1/amenities/{id} [put]
func (h *Handler) UpdateAmenity(c *gin.Context) {
	id, ok := handler.ParseID(c, "设施")
	if !ok {
		return
	}

	var req hotelService.UpdateAmenityRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	amenity, err := h.amenityService.UpdateAmenity(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, amenity)
}

// DeleteAmenity 删除设施
// @Summary 删除设施（管理员）
// @Tags 设施
// @Produce json
// @Security Bearer
// @Param id path int true "设施ID"
// @Success 200 {object} response.Response
// @Router /api/v1/amenities/{id} [delete]
func (h *Handler) DeleteAmenity(c *gin.Context) {
	id, ok := handler.ParseID(c, "设施")
	if !ok {
		return
	}

	err := h.amenityService.DeleteAmenity(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}

// LinkEntity 关联设施
// @Summary 为酒店或房间关联设施（管理员）
// @Tags 设施
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "设施ID"
// @Param request body hotelService.EntityRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.EntityAmenity}
// @Router /api/v1/amenities/{id}/entities [post]
func (h *Handler) LinkEntity(c *gin.Context) {
	id, ok := handler.ParseID(c, "设施")
	if !ok {
		return
	}

	var req hotelService.EntityRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	link, err := h.amenityService.LinkEntity(c.Request.Context(), id, &req)
	handler.MustCreate(c, err, link)
}

// UnlinkEntity 取消关联
// @Summary 取消酒店或房间的设施关联（管理员）
// @Tags 设施
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "设施ID"
// @Param request body hotelService.EntityRequest true "请求参数"
// @Success 200 {object} response.Response
// @Router /api/v1/amenities/{id}/entities [delete]
func (h *Handler) UnlinkEntity(c *gin.Context) {
	id, ok := handler.ParseID(c, "设施")
	if !ok {
		return
	}

	var req hotelService.EntityRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	err := h.amenityService.UnlinkEntity(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, nil)
}
