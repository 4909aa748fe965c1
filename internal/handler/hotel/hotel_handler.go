// Package hotel 提供酒店、房间、设施相关的 HTTP Handler
package hotel

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	hotelService "github.com/dumeirei/hotel-booking-backend/internal/service/hotel"
)

// Handler 酒店处理器
type Handler struct {
	hotelService   *hotelService.HotelService
	roomService    *hotelService.RoomService
	amenityService *hotelService.AmenityService
}

// NewHandler 创建酒店处理器
func NewHandler(
	hotelSvc *hotelService.HotelService,
	roomSvc *hotelService.RoomService,
	amenitySvc *hotelService.AmenityService,
) *Handler {
	return &Handler{
		hotelService:   hotelSvc,
		roomService:    roomSvc,
		amenityService: amenitySvc,
	}
}

// ListHotels 获取酒店列表
// @Summary 获取酒店列表
// @Tags 酒店
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param name query string false "名称"
// @Param location query string false "位置"
// @Param category query string false "分类"
// @Param min_rating query number false "最低评分"
// @Success 200 {object} response.Response{data=response.PageData{list=[]models.Hotel}}
// @Router /api/v1/hotels [get]
func (h *Handler) ListHotels(c *gin.Context) {
	var req hotelService.HotelListRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.hotelService.ListHotels(c.Request.Context(), p.GetOffset(), p.GetLimit(), &req)
	handler.MustSucceedPage(c, err, list, total, p)
}

// GetHotel 获取酒店
// @Summary 获取酒店
// @Tags 酒店
// @Produce json
// @Param id path int true "酒店ID"
// @Success 200 {object} response.Response{data=models.Hotel}
// @Failure 404 {object} response.Response
// @Router /api/v1/hotels/{id} [get]
func (h *Handler) GetHotel(c *gin.Context) {
	id, ok := handler.ParseID(c, "酒店")
	if !ok {
		return
	}

	hotel, err := h.hotelService.GetHotel(c.Request.Context(), id)
	handler.MustSucceed(c, err, hotel)
}

// GetHotelDetails 获取酒店完整信息
// @Summary 获取酒店完整信息
// @Description 包含地址、设施、房间及房间设施
// @Tags 酒店
// @Produce json
// @Param id path int true "酒店ID"
// @Success 200 {object} response.Response{data=hotelService.HotelDetails}
// @Router /api/v1/hotels/{id}/details [get]
func (h *Handler) GetHotelDetails(c *gin.Context) {
	id, ok := handler.ParseID(c, "酒店")
	if !ok {
		return
	}

	details, err := h.hotelService.GetHotelDetails(c.Request.Context(), id)
	handler.MustSucceed(c, err, details)
}

// GetHotelRooms 获取酒店房间
// @Summary 获取酒店房间
// @Tags 酒店
// @Produce json
// @Param id path int true "酒店ID"
// @Success 200 {object} response.Response{data=[]hotelService.RoomDetails}
// @Router /api/v1/hotels/{id}/rooms [get]
func (h *Handler) GetHotelRooms(c *gin.Context) {
	id, ok := handler.ParseID(c, "酒店")
	if !ok {
		return
	}

	rooms, err := h.hotelService.GetHotelRooms(c.Request.Context(), id)
	handler.MustSucceed(c, err, rooms)
}

// CreateHotel 创建酒店
// @Summary 创建酒店（业主/管理员）
// @Tags 酒店
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body hotelService.HotelRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.Hotel}
// @Router /api/v1/hotels [post]
func (h *Handler) CreateHotel(c *gin.Context) {
	var req hotelService.HotelRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	hotel, err := h.hotelService.CreateHotel(c.Request.Context(), &req)
	handler.MustCreate(c, err, hotel)
}

// UpdateHotel 更新酒店
// @Summary 更新酒店（业主/管理员）
// @Tags 酒店
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "酒店ID"
// @Param request body hotelService.UpdateHotelRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Hotel}
// @Router /api/v1/hotels/{id} [put]
func (h *Handler) UpdateHotel(c *gin.Context) {
	id, ok := handler.ParseID(c, "酒店")
	if !ok {
		return
	}

	var req hotelService.UpdateHotelRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	hotel, err := h.hotelService.UpdateHotel(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, hotel)
}

// DeleteHotel 删除酒店
// @Summary 删除酒店（业主/管理员）
// @Description 仍有房间时返回 409
// @Tags 酒店
// @Produce json
// @Security Bearer
// @Param id path int true "酒店ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/hotels/{id} [delete]
func (h *Handler) DeleteHotel(c *gin.Context) {
	id, ok := handler.ParseID(c, "酒店")
	if !ok {
		return
	}

	err := h.hotelService.DeleteHotel(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}

// RegisterPublicRoutes 注册公开路由
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	hotels := r.Group("/hotels")
	{
		hotels.GET("", h.ListHotels)
		hotels.GET("/:id", h.GetHotel)
		hotels.GET("/:id/details", h.GetHotelDetails)
		hotels.GET("/:id/rooms", h.GetHotelRooms)
	}

	rooms := r.Group("/rooms")
	{
		rooms.GET("", h.ListRooms)
		rooms.GET("/:id", h.GetRoom)
		rooms.GET("/:id/details", h.GetRoomDetails)
	}

	amenities := r.Group("/amenities")
	{
		amenities.GET("", h.ListAmenities)
		amenities.GET("/:id", h.GetAmenity)
	}
}

// RegisterOwnerRoutes 注册业主路由（业主、管理员）
func (h *Handler) RegisterOwnerRoutes(r *gin.RouterGroup) {
	r.POST("/hotels", h.CreateHotel)
	r.PUT("/hotels/:id", h.UpdateHotel)
	r.DELETE("/hotels/:id", h.DeleteHotel)

	r.POST("/rooms", h.CreateRoom)
	r.PUT("/rooms/:id", h.UpdateRoom)
	r.DELETE("/rooms/:id", h.DeleteRoom)
}

// RegisterAdminRoutes 注册管理员路由
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	amenities := r.Group("/amenities")
	{
		amenities.POST("", h.CreateAmenity)
		amenities.PUT("/:id", h.UpdateAmenity)
		amenities.DELETE("/:id", h.DeleteAmenity)
		amenities.POST("/:id/entities", h.LinkEntity)
		amenities.DELETE("/:id/entities", h.UnlinkEntity)
	}
}
