package hotel

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-booking-backend/internal/common/handler"
	hotelService "github.com/dumeirei/hotel-booking-backend/internal/service/hotel"
)

// ListRooms 获取房间列表
// @Summary 获取房间列表
// @Tags 房间
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param hotel_id query int false "酒店ID"
// @Param room_type query string false "房型"
// @Param is_available query bool false "是否开放预订"
// @Param min_capacity query int false "最少入住人数"
// @Param max_price query number false "最高价格"
// @Success 200 {object} response.Response{data=response.PageData{list=[]hotelService.RoomDetails}}
// @Router /api/v1/rooms [get]
func (h *Handler) ListRooms(c *gin.Context) {
	var req hotelService.RoomListRequest
	if !handler.BindQuery(c, &req) {
		return
	}
	p := handler.BindPagination(c)

	list, total, err := h.roomService.ListRooms(c.Request.Context(), p.GetOffset(), p.GetLimit(), &req)
	handler.MustSucceedPage(c, err, list, total, p)
}

// GetRoom 获取房间
// @Summary 获取房间
// @Tags 房间
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response{data=models.Room}
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms/{id} [get]
func (h *Handler) GetRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	room, err := h.roomService.GetRoom(c.Request.Context(), id)
	handler.MustSucceed(c, err, room)
}

// GetRoomDetails 获取房间及设施
// @Summary 获取房间及设施
// @Tags 房间
// @Produce json
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response{data=hotelService.RoomDetails}
// @Router /api/v1/rooms/{id}/details [get]
func (h *Handler) GetRoomDetails(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	details, err := h.roomService.GetRoomDetails(c.Request.Context(), id)
	handler.MustSucceed(c, err, details)
}

// CreateRoom 创建房间
// @Summary 创建房间（业主/管理员）
// @Tags 房间
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body hotelService.RoomRequest true "请求参数"
// @Success 201 {object} response.Response{data=models.Room}
// @Failure 404 {object} response.Response
// @Router /api/v1/rooms [post]
func (h *Handler) CreateRoom(c *gin.Context) {
	var req hotelService.RoomRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), &req)
	handler.MustCreate(c, err, room)
}

// UpdateRoom 更新房间
// @Summary 更新房间（业主/管理员）
// @Tags 房间
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param request body hotelService.UpdateRoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id} [put]
func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	var req hotelService.UpdateRoomRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	room, err := h.roomService.UpdateRoom(c.Request.Context(), id, &req)
	handler.MustSucceed(c, err, room)
}

// DeleteRoom 删除房间
// @Summary 删除房间（业主/管理员）
// @Description 存在未取消的预订时返回 409
// @Tags 房间
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/rooms/{id} [delete]
func (h *Handler) DeleteRoom(c *gin.Context) {
	id, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	err := h.roomService.DeleteRoom(c.Request.Context(), id)
	handler.MustSucceed(c, err, nil)
}
