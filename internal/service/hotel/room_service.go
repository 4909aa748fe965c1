package hotel

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

// RoomService 房间服务
type RoomService struct {
	roomRepo    *repository.RoomRepository
	hotelRepo   *repository.HotelRepository
	bookingRepo *repository.BookingRepository
	amenityRepo *repository.AmenityRepository
	cache       *cache.Store
}

// NewRoomService 创建房间服务
func NewRoomService(
	roomRepo *repository.RoomRepository,
	hotelRepo *repository.HotelRepository,
	bookingRepo *repository.BookingRepository,
	amenityRepo *repository.AmenityRepository,
	store *cache.Store,
) *RoomService {
	return &RoomService{
		roomRepo:    roomRepo,
		hotelRepo:   hotelRepo,
		bookingRepo: bookingRepo,
		amenityRepo: amenityRepo,
		cache:       store,
	}
}

// RoomRequest 创建房间请求
type RoomRequest struct {
	HotelID       int64   `json:"hotel_id" binding:"required,min=1"`
	RoomType      string  `json:"room_type" binding:"required,max=64"`
	PricePerNight float64 `json:"price_per_night" binding:"required,gt=0"`
	Capacity      int     `json:"capacity" binding:"required,min=1"`
	IsAvailable   *bool   `json:"is_available,omitempty"`
	Thumbnail     *string `json:"thumbnail,omitempty" binding:"omitempty,url"`
}

// UpdateRoomRequest 更新房间请求
type UpdateRoomRequest struct {
	RoomType      *string  `json:"room_type,omitempty" binding:"omitempty,min=1,max=64"`
	PricePerNight *float64 `json:"price_per_night,omitempty" binding:"omitempty,gt=0"`
	Capacity      *int     `json:"capacity,omitempty" binding:"omitempty,min=1"`
	IsAvailable   *bool    `json:"is_available,omitempty"`
	Thumbnail     *string  `json:"thumbnail,omitempty" binding:"omitempty,url"`
}

// RoomListRequest 房间列表筛选
type RoomListRequest struct {
	HotelID     int64   `form:"hotel_id" binding:"omitempty,min=1"`
	RoomType    string  `form:"room_type"`
	IsAvailable *bool   `form:"is_available"`
	MinCapacity int     `form:"min_capacity" binding:"omitempty,min=1"`
	MaxPrice    float64 `form:"max_price" binding:"omitempty,gt=0"`
}

// RoomDetails 房间及其设施
type RoomDetails struct {
	*models.Room
	Amenities []*models.Amenity `json:"amenities"`
}

// CreateRoom 创建房间，默认开放预订
func (s *RoomService) CreateRoom(ctx context.Context, req *RoomRequest) (*models.Room, error) {
	exists, err := s.hotelRepo.Exists(ctx, req.HotelID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !exists {
		return nil, errors.ErrHotelNotFound
	}

	room := &models.Room{
		HotelID:       req.HotelID,
		RoomType:      req.RoomType,
		PricePerNight: req.PricePerNight,
		Capacity:      req.Capacity,
		IsAvailable:   true,
		Thumbnail:     req.Thumbnail,
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}
	if err := s.roomRepo.Create(ctx, room); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	invalidateDetails(ctx, s.cache, room.HotelID)
	logger.Info("room created", logger.HotelID(room.HotelID), logger.RoomID(room.ID))
	return room, nil
}

// GetRoom 获取房间
func (s *RoomService) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return room, nil
}

// GetRoomDetails 房间详情（含酒店与设施）
func (s *RoomService) GetRoomDetails(ctx context.Context, id int64) (*RoomDetails, error) {
	room, err := s.roomRepo.GetByIDWithHotel(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrRoomNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	amenities, err := s.amenityRepo.ListByEntity(ctx, models.AmenityEntityRoom, id)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return &RoomDetails{Room: room, Amenities: amenities}, nil
}

// UpdateRoom 更新房间
func (s *RoomService) UpdateRoom(ctx context.Context, id int64, req *UpdateRoomRequest) (*models.Room, error) {
	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RoomType != nil {
		room.RoomType = *req.RoomType
	}
	if req.PricePerNight != nil {
		room.PricePerNight = *req.PricePerNight
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}
	if req.Thumbnail != nil {
		room.Thumbnail = req.Thumbnail
	}

	if err := s.roomRepo.Update(ctx, room); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	invalidateDetails(ctx, s.cache, room.HotelID)
	return room, nil
}

// DeleteRoom 删除房间，存在预订记录时拒绝
func (s *RoomService) DeleteRoom(ctx context.Context, id int64) error {
	room, err := s.GetRoom(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.bookingRepo.CountByRoom(ctx, id)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if count > 0 {
		return errors.ErrRoomInUse
	}

	if err := s.roomRepo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrRoomNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	invalidateDetails(ctx, s.cache, room.HotelID)
	logger.Info("room deleted", logger.RoomID(id))
	return nil
}

// ListRooms 房间列表（含设施）
func (s *RoomService) ListRooms(ctx context.Context, offset, limit int, req *RoomListRequest) ([]*RoomDetails, int64, error) {
	filters := map[string]interface{}{
		"hotel_id":     req.HotelID,
		"room_type":    req.RoomType,
		"min_capacity": req.MinCapacity,
		"max_price":    req.MaxPrice,
	}
	if req.IsAvailable != nil {
		filters["is_available"] = *req.IsAvailable
	}

	rooms, total, err := s.roomRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	list, err := withAmenities(ctx, s.amenityRepo, rooms)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// withAmenities 批量加载房间设施
func withAmenities(ctx context.Context, amenityRepo *repository.AmenityRepository, rooms []*models.Room) ([]*RoomDetails, error) {
	ids := make([]int64, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	byRoom, err := amenityRepo.ListByEntities(ctx, models.AmenityEntityRoom, ids)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	list := make([]*RoomDetails, 0, len(rooms))
	for _, r := range rooms {
		amenities := byRoom[r.ID]
		if amenities == nil {
			amenities = []*models.Amenity{}
		}
		list = append(list, &RoomDetails{Room: r, Amenities: amenities})
	}
	return list, nil
}
