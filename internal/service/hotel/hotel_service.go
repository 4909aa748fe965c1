// Package hotel 提供酒店、房间与设施服务
package hotel

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

// detailsTTL 酒店详情缓存时间
const detailsTTL = 5 * time.Minute

// HotelService 酒店服务
type HotelService struct {
	hotelRepo   *repository.HotelRepository
	roomRepo    *repository.RoomRepository
	addressRepo *repository.AddressRepository
	amenityRepo *repository.AmenityRepository
	cache       *cache.Store
}

// NewHotelService 创建酒店服务
func NewHotelService(
	hotelRepo *repository.HotelRepository,
	roomRepo *repository.RoomRepository,
	addressRepo *repository.AddressRepository,
	amenityRepo *repository.AmenityRepository,
	store *cache.Store,
) *HotelService {
	return &HotelService{
		hotelRepo:   hotelRepo,
		roomRepo:    roomRepo,
		addressRepo: addressRepo,
		amenityRepo: amenityRepo,
		cache:       store,
	}
}

// HotelRequest 创建酒店请求
type HotelRequest struct {
	Name         string   `json:"name" binding:"required,max=255"`
	Location     string   `json:"location" binding:"required,max=255"`
	ContactPhone *string  `json:"contact_phone,omitempty" binding:"omitempty,phone"`
	Category     *string  `json:"category,omitempty" binding:"omitempty,max=64"`
	Rating       *float64 `json:"rating,omitempty" binding:"omitempty,min=0,max=5"`
	Thumbnail    *string  `json:"thumbnail,omitempty" binding:"omitempty,url"`
}

// UpdateHotelRequest 更新酒店请求
type UpdateHotelRequest struct {
	Name         *string  `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Location     *string  `json:"location,omitempty" binding:"omitempty,min=1,max=255"`
	ContactPhone *string  `json:"contact_phone,omitempty" binding:"omitempty,phone"`
	Category     *string  `json:"category,omitempty" binding:"omitempty,max=64"`
	Rating       *float64 `json:"rating,omitempty" binding:"omitempty,min=0,max=5"`
	Thumbnail    *string  `json:"thumbnail,omitempty" binding:"omitempty,url"`
}

// HotelListRequest 酒店列表筛选
type HotelListRequest struct {
	Name      string  `form:"name"`
	Location  string  `form:"location"`
	Category  string  `form:"category"`
	MinRating float64 `form:"min_rating" binding:"omitempty,min=0,max=5"`
}

// HotelDetails 酒店完整信息：地址、设施与房间
type HotelDetails struct {
	*models.Hotel
	Addresses []*models.Address `json:"addresses"`
	Amenities []*models.Amenity `json:"amenities"`
	RoomList  []*RoomDetails    `json:"room_list"`
}

// CreateHotel 创建酒店
func (s *HotelService) CreateHotel(ctx context.Context, req *HotelRequest) (*models.Hotel, error) {
	hotel := &models.Hotel{
		Name:         req.Name,
		Location:     req.Location,
		ContactPhone: req.ContactPhone,
		Category:     req.Category,
		Rating:       roundRating(req.Rating),
		Thumbnail:    req.Thumbnail,
	}
	if err := s.hotelRepo.Create(ctx, hotel); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	logger.Info("hotel created", logger.HotelID(hotel.ID))
	return hotel, nil
}

// GetHotel 获取酒店
func (s *HotelService) GetHotel(ctx context.Context, id int64) (*models.Hotel, error) {
	hotel, err := s.hotelRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrHotelNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return hotel, nil
}

// UpdateHotel 更新酒店
func (s *HotelService) UpdateHotel(ctx context.Context, id int64, req *UpdateHotelRequest) (*models.Hotel, error) {
	hotel, err := s.GetHotel(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		hotel.Name = *req.Name
	}
	if req.Location != nil {
		hotel.Location = *req.Location
	}
	if req.ContactPhone != nil {
		hotel.ContactPhone = req.ContactPhone
	}
	if req.Category != nil {
		hotel.Category = req.Category
	}
	if req.Rating != nil {
		hotel.Rating = roundRating(req.Rating)
	}
	if req.Thumbnail != nil {
		hotel.Thumbnail = req.Thumbnail
	}

	if err := s.hotelRepo.Update(ctx, hotel); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx, id)
	return hotel, nil
}

// DeleteHotel 删除酒店，仍有房间时拒绝
func (s *HotelService) DeleteHotel(ctx context.Context, id int64) error {
	if _, err := s.GetHotel(ctx, id); err != nil {
		return err
	}
	rooms, err := s.roomRepo.CountByHotel(ctx, id)
	if err != nil {
		return errors.ErrDatabaseError.WithError(err)
	}
	if rooms > 0 {
		return errors.ErrHotelInUse
	}

	if err := s.hotelRepo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrHotelNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	s.invalidate(ctx, id)
	logger.Info("hotel deleted", logger.HotelID(id))
	return nil
}

// ListHotels 酒店列表
func (s *HotelService) ListHotels(ctx context.Context, offset, limit int, req *HotelListRequest) ([]*models.Hotel, int64, error) {
	filters := map[string]interface{}{
		"name":       req.Name,
		"location":   req.Location,
		"category":   req.Category,
		"min_rating": req.MinRating,
	}
	hotels, total, err := s.hotelRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return hotels, total, nil
}

// GetHotelDetails 酒店完整信息，优先读缓存
func (s *HotelService) GetHotelDetails(ctx context.Context, id int64) (*HotelDetails, error) {
	key := detailsKey(id)
	var cached HotelDetails
	if hit, err := s.cache.GetJSON(ctx, key, &cached); err != nil {
		logger.Warn("hotel details cache read failed", logger.HotelID(id), zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	hotel, err := s.hotelRepo.GetByIDWithRooms(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrHotelNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	addresses, err := s.addressRepo.ListByEntity(ctx, models.AddressEntityHotel, id)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	amenities, err := s.amenityRepo.ListByEntity(ctx, models.AmenityEntityHotel, id)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	rooms := make([]*models.Room, 0, len(hotel.Rooms))
	for i := range hotel.Rooms {
		rooms = append(rooms, &hotel.Rooms[i])
	}
	roomList, err := withAmenities(ctx, s.amenityRepo, rooms)
	if err != nil {
		return nil, err
	}
	hotel.Rooms = nil

	details := &HotelDetails{
		Hotel:     hotel,
		Addresses: addresses,
		Amenities: amenities,
		RoomList:  roomList,
	}
	if err := s.cache.SetJSON(ctx, key, details, detailsTTL); err != nil {
		logger.Warn("hotel details cache write failed", logger.HotelID(id), zap.Error(err))
	}
	return details, nil
}

// GetHotelRooms 酒店下的房间（含设施）
func (s *HotelService) GetHotelRooms(ctx context.Context, id int64) ([]*RoomDetails, error) {
	if _, err := s.GetHotel(ctx, id); err != nil {
		return nil, err
	}
	rooms, err := s.roomRepo.ListByHotel(ctx, id)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return withAmenities(ctx, s.amenityRepo, rooms)
}

// invalidate 酒店数据变化后清理详情缓存
func (s *HotelService) invalidate(ctx context.Context, hotelID int64) {
	invalidateDetails(ctx, s.cache, hotelID)
}

func invalidateDetails(ctx context.Context, store *cache.Store, hotelID int64) {
	if err := store.Delete(ctx, detailsKey(hotelID)); err != nil {
		logger.Warn("hotel details cache invalidation failed", logger.HotelID(hotelID), zap.Error(err))
	}
}

func detailsKey(hotelID int64) string {
	return cache.BuildKey(cache.KeyPrefixHotel, "details", strconv.FormatInt(hotelID, 10))
}

// roundRating 评分保留一位小数
func roundRating(rating *float64) *float64 {
	if rating == nil {
		return nil
	}
	r := float64(int(*rating*10+0.5)) / 10
	return &r
}
