package hotel

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/database"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

// AmenityService 设施服务
type AmenityService struct {
	amenityRepo *repository.AmenityRepository
	hotelRepo   *repository.HotelRepository
	roomRepo    *repository.RoomRepository
	cache       *cache.Store
}

// NewAmenityService 创建设施服务
func NewAmenityService(
	amenityRepo *repository.AmenityRepository,
	hotelRepo *repository.HotelRepository,
	roomRepo *repository.RoomRepository,
	store *cache.Store,
) *AmenityService {
	return &AmenityService{
		amenityRepo: amenityRepo,
		hotelRepo:   hotelRepo,
		roomRepo:    roomRepo,
		cache:       store,
	}
}

// AmenityRequest 创建设施请求
type AmenityRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty" binding:"omitempty,max=255"`
}

// UpdateAmenityRequest 更新设施请求
type UpdateAmenityRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty"`
	Icon        *string `json:"icon,omitempty" binding:"omitempty,max=255"`
}

// EntityRequest 设施关联请求
type EntityRequest struct {
	EntityID   int64  `json:"entity_id" binding:"required,min=1"`
	EntityType string `json:"entity_type" binding:"required,amenity_entity"`
}

// CreateAmenity 创建设施
func (s *AmenityService) CreateAmenity(ctx context.Context, req *AmenityRequest) (*models.Amenity, error) {
	amenity := &models.Amenity{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	}
	if err := s.amenityRepo.Create(ctx, amenity); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.ErrAmenityExists
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return amenity, nil
}

// GetAmenity 获取设施
func (s *AmenityService) GetAmenity(ctx context.Context, id int64) (*models.Amenity, error) {
	amenity, err := s.amenityRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrAmenityNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return amenity, nil
}

// UpdateAmenity 更新设施
func (s *AmenityService) UpdateAmenity(ctx context.Context, id int64, req *UpdateAmenityRequest) (*models.Amenity, error) {
	amenity, err := s.GetAmenity(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		amenity.Name = *req.Name
	}
	if req.Description != nil {
		amenity.Description = req.Description
	}
	if req.Icon != nil {
		amenity.Icon = req.Icon
	}
	if err := s.amenityRepo.Update(ctx, amenity); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.ErrAmenityExists
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	s.flushDetails(ctx)
	return amenity, nil
}

// DeleteAmenity 删除设施及其关联
func (s *AmenityService) DeleteAmenity(ctx context.Context, id int64) error {
	if err := s.amenityRepo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrAmenityNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	s.flushDetails(ctx)
	return nil
}

// ListAmenities 设施列表
func (s *AmenityService) ListAmenities(ctx context.Context, offset, limit int, name string) ([]*models.Amenity, int64, error) {
	amenities, total, err := s.amenityRepo.List(ctx, offset, limit, name)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return amenities, total, nil
}

// LinkEntity 关联设施到房间或酒店
func (s *AmenityService) LinkEntity(ctx context.Context, amenityID int64, req *EntityRequest) (*models.EntityAmenity, error) {
	if _, err := s.GetAmenity(ctx, amenityID); err != nil {
		return nil, err
	}
	hotelID, err := s.ownerHotel(ctx, req.EntityType, req.EntityID)
	if err != nil {
		return nil, err
	}

	link := &models.EntityAmenity{
		AmenityID:  amenityID,
		EntityID:   req.EntityID,
		EntityType: req.EntityType,
	}
	if err := s.amenityRepo.Link(ctx, link); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.ErrEntityAmenityExists
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	invalidateDetails(ctx, s.cache, hotelID)
	return link, nil
}

// UnlinkEntity 解除设施关联
func (s *AmenityService) UnlinkEntity(ctx context.Context, amenityID int64, req *EntityRequest) error {
	hotelID, err := s.ownerHotel(ctx, req.EntityType, req.EntityID)
	if err != nil {
		return err
	}
	if err := s.amenityRepo.Unlink(ctx, amenityID, req.EntityID, req.EntityType); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrEntityAmenityNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	invalidateDetails(ctx, s.cache, hotelID)
	return nil
}

// ownerHotel 校验关联对象存在，返回其所属酒店
func (s *AmenityService) ownerHotel(ctx context.Context, entityType string, entityID int64) (int64, error) {
	switch entityType {
	case models.AmenityEntityRoom:
		room, err := s.roomRepo.GetByID(ctx, entityID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return 0, errors.ErrRoomNotFound
			}
			return 0, errors.ErrDatabaseError.WithError(err)
		}
		return room.HotelID, nil
	case models.AmenityEntityHotel:
		exists, err := s.hotelRepo.Exists(ctx, entityID)
		if err != nil {
			return 0, errors.ErrDatabaseError.WithError(err)
		}
		if !exists {
			return 0, errors.ErrHotelNotFound
		}
		return entityID, nil
	default:
		return 0, errors.ErrInvalidParams.WithMessage("无效的设施关联类型")
	}
}

// flushDetails 设施本身变化影响所有酒店详情
func (s *AmenityService) flushDetails(ctx context.Context) {
	_ = s.cache.DeletePrefix(ctx, cache.BuildKey(cache.KeyPrefixHotel, "details", ""))
}
