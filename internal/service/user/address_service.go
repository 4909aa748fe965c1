package user

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

// AddressService 地址服务，地址归属用户或酒店
type AddressService struct {
	addressRepo *repository.AddressRepository
	userRepo    *repository.UserRepository
	hotelRepo   *repository.HotelRepository
}

// NewAddressService 创建地址服务
func NewAddressService(addressRepo *repository.AddressRepository, userRepo *repository.UserRepository, hotelRepo *repository.HotelRepository) *AddressService {
	return &AddressService{
		addressRepo: addressRepo,
		userRepo:    userRepo,
		hotelRepo:   hotelRepo,
	}
}

// Operator 操作人
type Operator struct {
	UserID int64
	Role   string
}

// canManage 用户只能管理自己的地址；酒店地址需要业主或管理员
func (o Operator) canManage(entityType string, entityID int64) bool {
	switch o.Role {
	case models.RoleAdmin:
		return true
	case models.RoleOwner:
		return entityType == models.AddressEntityHotel || entityID == o.UserID
	default:
		return entityType == models.AddressEntityUser && entityID == o.UserID
	}
}

// CreateAddressRequest 创建地址请求
type CreateAddressRequest struct {
	EntityID   int64   `json:"entity_id" binding:"required,min=1"`
	EntityType string  `json:"entity_type" binding:"required,address_entity"`
	Street     string  `json:"street" binding:"required,max=255"`
	City       string  `json:"city" binding:"required,max=100"`
	State      *string `json:"state,omitempty" binding:"omitempty,max=100"`
	PostalCode *string `json:"postal_code,omitempty" binding:"omitempty,max=20"`
	Country    string  `json:"country" binding:"required,max=100"`
}

// UpdateAddressRequest 更新地址请求
type UpdateAddressRequest struct {
	Street     *string `json:"street,omitempty" binding:"omitempty,min=1,max=255"`
	City       *string `json:"city,omitempty" binding:"omitempty,min=1,max=100"`
	State      *string `json:"state,omitempty" binding:"omitempty,max=100"`
	PostalCode *string `json:"postal_code,omitempty" binding:"omitempty,max=20"`
	Country    *string `json:"country,omitempty" binding:"omitempty,min=1,max=100"`
}

// ListAddressesRequest 地址列表筛选
type ListAddressesRequest struct {
	EntityType string `form:"entity_type" binding:"omitempty,address_entity"`
	EntityID   int64  `form:"entity_id" binding:"omitempty,min=1"`
	City       string `form:"city"`
}

// Create 创建地址
func (s *AddressService) Create(ctx context.Context, op Operator, req *CreateAddressRequest) (*models.Address, error) {
	if !op.canManage(req.EntityType, req.EntityID) {
		return nil, errors.ErrPermissionDenied
	}
	if err := s.ensureEntity(ctx, req.EntityType, req.EntityID); err != nil {
		return nil, err
	}

	address := &models.Address{
		EntityID:   req.EntityID,
		EntityType: req.EntityType,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	}
	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return address, nil
}

// GetByID 获取地址
func (s *AddressService) GetByID(ctx context.Context, op Operator, id int64) (*models.Address, error) {
	address, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !op.canManage(address.EntityType, address.EntityID) {
		return nil, errors.ErrPermissionDenied
	}
	return address, nil
}

// Update 更新地址
func (s *AddressService) Update(ctx context.Context, op Operator, id int64, req *UpdateAddressRequest) (*models.Address, error) {
	address, err := s.GetByID(ctx, op, id)
	if err != nil {
		return nil, err
	}

	if req.Street != nil {
		address.Street = *req.Street
	}
	if req.City != nil {
		address.City = *req.City
	}
	if req.State != nil {
		address.State = req.State
	}
	if req.PostalCode != nil {
		address.PostalCode = req.PostalCode
	}
	if req.Country != nil {
		address.Country = *req.Country
	}

	if err := s.addressRepo.Update(ctx, address); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return address, nil
}

// Delete 删除地址
func (s *AddressService) Delete(ctx context.Context, op Operator, id int64) error {
	if _, err := s.GetByID(ctx, op, id); err != nil {
		return err
	}
	if err := s.addressRepo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrAddressNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// List 地址列表，非管理员只能看到自己的地址
func (s *AddressService) List(ctx context.Context, op Operator, offset, limit int, req *ListAddressesRequest) ([]*models.Address, int64, error) {
	filters := map[string]interface{}{
		"entity_type": req.EntityType,
		"entity_id":   req.EntityID,
		"city":        req.City,
	}
	if op.Role != models.RoleAdmin {
		filters["entity_type"] = models.AddressEntityUser
		filters["entity_id"] = op.UserID
	}

	addresses, total, err := s.addressRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return addresses, total, nil
}

func (s *AddressService) get(ctx context.Context, id int64) (*models.Address, error) {
	address, err := s.addressRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrAddressNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return address, nil
}

// ensureEntity 地址归属对象必须存在
func (s *AddressService) ensureEntity(ctx context.Context, entityType string, entityID int64) error {
	switch entityType {
	case models.AddressEntityUser:
		if _, err := s.userRepo.GetByID(ctx, entityID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrUserNotFound
			}
			return errors.ErrDatabaseError.WithError(err)
		}
	case models.AddressEntityHotel:
		exists, err := s.hotelRepo.Exists(ctx, entityID)
		if err != nil {
			return errors.ErrDatabaseError.WithError(err)
		}
		if !exists {
			return errors.ErrHotelNotFound
		}
	default:
		return errors.ErrInvalidParams.WithMessage("无效的地址归属类型")
	}
	return nil
}
