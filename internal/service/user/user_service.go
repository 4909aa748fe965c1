// Package user 提供用户服务
package user

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/crypto"
	"github.com/dumeirei/hotel-booking-backend/internal/common/database"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

// UserService 用户服务
type UserService struct {
	userRepo    *repository.UserRepository
	addressRepo *repository.AddressRepository
	hasher      *crypto.PasswordHasher
}

// NewUserService 创建用户服务
func NewUserService(userRepo *repository.UserRepository, addressRepo *repository.AddressRepository, hasher *crypto.PasswordHasher) *UserService {
	return &UserService{
		userRepo:    userRepo,
		addressRepo: addressRepo,
		hasher:      hasher,
	}
}

// UserProfile 用户详情
type UserProfile struct {
	*models.User
	Addresses []*models.Address `json:"addresses"`
}

// UpdateProfileRequest 更新个人信息请求
type UpdateProfileRequest struct {
	FirstName    *string `json:"first_name,omitempty" binding:"omitempty,min=1,max=100"`
	LastName     *string `json:"last_name,omitempty" binding:"omitempty,min=1,max=100"`
	Email        *string `json:"email,omitempty" binding:"omitempty,email"`
	Password     *string `json:"password,omitempty" binding:"omitempty,min=6,max=72"`
	ContactPhone *string `json:"contact_phone,omitempty" binding:"omitempty,e164"`
}

// AdminUpdateUserRequest 管理员更新用户请求
type AdminUpdateUserRequest struct {
	UpdateProfileRequest
	Role *string `json:"role,omitempty" binding:"omitempty,role"`
}

// ListUsersRequest 用户列表筛选
type ListUsersRequest struct {
	Role    string `form:"role" binding:"omitempty,role"`
	Keyword string `form:"keyword"`
}

// GetProfile 获取用户详情（含地址）
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*UserProfile, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}

	addresses, err := s.addressRepo.ListByEntity(ctx, models.AddressEntityUser, userID)
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	return &UserProfile{User: user, Addresses: addresses}, nil
}

// UpdateProfile 更新个人信息
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, user, req); err != nil {
		return nil, err
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser 管理员获取用户
func (s *UserService) GetUser(ctx context.Context, userID int64) (*UserProfile, error) {
	return s.GetProfile(ctx, userID)
}

// UpdateUser 管理员更新用户，可修改角色
func (s *UserService) UpdateUser(ctx context.Context, userID int64, req *AdminUpdateUserRequest) (*models.User, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, user, &req.UpdateProfileRequest); err != nil {
		return nil, err
	}
	if req.Role != nil {
		if !models.IsValidRole(*req.Role) {
			return nil, errors.ErrInvalidParams.WithMessage("无效的角色")
		}
		user.Role = *req.Role
	}
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	logger.Info("user updated by admin", logger.UserID(user.ID))
	return user, nil
}

// DeleteUser 删除用户
func (s *UserService) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	logger.Info("user deleted", logger.UserID(userID))
	return nil
}

// ListUsers 用户列表
func (s *UserService) ListUsers(ctx context.Context, offset, limit int, req *ListUsersRequest) ([]*models.User, int64, error) {
	filters := map[string]interface{}{
		"role":    req.Role,
		"keyword": req.Keyword,
	}
	users, total, err := s.userRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return users, total, nil
}

func (s *UserService) get(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrUserNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return user, nil
}

// apply 合并更新字段，邮箱变更需检查唯一
func (s *UserService) apply(ctx context.Context, user *models.User, req *UpdateProfileRequest) error {
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.ContactPhone != nil {
		user.ContactPhone = req.ContactPhone
	}
	if req.Email != nil {
		email := utils.NormalizeEmail(*req.Email)
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return errors.ErrDatabaseError.WithError(err)
			}
			if exists {
				return errors.ErrEmailExists
			}
			user.Email = email
		}
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return errors.ErrInternalError.WithError(err)
		}
		user.Password = hash
	}
	return nil
}

func (s *UserService) save(ctx context.Context, user *models.User) error {
	if err := s.userRepo.Update(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return errors.ErrEmailExists
		}
		return errors.ErrDatabaseError.WithError(err)
	}
	return nil
}
