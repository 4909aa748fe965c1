package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/crypto"
	appErrors "github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/testutil"
)

func setupUserService(t *testing.T) (*UserService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := NewUserService(
		repository.NewUserRepository(db),
		repository.NewAddressRepository(db),
		crypto.NewPasswordHasher(4),
	)
	return svc, db
}

// ==================== 个人信息测试 ====================

func TestUserService_GetProfile(t *testing.T) {
	svc, db := setupUserService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, models.RoleUser)
	require.NoError(t, db.Create(&models.Address{
		EntityID: u.ID, EntityType: models.AddressEntityUser,
		Street: "1 Main St", City: "Nairobi", Country: "Kenya",
	}).Error)

	t.Run("包含地址", func(t *testing.T) {
		profile, err := svc.GetProfile(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u.Email, profile.Email)
		require.Len(t, profile.Addresses, 1)
		assert.Equal(t, "Nairobi", profile.Addresses[0].City)
	})

	t.Run("用户不存在", func(t *testing.T) {
		_, err := svc.GetProfile(ctx, 99999)
		assert.ErrorIs(t, err, appErrors.ErrUserNotFound)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, db := setupUserService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, models.RoleUser)
	other := testutil.CreateUser(t, db, models.RoleUser)

	t.Run("修改姓名与电话", func(t *testing.T) {
		updated, err := svc.UpdateProfile(ctx, u.ID, &UpdateProfileRequest{
			FirstName:    utils.StringPtr("Grace"),
			ContactPhone: utils.StringPtr("+254700000001"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Grace", updated.FirstName)
		assert.Equal(t, "+254700000001", *updated.ContactPhone)
	})

	t.Run("修改密码后哈希变化", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, u.ID, &UpdateProfileRequest{Password: utils.StringPtr("newsecret")})
		require.NoError(t, err)

		var stored models.User
		require.NoError(t, db.First(&stored, u.ID).Error)
		assert.True(t, crypto.VerifyPassword("newsecret", stored.Password))
	})

	t.Run("邮箱被占用", func(t *testing.T) {
		_, err := svc.UpdateProfile(ctx, u.ID, &UpdateProfileRequest{Email: utils.StringPtr(other.Email)})
		assert.ErrorIs(t, err, appErrors.ErrEmailExists)
	})

	t.Run("邮箱规范化", func(t *testing.T) {
		updated, err := svc.UpdateProfile(ctx, u.ID, &UpdateProfileRequest{Email: utils.StringPtr(" Grace@Example.COM ")})
		require.NoError(t, err)
		assert.Equal(t, "grace@example.com", updated.Email)
	})
}

// ==================== 用户管理测试 ====================

func TestUserService_Admin(t *testing.T) {
	svc, db := setupUserService(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, models.RoleUser)
	testutil.CreateUser(t, db, models.RoleOwner)
	testutil.CreateUser(t, db, models.RoleAdmin)

	t.Run("修改角色", func(t *testing.T) {
		updated, err := svc.UpdateUser(ctx, u.ID, &AdminUpdateUserRequest{Role: utils.StringPtr(models.RoleOwner)})
		require.NoError(t, err)
		assert.Equal(t, models.RoleOwner, updated.Role)
	})

	t.Run("非法角色", func(t *testing.T) {
		_, err := svc.UpdateUser(ctx, u.ID, &AdminUpdateUserRequest{Role: utils.StringPtr("root")})
		assert.ErrorIs(t, err, appErrors.ErrInvalidParams)
	})

	t.Run("按角色筛选", func(t *testing.T) {
		users, total, err := svc.ListUsers(ctx, 0, 10, &ListUsersRequest{Role: models.RoleOwner})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, users, 2)
	})

	t.Run("关键字搜索", func(t *testing.T) {
		users, _, err := svc.ListUsers(ctx, 0, 10, &ListUsersRequest{Keyword: u.LastName})
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, u.ID, users[0].ID)
	})

	t.Run("删除用户", func(t *testing.T) {
		require.NoError(t, svc.DeleteUser(ctx, u.ID))
		_, err := svc.GetUser(ctx, u.ID)
		assert.ErrorIs(t, err, appErrors.ErrUserNotFound)

		assert.ErrorIs(t, svc.DeleteUser(ctx, u.ID), appErrors.ErrUserNotFound)
	})
}
