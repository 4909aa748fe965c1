package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appErrors "github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/testutil"
)

func setupAddressService(t *testing.T) (*AddressService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	svc := NewAddressService(
		repository.NewAddressRepository(db),
		repository.NewUserRepository(db),
		repository.NewHotelRepository(db),
	)
	return svc, db
}

func addressRequest(entityType string, entityID int64) *CreateAddressRequest {
	return &CreateAddressRequest{
		EntityID:   entityID,
		EntityType: entityType,
		Street:     "Kenyatta Ave 1",
		City:       "Nairobi",
		Country:    "Kenya",
	}
}

// ==================== 创建地址测试 ====================

func TestAddressService_Create(t *testing.T) {
	svc, db := setupAddressService(t)
	ctx := context.Background()
	guest := testutil.CreateUser(t, db, models.RoleUser)
	owner := testutil.CreateUser(t, db, models.RoleOwner)
	hotel := testutil.CreateHotel(t, db)

	tests := []struct {
		name    string
		op      Operator
		req     *CreateAddressRequest
		wantErr error
	}{
		{"用户创建自己的地址", Operator{UserID: guest.ID, Role: models.RoleUser}, addressRequest(models.AddressEntityUser, guest.ID), nil},
		{"用户不能替他人创建", Operator{UserID: guest.ID, Role: models.RoleUser}, addressRequest(models.AddressEntityUser, owner.ID), appErrors.ErrPermissionDenied},
		{"用户不能创建酒店地址", Operator{UserID: guest.ID, Role: models.RoleUser}, addressRequest(models.AddressEntityHotel, hotel.ID), appErrors.ErrPermissionDenied},
		{"业主创建酒店地址", Operator{UserID: owner.ID, Role: models.RoleOwner}, addressRequest(models.AddressEntityHotel, hotel.ID), nil},
		{"酒店不存在", Operator{UserID: owner.ID, Role: models.RoleOwner}, addressRequest(models.AddressEntityHotel, 99999), appErrors.ErrHotelNotFound},
		{"管理员为不存在的用户创建", Operator{Role: models.RoleAdmin}, addressRequest(models.AddressEntityUser, 99999), appErrors.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := svc.Create(ctx, tt.op, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, addr.ID)
			assert.Equal(t, tt.req.EntityType, addr.EntityType)
		})
	}
}

// ==================== 更新/删除地址测试 ====================

func TestAddressService_UpdateDelete(t *testing.T) {
	svc, db := setupAddressService(t)
	ctx := context.Background()
	guest := testutil.CreateUser(t, db, models.RoleUser)
	other := testutil.CreateUser(t, db, models.RoleUser)
	self := Operator{UserID: guest.ID, Role: models.RoleUser}

	addr, err := svc.Create(ctx, self, addressRequest(models.AddressEntityUser, guest.ID))
	require.NoError(t, err)

	t.Run("更新城市", func(t *testing.T) {
		updated, err := svc.Update(ctx, self, addr.ID, &UpdateAddressRequest{
			City:       utils.StringPtr("Mombasa"),
			PostalCode: utils.StringPtr("80100"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Mombasa", updated.City)
		assert.Equal(t, "80100", *updated.PostalCode)
	})

	t.Run("他人不能修改", func(t *testing.T) {
		_, err := svc.Update(ctx, Operator{UserID: other.ID, Role: models.RoleUser}, addr.ID, &UpdateAddressRequest{})
		assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)
	})

	t.Run("列表只返回自己的地址", func(t *testing.T) {
		_, err := svc.Create(ctx, Operator{UserID: other.ID, Role: models.RoleUser}, addressRequest(models.AddressEntityUser, other.ID))
		require.NoError(t, err)

		list, total, err := svc.List(ctx, self, 0, 10, &ListAddressesRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Equal(t, addr.ID, list[0].ID)

		_, total, err = svc.List(ctx, Operator{Role: models.RoleAdmin}, 0, 10, &ListAddressesRequest{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("删除", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, self, addr.ID))
		_, err := svc.GetByID(ctx, self, addr.ID)
		assert.ErrorIs(t, err, appErrors.ErrAddressNotFound)
	})
}
