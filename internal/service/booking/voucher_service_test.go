package booking

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-booking-backend/internal/common/crypto"
	appErrors "github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/qrcode"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/testutil"
)

func setupVoucherService(t *testing.T, env *testEnv) *VoucherService {
	t.Helper()
	signer, err := crypto.NewSigner("voucher-test-secret")
	require.NoError(t, err)
	return NewVoucherService(repository.NewBookingRepository(env.db), signer, qrcode.NewGenerator(qrcode.WithSize(128)))
}

func TestVoucherService_GeneratePNG(t *testing.T) {
	env := setupTestBookingService(t)
	svc := setupVoucherService(t, env)
	ctx := context.Background()

	t.Run("已确认预订", func(t *testing.T) {
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusConfirmed)

		data, err := svc.GeneratePNG(ctx, b.ID, env.guestActor())
		require.NoError(t, err)
		img, err := png.Decode(bytes.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, 128, img.Bounds().Dx())
	})

	t.Run("待支付预订", func(t *testing.T) {
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-04-10", "2025-04-12", models.BookingStatusPending)
		_, err := svc.GeneratePNG(ctx, b.ID, env.guestActor())
		assert.ErrorIs(t, err, appErrors.ErrBookingStatusError)
	})

	t.Run("他人无权获取", func(t *testing.T) {
		b := testutil.CreateBooking(t, env.db, env.admin.ID, env.room.ID, "2025-05-10", "2025-05-12", models.BookingStatusConfirmed)
		_, err := svc.GeneratePNG(ctx, b.ID, env.guestActor())
		assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)
	})

	t.Run("不存在", func(t *testing.T) {
		_, err := svc.GeneratePNG(ctx, 99999, env.adminActor())
		assert.ErrorIs(t, err, appErrors.ErrBookingNotFound)
	})
}

func TestVoucherService_Verify(t *testing.T) {
	env := setupTestBookingService(t)
	svc := setupVoucherService(t, env)
	ctx := context.Background()
	b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusConfirmed)

	t.Run("有效凭证", func(t *testing.T) {
		info, err := svc.Verify(ctx, svc.Sign(b).Content())
		require.NoError(t, err)
		assert.Equal(t, b.ID, info.ID)
		require.NotNil(t, info.User)
		assert.Equal(t, env.guest.ID, info.User.ID)
	})

	t.Run("签名被篡改", func(t *testing.T) {
		v := svc.Sign(b)
		v.Signature = "0000000000000000"
		_, err := svc.Verify(ctx, v.Content())
		assert.ErrorIs(t, err, appErrors.ErrInvalidParams)
	})

	t.Run("格式错误", func(t *testing.T) {
		_, err := svc.Verify(ctx, "https://example.com")
		assert.ErrorIs(t, err, appErrors.ErrInvalidParams)
	})

	t.Run("改期后旧凭证失效", func(t *testing.T) {
		old := svc.Sign(b)
		require.NoError(t, env.db.Model(b).Update("check_in_date", models.NewDate(2025, 3, 11)).Error)

		_, err := svc.Verify(ctx, old.Content())
		assert.ErrorIs(t, err, appErrors.ErrInvalidParams)
	})

	t.Run("已取消预订", func(t *testing.T) {
		cancelled := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-06-10", "2025-06-12", models.BookingStatusCancelled)
		_, err := svc.Verify(ctx, svc.Sign(cancelled).Content())
		assert.ErrorIs(t, err, appErrors.ErrBookingStatusError)
	})
}
