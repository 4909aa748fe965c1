// Package repository 支付仓储单元测试
package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/testutil"
)

func setupBookingFixture(t *testing.T, db *gorm.DB) *models.Booking {
	t.Helper()
	user := testutil.CreateUser(t, db, models.RoleUser)
	room := testutil.CreateRoom(t, db, testutil.CreateHotel(t, db).ID, 100, 2)
	return testutil.CreateBooking(t, db, user.ID, room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)
}

func TestPaymentRepository_Create(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()
	booking := setupBookingFixture(t, db)

	txID := "pi_create"
	method := models.PaymentMethodCard
	payment := &models.Payment{BookingID: booking.ID, Amount: 200, PaymentStatus: models.PaymentStatusPending, PaymentMethod: &method, TransactionID: &txID}
	require.NoError(t, repo.Create(ctx, nil, payment))
	assert.NotZero(t, payment.ID)

	t.Run("流水号唯一", func(t *testing.T) {
		dup := &models.Payment{BookingID: booking.ID, Amount: 200, PaymentStatus: models.PaymentStatusPending, TransactionID: &txID}
		assert.ErrorIs(t, repo.Create(ctx, nil, dup), gorm.ErrDuplicatedKey)
	})

	t.Run("按流水号查询", func(t *testing.T) {
		found, err := repo.GetByTransactionID(ctx, nil, txID)
		require.NoError(t, err)
		assert.Equal(t, payment.ID, found.ID)

		_, err = repo.GetByTransactionID(ctx, nil, "pi_missing")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("按 ID 查询带预订", func(t *testing.T) {
		found, err := repo.GetByID(ctx, payment.ID)
		require.NoError(t, err)
		require.NotNil(t, found.Booking)
		assert.Equal(t, booking.ID, found.Booking.ID)
	})
}

func TestPaymentRepository_UpdateInTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()
	booking := setupBookingFixture(t, db)
	payment := testutil.CreatePayment(t, db, booking.ID, "pi_tx", models.PaymentStatusPending)

	now := time.Now()
	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.GetForUpdate(ctx, tx, "pi_tx")
		if err != nil {
			return err
		}
		return repo.UpdateFields(ctx, tx, locked.ID, map[string]interface{}{
			"payment_status": models.PaymentStatusCompleted,
			"payment_date":   now,
		})
	})
	require.NoError(t, err)

	found, err := repo.GetByTransactionID(ctx, nil, "pi_tx")
	require.NoError(t, err)
	assert.Equal(t, payment.ID, found.ID)
	assert.Equal(t, models.PaymentStatusCompleted, found.PaymentStatus)
	assert.NotNil(t, found.PaymentDate)
}

func TestPaymentRepository_List(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()
	b1 := setupBookingFixture(t, db)
	b2 := setupBookingFixture(t, db)

	testutil.CreatePayment(t, db, b1.ID, "pi_1", models.PaymentStatusFailed)
	testutil.CreatePayment(t, db, b1.ID, "pi_2", models.PaymentStatusCompleted)
	testutil.CreatePayment(t, db, b2.ID, "pi_3", models.PaymentStatusCompleted)

	_, total, err := repo.List(ctx, 0, 10, map[string]interface{}{"status": models.PaymentStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = repo.List(ctx, 0, 10, map[string]interface{}{"booking_id": b1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	t.Run("按预订用户筛选", func(t *testing.T) {
		list, total, err := repo.List(ctx, 0, 10, map[string]interface{}{"user_id": b2.UserID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, list, 1)
		assert.Equal(t, "pi_3", *list[0].TransactionID)

		_, total, err = repo.List(ctx, 0, 10, map[string]interface{}{"user_id": b1.UserID, "status": models.PaymentStatusFailed})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	list, err := repo.ListByBooking(ctx, b2.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pi_3", *list[0].TransactionID)
}
