// Package booking 预订服务单元测试
package booking

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	appErrors "github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/service/notify"
	"github.com/dumeirei/hotel-booking-backend/internal/testutil"
	"github.com/dumeirei/hotel-booking-backend/pkg/mqtt"
	"github.com/dumeirei/hotel-booking-backend/pkg/sms"
)

type testEnv struct {
	svc       *BookingService
	db        *gorm.DB
	sms       *sms.MockSender
	publisher *mqtt.MockPublisher
	notifier  *notify.Notifier
	guest     *models.User
	admin     *models.User
	room      *models.Room
}

func setupTestBookingService(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)

	smsSender := sms.NewMockSender()
	publisher := mqtt.NewMockPublisher()
	notifier := notify.New(notify.WithSMS(smsSender), notify.WithMQTT(publisher, "hotel/"))

	svc := NewBookingService(
		db,
		repository.NewBookingRepository(db),
		repository.NewRoomRepository(db),
		notifier,
		nil,
	)

	hotel := testutil.CreateHotel(t, db)
	return &testEnv{
		svc:       svc,
		db:        db,
		sms:       smsSender,
		publisher: publisher,
		notifier:  notifier,
		guest:     testutil.CreateUser(t, db, models.RoleUser),
		admin:     testutil.CreateUser(t, db, models.RoleAdmin),
		room:      testutil.CreateRoom(t, db, hotel.ID, 120, 2),
	}
}

func (e *testEnv) guestActor() Actor {
	return Actor{UserID: e.guest.ID, Role: models.RoleUser}
}

func (e *testEnv) adminActor() Actor {
	return Actor{UserID: e.admin.ID, Role: models.RoleAdmin}
}

// ==================== ParseRange 测试 ====================

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		out     string
		wantErr *appErrors.AppError
	}{
		{"正常区间", "2025-03-10", "2025-03-12", nil},
		{"一晚", "2025-03-10", "2025-03-11", nil},
		{"入住日期为空", "", "2025-03-12", appErrors.ErrInvalidDate},
		{"退房日期无法解析", "2025-03-10", "03/12/2025", appErrors.ErrInvalidDate},
		{"零长度区间", "2025-03-10", "2025-03-10", appErrors.ErrInvalidRange},
		{"倒置区间", "2025-03-12", "2025-03-10", appErrors.ErrInvalidRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, out, err := ParseRange(tt.in, tt.out)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, in.Before(out))
		})
	}
}

// ==================== CheckAvailability 测试 ====================

func TestBookingService_CheckAvailability(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()
	testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusConfirmed)
	testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-01", "2025-03-20", models.BookingStatusCancelled)

	tests := []struct {
		name      string
		in        string
		out       string
		available bool
	}{
		{"完全重叠", "2025-03-10", "2025-03-12", false},
		{"部分重叠", "2025-03-11", "2025-03-14", false},
		{"包含已有区间", "2025-03-09", "2025-03-13", false},
		{"同日退房入住", "2025-03-12", "2025-03-14", true},
		{"同日入住退房", "2025-03-08", "2025-03-10", true},
		{"仅被已取消预订覆盖", "2025-03-15", "2025-03-18", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := env.svc.CheckAvailability(ctx, env.room.ID, tt.in, tt.out)
			require.NoError(t, err)
			assert.Equal(t, tt.available, result.Available)
			if tt.available {
				assert.Empty(t, result.Conflicts)
			} else {
				require.Len(t, result.Conflicts, 1)
				assert.Equal(t, models.BookingStatusConfirmed, result.Conflicts[0].BookingStatus)
			}
		})
	}

	t.Run("报价", func(t *testing.T) {
		result, err := env.svc.CheckAvailability(ctx, env.room.ID, "2025-04-01", "2025-04-04")
		require.NoError(t, err)
		assert.Equal(t, 3, result.Nights)
		assert.InDelta(t, 360.0, result.TotalAmount, 0.001)
	})

	t.Run("房间不存在", func(t *testing.T) {
		_, err := env.svc.CheckAvailability(ctx, 99999, "2025-03-10", "2025-03-12")
		assert.ErrorIs(t, err, appErrors.ErrRoomNotFound)
	})

	t.Run("房间暂停预订", func(t *testing.T) {
		closed := testutil.CreateRoom(t, env.db, env.room.HotelID, 80, 1)
		require.NoError(t, env.db.Model(closed).Update("is_available", false).Error)

		_, err := env.svc.CheckAvailability(ctx, closed.ID, "2025-03-10", "2025-03-12")
		assert.ErrorIs(t, err, appErrors.ErrRoomNotAvailable)
	})

	t.Run("非法区间", func(t *testing.T) {
		_, err := env.svc.CheckAvailability(ctx, env.room.ID, "2025-03-12", "2025-03-12")
		assert.ErrorIs(t, err, appErrors.ErrInvalidRange)
	})
}

func TestBookingService_SearchAvailableRooms(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()

	suite := testutil.CreateRoom(t, env.db, env.room.HotelID, 300, 4)
	single := testutil.CreateRoom(t, env.db, env.room.HotelID, 60, 1)
	testutil.CreateBooking(t, env.db, env.guest.ID, suite.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)

	t.Run("容量筛选", func(t *testing.T) {
		rooms, err := env.svc.SearchAvailableRooms(ctx, &SearchRequest{
			CheckInDate:  "2025-03-10",
			CheckOutDate: "2025-03-12",
			Capacity:     2,
		})
		require.NoError(t, err)
		require.Len(t, rooms, 1)
		assert.Equal(t, env.room.ID, rooms[0].ID)
		assert.Equal(t, 2, rooms[0].Nights)
		assert.InDelta(t, 240.0, rooms[0].TotalAmount, 0.001)
	})

	t.Run("默认容量按价格排序", func(t *testing.T) {
		rooms, err := env.svc.SearchAvailableRooms(ctx, &SearchRequest{
			CheckInDate:  "2025-03-12",
			CheckOutDate: "2025-03-13",
		})
		require.NoError(t, err)
		require.Len(t, rooms, 3)
		assert.Equal(t, single.ID, rooms[0].ID)
		assert.Equal(t, suite.ID, rooms[2].ID)
	})

	t.Run("非法日期", func(t *testing.T) {
		_, err := env.svc.SearchAvailableRooms(ctx, &SearchRequest{CheckInDate: "x", CheckOutDate: "2025-03-13"})
		assert.ErrorIs(t, err, appErrors.ErrInvalidDate)
	})
}

// ==================== CreateBooking 测试 ====================

func TestBookingService_CreateBooking(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()

	t.Run("创建成功", func(t *testing.T) {
		info, err := env.svc.CreateBooking(ctx, env.guest.ID, &CreateBookingRequest{
			RoomID:       env.room.ID,
			CheckInDate:  "2025-03-10",
			CheckOutDate: "2025-03-12",
		})
		require.NoError(t, err)
		assert.NotZero(t, info.ID)
		assert.Equal(t, models.BookingStatusPending, info.BookingStatus)
		assert.Equal(t, 2, info.Nights)
		assert.InDelta(t, 240.0, info.TotalAmount, 0.001)
		require.NotNil(t, info.Room)
		assert.Equal(t, env.room.ID, info.Room.ID)

		var stored models.Booking
		require.NoError(t, env.db.First(&stored, info.ID).Error)
		assert.Equal(t, "2025-03-10", stored.CheckInDate.String())
		assert.Equal(t, "2025-03-12", stored.CheckOutDate.String())
	})

	t.Run("重叠冲突", func(t *testing.T) {
		_, err := env.svc.CreateBooking(ctx, env.guest.ID, &CreateBookingRequest{
			RoomID:       env.room.ID,
			CheckInDate:  "2025-03-11",
			CheckOutDate: "2025-03-13",
		})
		assert.ErrorIs(t, err, appErrors.ErrBookingConflict)
	})

	t.Run("紧接着入住", func(t *testing.T) {
		_, err := env.svc.CreateBooking(ctx, env.guest.ID, &CreateBookingRequest{
			RoomID:       env.room.ID,
			CheckInDate:  "2025-03-12",
			CheckOutDate: "2025-03-14",
		})
		assert.NoError(t, err)
	})

	t.Run("房间不存在", func(t *testing.T) {
		_, err := env.svc.CreateBooking(ctx, env.guest.ID, &CreateBookingRequest{
			RoomID:       99999,
			CheckInDate:  "2025-03-10",
			CheckOutDate: "2025-03-12",
		})
		assert.ErrorIs(t, err, appErrors.ErrRoomNotFound)
	})

	t.Run("房间暂停预订", func(t *testing.T) {
		closed := testutil.CreateRoom(t, env.db, env.room.HotelID, 80, 1)
		require.NoError(t, env.db.Model(closed).Update("is_available", false).Error)

		_, err := env.svc.CreateBooking(ctx, env.guest.ID, &CreateBookingRequest{
			RoomID:       closed.ID,
			CheckInDate:  "2025-03-10",
			CheckOutDate: "2025-03-12",
		})
		assert.ErrorIs(t, err, appErrors.ErrRoomNotAvailable)
	})

	t.Run("倒置区间不落库", func(t *testing.T) {
		var before int64
		env.db.Model(&models.Booking{}).Count(&before)

		_, err := env.svc.CreateBooking(ctx, env.guest.ID, &CreateBookingRequest{
			RoomID:       env.room.ID,
			CheckInDate:  "2025-05-10",
			CheckOutDate: "2025-05-09",
		})
		assert.ErrorIs(t, err, appErrors.ErrInvalidRange)

		var after int64
		env.db.Model(&models.Booking{}).Count(&after)
		assert.Equal(t, before, after)
	})
}

func TestBookingService_CreateBooking_Room7Example(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()
	testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2024-07-01", "2024-07-05", models.BookingStatusConfirmed)

	_, err := env.svc.CreateBooking(ctx, env.guest.ID, &CreateBookingRequest{
		RoomID: env.room.ID, CheckInDate: "2024-07-03", CheckOutDate: "2024-07-06",
	})
	assert.ErrorIs(t, err, appErrors.ErrBookingConflict)

	info, err := env.svc.CreateBooking(ctx, env.guest.ID, &CreateBookingRequest{
		RoomID: env.room.ID, CheckInDate: "2024-07-05", CheckOutDate: "2024-07-08",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, info.Nights)
}

func TestBookingService_CreateBooking_Concurrent(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// 各请求区间两两相交
			checkIn := []string{"2025-06-10", "2025-06-11"}[i%2]
			_, err := env.svc.CreateBooking(ctx, env.guest.ID, &CreateBookingRequest{
				RoomID:       env.room.ID,
				CheckInDate:  checkIn,
				CheckOutDate: "2025-06-13",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if appErrors.Is(err, appErrors.ErrBookingConflict) {
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, conflicts)

	var count int64
	require.NoError(t, env.db.Model(&models.Booking{}).Where("room_id = ?", env.room.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// ==================== GetBooking 测试 ====================

func TestBookingService_GetBooking(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()
	b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)
	testutil.CreatePayment(t, env.db, b.ID, "pi_get", models.PaymentStatusPending)

	t.Run("本人查看", func(t *testing.T) {
		info, err := env.svc.GetBooking(ctx, b.ID, env.guestActor())
		require.NoError(t, err)
		require.NotNil(t, info.User)
		assert.Equal(t, env.guest.Email, info.User.Email)
		require.NotNil(t, info.Room)
		assert.Len(t, info.Payments, 1)
	})

	t.Run("管理员查看", func(t *testing.T) {
		_, err := env.svc.GetBooking(ctx, b.ID, env.adminActor())
		assert.NoError(t, err)
	})

	t.Run("他人无权查看", func(t *testing.T) {
		other := testutil.CreateUser(t, env.db, models.RoleUser)
		_, err := env.svc.GetBooking(ctx, b.ID, Actor{UserID: other.ID, Role: models.RoleUser})
		assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)
	})

	t.Run("不存在", func(t *testing.T) {
		_, err := env.svc.GetBooking(ctx, 99999, env.adminActor())
		assert.ErrorIs(t, err, appErrors.ErrBookingNotFound)
	})
}

// ==================== UpdateBooking 测试 ====================

func TestBookingService_UpdateBooking(t *testing.T) {
	ctx := context.Background()
	strPtr := func(s string) *string { return &s }

	t.Run("修改日期重新计价", func(t *testing.T) {
		env := setupTestBookingService(t)
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)

		info, err := env.svc.UpdateBooking(ctx, b.ID, env.guestActor(), &UpdateBookingRequest{
			CheckOutDate: strPtr("2025-03-13"),
		})
		require.NoError(t, err)
		assert.Equal(t, "2025-03-13", info.CheckOutDate.String())
		assert.InDelta(t, 360.0, info.TotalAmount, 0.001)
	})

	t.Run("延长区间不与自身冲突", func(t *testing.T) {
		env := setupTestBookingService(t)
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)

		_, err := env.svc.UpdateBooking(ctx, b.ID, env.guestActor(), &UpdateBookingRequest{
			CheckInDate: strPtr("2025-03-09"),
		})
		assert.NoError(t, err)
	})

	t.Run("与其他预订冲突", func(t *testing.T) {
		env := setupTestBookingService(t)
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)
		testutil.CreateBooking(t, env.db, env.admin.ID, env.room.ID, "2025-03-12", "2025-03-15", models.BookingStatusConfirmed)

		_, err := env.svc.UpdateBooking(ctx, b.ID, env.guestActor(), &UpdateBookingRequest{
			CheckOutDate: strPtr("2025-03-13"),
		})
		assert.ErrorIs(t, err, appErrors.ErrBookingConflict)

		var stored models.Booking
		require.NoError(t, env.db.First(&stored, b.ID).Error)
		assert.Equal(t, "2025-03-12", stored.CheckOutDate.String())
	})

	t.Run("换房", func(t *testing.T) {
		env := setupTestBookingService(t)
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)
		other := testutil.CreateRoom(t, env.db, env.room.HotelID, 200, 2)

		info, err := env.svc.UpdateBooking(ctx, b.ID, env.guestActor(), &UpdateBookingRequest{RoomID: &other.ID})
		require.NoError(t, err)
		assert.Equal(t, other.ID, info.RoomID)
		assert.InDelta(t, 400.0, info.TotalAmount, 0.001)
	})

	t.Run("已确认预订不能改期", func(t *testing.T) {
		env := setupTestBookingService(t)
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusConfirmed)

		_, err := env.svc.UpdateBooking(ctx, b.ID, env.adminActor(), &UpdateBookingRequest{
			CheckOutDate: strPtr("2025-03-13"),
		})
		assert.ErrorIs(t, err, appErrors.ErrBookingStatusError)
	})

	t.Run("普通用户不能确认", func(t *testing.T) {
		env := setupTestBookingService(t)
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)

		_, err := env.svc.UpdateBooking(ctx, b.ID, env.guestActor(), &UpdateBookingRequest{
			BookingStatus: strPtr(models.BookingStatusConfirmed),
		})
		assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)
	})

	t.Run("普通用户可取消待支付预订", func(t *testing.T) {
		env := setupTestBookingService(t)
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)

		info, err := env.svc.UpdateBooking(ctx, b.ID, env.guestActor(), &UpdateBookingRequest{
			BookingStatus: strPtr(models.BookingStatusCancelled),
		})
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, info.BookingStatus)
	})

	t.Run("普通用户不能取消已确认预订", func(t *testing.T) {
		env := setupTestBookingService(t)
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusConfirmed)

		_, cancelErr := env.svc.CancelBooking(ctx, b.ID, env.guestActor())
		assert.ErrorIs(t, cancelErr, appErrors.ErrBookingStatusError)

		_, err := env.svc.UpdateBooking(ctx, b.ID, env.guestActor(), &UpdateBookingRequest{
			BookingStatus: strPtr(models.BookingStatusCancelled),
		})
		assert.ErrorIs(t, err, appErrors.ErrBookingStatusError)

		var stored models.Booking
		require.NoError(t, env.db.First(&stored, b.ID).Error)
		assert.Equal(t, models.BookingStatusConfirmed, stored.BookingStatus)
	})

	t.Run("管理员恢复已取消预订时复查重叠", func(t *testing.T) {
		env := setupTestBookingService(t)
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusCancelled)
		testutil.CreateBooking(t, env.db, env.admin.ID, env.room.ID, "2025-03-11", "2025-03-13", models.BookingStatusPending)

		_, err := env.svc.UpdateBooking(ctx, b.ID, env.adminActor(), &UpdateBookingRequest{
			BookingStatus: strPtr(models.BookingStatusPending),
		})
		assert.ErrorIs(t, err, appErrors.ErrBookingConflict)
	})

	t.Run("管理员确认后发送通知", func(t *testing.T) {
		env := setupTestBookingService(t)
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)

		info, err := env.svc.UpdateBooking(ctx, b.ID, env.adminActor(), &UpdateBookingRequest{
			BookingStatus: strPtr(models.BookingStatusConfirmed),
		})
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, info.BookingStatus)

		env.notifier.Wait()
		msg := env.sms.GetLastMessage()
		require.NotNil(t, msg)
		assert.Equal(t, sms.TemplateBookingConfirmed, msg.Template)
	})

	t.Run("不存在", func(t *testing.T) {
		env := setupTestBookingService(t)
		_, err := env.svc.UpdateBooking(ctx, 99999, env.adminActor(), &UpdateBookingRequest{})
		assert.ErrorIs(t, err, appErrors.ErrBookingNotFound)
	})
}

// ==================== Cancel / Confirm / Delete 测试 ====================

func TestBookingService_CancelBooking(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()

	t.Run("取消待支付预订", func(t *testing.T) {
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)

		info, err := env.svc.CancelBooking(ctx, b.ID, env.guestActor())
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusCancelled, info.BookingStatus)

		env.notifier.Wait()
		published := env.publisher.Published()
		require.NotEmpty(t, published)
		assert.Contains(t, string(published[len(published)-1].Payload), mqtt.EventBookingCancelled)

		// 取消后区间释放
		result, err := env.svc.CheckAvailability(ctx, env.room.ID, "2025-03-10", "2025-03-12")
		require.NoError(t, err)
		assert.True(t, result.Available)
	})

	t.Run("已确认的预订不能取消", func(t *testing.T) {
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-04-10", "2025-04-12", models.BookingStatusConfirmed)
		_, err := env.svc.CancelBooking(ctx, b.ID, env.guestActor())
		assert.ErrorIs(t, err, appErrors.ErrBookingStatusError)
	})

	t.Run("他人无权取消", func(t *testing.T) {
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-05-10", "2025-05-12", models.BookingStatusPending)
		_, err := env.svc.CancelBooking(ctx, b.ID, Actor{UserID: env.admin.ID, Role: models.RoleOwner})
		assert.ErrorIs(t, err, appErrors.ErrPermissionDenied)
	})
}

func TestBookingService_ConfirmBooking(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()

	t.Run("确认待支付预订", func(t *testing.T) {
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)
		info, err := env.svc.ConfirmBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, info.BookingStatus)

		env.notifier.Wait()
		assert.Len(t, env.sms.Messages(), 1)
	})

	t.Run("重复确认为空操作", func(t *testing.T) {
		env.sms.Clear()
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-04-10", "2025-04-12", models.BookingStatusConfirmed)
		info, err := env.svc.ConfirmBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, info.BookingStatus)

		env.notifier.Wait()
		assert.Empty(t, env.sms.Messages())
	})

	t.Run("已取消的预订不能确认", func(t *testing.T) {
		b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-05-10", "2025-05-12", models.BookingStatusCancelled)
		_, err := env.svc.ConfirmBooking(ctx, b.ID)
		assert.ErrorIs(t, err, appErrors.ErrBookingStatusError)
	})

	t.Run("不存在", func(t *testing.T) {
		_, err := env.svc.ConfirmBooking(ctx, 99999)
		assert.ErrorIs(t, err, appErrors.ErrBookingNotFound)
	})
}

func TestBookingService_DeleteBooking(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()
	b := testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-10", "2025-03-12", models.BookingStatusPending)
	testutil.CreatePayment(t, env.db, b.ID, "pi_delete", models.PaymentStatusPending)

	require.NoError(t, env.svc.DeleteBooking(ctx, b.ID))

	var payments int64
	env.db.Model(&models.Payment{}).Where("booking_id = ?", b.ID).Count(&payments)
	assert.Zero(t, payments)

	assert.ErrorIs(t, env.svc.DeleteBooking(ctx, b.ID), appErrors.ErrBookingNotFound)
}

// ==================== List 测试 ====================

func TestBookingService_List(t *testing.T) {
	env := setupTestBookingService(t)
	ctx := context.Background()
	other := testutil.CreateUser(t, env.db, models.RoleUser)

	testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-01", "2025-03-02", models.BookingStatusPending)
	testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-02", "2025-03-03", models.BookingStatusConfirmed)
	testutil.CreateBooking(t, env.db, env.guest.ID, env.room.ID, "2025-03-03", "2025-03-04", models.BookingStatusConfirmed)
	testutil.CreateBooking(t, env.db, other.ID, env.room.ID, "2025-03-04", "2025-03-05", models.BookingStatusCancelled)

	t.Run("管理端按状态筛选", func(t *testing.T) {
		list, total, err := env.svc.ListBookings(ctx, 0, 10, &ListBookingsRequest{Status: models.BookingStatusConfirmed})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, list, 2)
	})

	t.Run("管理端按用户筛选", func(t *testing.T) {
		_, total, err := env.svc.ListBookings(ctx, 0, 10, &ListBookingsRequest{UserID: other.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("用户分页", func(t *testing.T) {
		list, total, err := env.svc.ListUserBookings(ctx, env.guest.ID, 0, 2, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		assert.Len(t, list, 2)
	})

	t.Run("非法状态", func(t *testing.T) {
		_, _, err := env.svc.ListUserBookings(ctx, env.guest.ID, 0, 10, "paid")
		assert.ErrorIs(t, err, appErrors.ErrInvalidParams)
	})
}
