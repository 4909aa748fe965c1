package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

var seq int64

func next() int64 {
	return atomic.AddInt64(&seq, 1)
}

// CreateUser 创建用户，密码为固定哈希
func CreateUser(t testing.TB, db *gorm.DB, role string) *models.User {
	t.Helper()
	n := next()
	phone := fmt.Sprintf("+1415555%04d", n%10000)
	u := &models.User{
		FirstName:    "Guest",
		LastName:     fmt.Sprintf("No.%d", n),
		Email:        fmt.Sprintf("guest%d@example.com", n),
		Password:     "$2a$04$0000000000000000000000000000000000000000000000000000",
		ContactPhone: &phone,
		Role:         role,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

// CreateHotel 创建酒店
func CreateHotel(t testing.TB, db *gorm.DB) *models.Hotel {
	t.Helper()
	h := &models.Hotel{
		Name:     fmt.Sprintf("Hotel %d", next()),
		Location: "Nairobi",
	}
	require.NoError(t, db.Create(h).Error)
	return h
}

// CreateRoom 创建可预订房间
func CreateRoom(t testing.TB, db *gorm.DB, hotelID int64, price float64, capacity int) *models.Room {
	t.Helper()
	r := &models.Room{
		HotelID:       hotelID,
		RoomType:      "Deluxe",
		PricePerNight: price,
		Capacity:      capacity,
		IsAvailable:   true,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

// CreateBooking 直接落库一条预订
func CreateBooking(t testing.TB, db *gorm.DB, userID, roomID int64, checkIn, checkOut, status string) *models.Booking {
	t.Helper()
	in, err := models.ParseDate(checkIn)
	require.NoError(t, err)
	out, err := models.ParseDate(checkOut)
	require.NoError(t, err)

	b := &models.Booking{
		UserID:        userID,
		RoomID:        roomID,
		CheckInDate:   in,
		CheckOutDate:  out,
		TotalAmount:   100 * float64(in.NightsUntil(out)),
		BookingStatus: status,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

// CreatePayment 创建支付记录
func CreatePayment(t testing.TB, db *gorm.DB, bookingID int64, transactionID, status string) *models.Payment {
	t.Helper()
	method := models.PaymentMethodCard
	p := &models.Payment{
		BookingID:     bookingID,
		Amount:        200,
		PaymentStatus: status,
		PaymentMethod: &method,
		TransactionID: &transactionID,
	}
	if status == models.PaymentStatusCompleted {
		now := time.Now()
		p.PaymentDate = &now
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Date 解析日期，测试中使用
func Date(t testing.TB, s string) models.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return d
}
