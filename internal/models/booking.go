package models

import (
	"time"
)

// Booking 预订模型，[CheckInDate, CheckOutDate) 半开区间
type Booking struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        int64     `gorm:"index;not null" json:"user_id"`
	RoomID        int64     `gorm:"index:idx_bookings_room_dates;not null" json:"room_id"`
	CheckInDate   Date      `gorm:"index:idx_bookings_room_dates;not null" json:"check_in_date"`
	CheckOutDate  Date      `gorm:"index:idx_bookings_room_dates;not null" json:"check_out_date"`
	TotalAmount   float64   `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	BookingStatus string    `gorm:"type:varchar(16);not null;default:Pending;index" json:"booking_status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Room     *Room     `gorm:"foreignKey:RoomID" json:"room,omitempty"`
	Payments []Payment `gorm:"foreignKey:BookingID" json:"payments,omitempty"`
}

// TableName 表名
func (Booking) TableName() string {
	return "bookings"
}

// Nights 入住晚数
func (b *Booking) Nights() int {
	return b.CheckInDate.NightsUntil(b.CheckOutDate)
}

// BookingStatus 预订状态
const (
	BookingStatusPending   = "Pending"   // 待支付
	BookingStatusConfirmed = "Confirmed" // 已确认
	BookingStatusCancelled = "Cancelled" // 已取消
)

// IsValidBookingStatus 是否为合法预订状态
func IsValidBookingStatus(status string) bool {
	switch status {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}
