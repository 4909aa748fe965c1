package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// AnalyticsRepository 统计报表只读查询，复用 gorm 的连接池
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository 基于 gorm 连接创建统计仓储
func NewAnalyticsRepository(db *gorm.DB) (*AnalyticsRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	return &AnalyticsRepository{db: sqlx.NewDb(sqlDB, driverName(db))}, nil
}

// driverName 决定 sqlx 的占位符风格
func driverName(db *gorm.DB) string {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "pgx"
	}
	return "sqlite3"
}

// AmountAt 带时间的金额
type AmountAt struct {
	At     time.Time `db:"at"`
	Amount float64   `db:"amount"`
}

// RecentBooking 最近预订
type RecentBooking struct {
	ID            int64       `db:"id" json:"id"`
	UserID        int64       `db:"user_id" json:"user_id"`
	GuestName     string      `db:"guest_name" json:"guest_name"`
	Email         string      `db:"email" json:"email"`
	RoomID        int64       `db:"room_id" json:"room_id"`
	RoomType      string      `db:"room_type" json:"room_type"`
	CheckInDate   models.Date `db:"check_in_date" json:"check_in_date"`
	CheckOutDate  models.Date `db:"check_out_date" json:"check_out_date"`
	TotalAmount   float64     `db:"total_amount" json:"total_amount"`
	BookingStatus string      `db:"booking_status" json:"booking_status"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}

// TotalRevenue 已完成支付总额
func (r *AnalyticsRepository) TotalRevenue(ctx context.Context) (float64, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE payment_status = ?
	`
	var total float64
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(query), models.PaymentStatusCompleted); err != nil {
		return 0, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return total, nil
}

// Count 统计表行数，table 仅接受内部常量
func (r *AnalyticsRepository) Count(ctx context.Context, table string) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// CountOpenTickets 待处理工单数
func (r *AnalyticsRepository) CountOpenTickets(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM support_tickets WHERE status = ?`
	var count int64
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), models.TicketStatusOpen); err != nil {
		return 0, fmt.Errorf("failed to count open tickets: %w", err)
	}
	return count, nil
}

// CountUsersSince 指定时间后注册的用户数
func (r *AnalyticsRepository) CountUsersSince(ctx context.Context, since time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM users WHERE created_at >= ?`
	var count int64
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), since); err != nil {
		return 0, fmt.Errorf("failed to count new users: %w", err)
	}
	return count, nil
}

// CountOccupiedRooms 指定日期有已确认入住的房间数
func (r *AnalyticsRepository) CountOccupiedRooms(ctx context.Context, day models.Date) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT room_id)
		FROM bookings
		WHERE booking_status = ?
		  AND check_in_date <= ?
		  AND check_out_date > ?
	`
	var count int64
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), models.BookingStatusConfirmed, day, day); err != nil {
		return 0, fmt.Errorf("failed to count occupied rooms: %w", err)
	}
	return count, nil
}

// CompletedPaymentsSince 指定时间后的已完成支付
func (r *AnalyticsRepository) CompletedPaymentsSince(ctx context.Context, since time.Time) ([]AmountAt, error) {
	query := `
		SELECT payment_date AS at, amount
		FROM payments
		WHERE payment_status = ?
		  AND payment_date IS NOT NULL
		  AND payment_date >= ?
		ORDER BY payment_date ASC
	`
	var rows []AmountAt
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), models.PaymentStatusCompleted, since); err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	return rows, nil
}

// BookingsSince 指定时间后创建的预订，金额为预订总额
func (r *AnalyticsRepository) BookingsSince(ctx context.Context, since time.Time) ([]AmountAt, error) {
	query := `
		SELECT created_at AS at, total_amount AS amount
		FROM bookings
		WHERE created_at >= ?
		ORDER BY created_at ASC
	`
	var rows []AmountAt
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), since); err != nil {
		return nil, fmt.Errorf("failed to query bookings: %w", err)
	}
	return rows, nil
}

// RecentBookings 最近的预订，带住客与房型
func (r *AnalyticsRepository) RecentBookings(ctx context.Context, limit int) ([]RecentBooking, error) {
	query := `
		SELECT
			b.id,
			b.user_id,
			u.first_name || ' ' || u.last_name AS guest_name,
			u.email,
			b.room_id,
			rm.room_type,
			b.check_in_date,
			b.check_out_date,
			b.total_amount,
			b.booking_status,
			b.created_at
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN rooms rm ON rm.id = b.room_id
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT ?
	`
	var rows []RecentBooking
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), limit); err != nil {
		return nil, fmt.Errorf("failed to query recent bookings: %w", err)
	}
	return rows, nil
}

// NewUser 新注册用户
type NewUser struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"joined"`
}

// NewUsers 最近注册的用户
func (r *AnalyticsRepository) NewUsers(ctx context.Context, limit int) ([]NewUser, error) {
	query := `
		SELECT id, first_name || ' ' || last_name AS name, email, created_at
		FROM users
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	var rows []NewUser
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), limit); err != nil {
		return nil, fmt.Errorf("failed to query new users: %w", err)
	}
	return rows, nil
}
