// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-booking-backend/internal/common/database"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// BookingRepository 预订仓储
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预订仓储
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// conn 事务内使用 tx，否则使用仓储自身连接
func conn(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// forUpdate PostgreSQL 下追加 FOR UPDATE 行锁，sqlite 单写者无需加锁
func forUpdate(tx *gorm.DB) *gorm.DB {
	if database.IsPostgres(tx) {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// Create 创建预订
func (r *BookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return conn(r.db, tx).WithContext(ctx).Create(booking).Error
}

// GetByID 根据 ID 获取预订
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByIDWithDetails 获取预订（包含用户、房间、酒店与支付记录）
func (r *BookingRepository) GetByIDWithDetails(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Room").
		Preload("Room.Hotel").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetForUpdate 获取预订（加锁）
func (r *BookingRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := forUpdate(tx.WithContext(ctx)).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Update 更新预订
func (r *BookingRepository) Update(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return conn(r.db, tx).WithContext(ctx).Save(booking).Error
}

// UpdateStatus 更新预订状态，返回受影响行数
func (r *BookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id int64, status string) (int64, error) {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("booking_status", status)
	return result.RowsAffected, result.Error
}

// Delete 删除预订及其支付记录
func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Booking{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List 获取预订列表
func (r *BookingRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{})

	// 应用过滤条件
	if userID, ok := filters["user_id"].(int64); ok && userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if roomID, ok := filters["room_id"].(int64); ok && roomID > 0 {
		query = query.Where("room_id = ?", roomID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("booking_status = ?", status)
	}
	if from, ok := filters["check_in_from"].(models.Date); ok && !from.IsZero() {
		query = query.Where("check_in_date >= ?", from)
	}
	if to, ok := filters["check_in_to"].(models.Date); ok && !to.IsZero() {
		query = query.Where("check_in_date <= ?", to)
	}

	// 统计总数
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 查询列表
	if err := query.
		Preload("Room").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListByUser 获取用户的预订列表
func (r *BookingRepository) ListByUser(ctx context.Context, userID int64, offset, limit int, status string) ([]*models.Booking, int64, error) {
	filters := map[string]interface{}{
		"user_id": userID,
		"status":  status,
	}
	return r.List(ctx, offset, limit, filters)
}

// overlapping 与 [checkIn, checkOut) 相交且未取消的预订
func overlapping(db *gorm.DB, roomID int64, checkIn, checkOut models.Date) *gorm.DB {
	return db.Model(&models.Booking{}).
		Where("room_id = ?", roomID).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn).
		Where("booking_status <> ?", models.BookingStatusCancelled)
}

// HasOverlap 房间在区间内是否已有占用，excludeID 为修改预订时排除自身
func (r *BookingRepository) HasOverlap(ctx context.Context, tx *gorm.DB, roomID int64, checkIn, checkOut models.Date, excludeID int64) (bool, error) {
	var count int64
	query := overlapping(conn(r.db, tx).WithContext(ctx), roomID, checkIn, checkOut)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListOverlapping 房间在区间内的占用预订
func (r *BookingRepository) ListOverlapping(ctx context.Context, roomID int64, checkIn, checkOut models.Date) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := overlapping(r.db.WithContext(ctx), roomID, checkIn, checkOut).
		Order("check_in_date ASC").
		Find(&bookings).Error
	return bookings, err
}

// CountByUserAndStatus 统计用户指定状态的预订数
func (r *BookingRepository) CountByUserAndStatus(ctx context.Context, userID int64, statuses []string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("user_id = ?", userID).
		Where("booking_status IN ?", statuses).
		Count(&count).Error
	return count, err
}

// CountByRoom 统计房间上的预订数，删除房间前检查
func (r *BookingRepository) CountByRoom(ctx context.Context, roomID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	return count, err
}
