package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// RoomRepository 房间仓储
type RoomRepository struct {
	db *gorm.DB
}

// NewRoomRepository 创建房间仓储
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create 创建房间
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetByID 根据 ID 获取房间
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByIDWithHotel 根据 ID 获取房间（包含酒店信息）
func (r *RoomRepository) GetByIDWithHotel(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Preload("Hotel").
		First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetForUpdate 获取房间（加锁），同一房间的并发下单在此串行化
func (r *RoomRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*models.Room, error) {
	var room models.Room
	err := forUpdate(tx.WithContext(ctx)).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Update 更新房间
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Save(room).Error
}

// UpdateFields 更新指定字段
func (r *RoomRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", id).Updates(fields).Error
}

// Delete 删除房间
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entity_id = ? AND entity_type = ?", id, models.AmenityEntityRoom).
			Delete(&models.EntityAmenity{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Room{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List 获取房间列表
func (r *RoomRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Room, int64, error) {
	var rooms []*models.Room
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Room{})

	if hotelID, ok := filters["hotel_id"].(int64); ok && hotelID > 0 {
		query = query.Where("hotel_id = ?", hotelID)
	}
	if roomType, ok := filters["room_type"].(string); ok && roomType != "" {
		query = query.Where("room_type = ?", roomType)
	}
	if available, ok := filters["is_available"].(bool); ok {
		query = query.Where("is_available = ?", available)
	}
	if capacity, ok := filters["min_capacity"].(int); ok && capacity > 0 {
		query = query.Where("capacity >= ?", capacity)
	}
	if maxPrice, ok := filters["max_price"].(float64); ok && maxPrice > 0 {
		query = query.Where("price_per_night <= ?", maxPrice)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Order("hotel_id ASC, price_per_night ASC, id ASC").
		Offset(offset).Limit(limit).
		Find(&rooms).Error; err != nil {
		return nil, 0, err
	}

	return rooms, total, nil
}

// ListByHotel 获取酒店下全部房间
func (r *RoomRepository) ListByHotel(ctx context.Context, hotelID int64) ([]*models.Room, error) {
	var rooms []*models.Room
	err := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("price_per_night ASC, id ASC").
		Find(&rooms).Error
	return rooms, err
}

// SearchAvailable 查询区间内可预订的房间：开放预订、容量满足且无未取消的重叠预订
func (r *RoomRepository) SearchAvailable(ctx context.Context, checkIn, checkOut models.Date, minCapacity int, hotelID int64) ([]*models.Room, error) {
	var rooms []*models.Room

	occupied := r.db.Model(&models.Booking{}).
		Select("1").
		Where("bookings.room_id = rooms.id").
		Where("bookings.check_in_date < ? AND bookings.check_out_date > ?", checkOut, checkIn).
		Where("bookings.booking_status <> ?", models.BookingStatusCancelled)

	query := r.db.WithContext(ctx).
		Preload("Hotel").
		Where("rooms.is_available = ?", true).
		Where("rooms.capacity >= ?", minCapacity).
		Where("NOT EXISTS (?)", occupied)
	if hotelID > 0 {
		query = query.Where("rooms.hotel_id = ?", hotelID)
	}

	err := query.Order("rooms.price_per_night ASC, rooms.id ASC").Find(&rooms).Error
	return rooms, err
}

// CountByHotel 统计酒店房间数
func (r *RoomRepository) CountByHotel(ctx context.Context, hotelID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("hotel_id = ?", hotelID).
		Count(&count).Error
	return count, err
}
