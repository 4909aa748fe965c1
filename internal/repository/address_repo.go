package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// AddressRepository 地址仓储
type AddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository 创建地址仓储
func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// Create 创建地址
func (r *AddressRepository) Create(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

// GetByID 根据 ID 获取地址
func (r *AddressRepository) GetByID(ctx context.Context, id int64) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).First(&address, id).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// Update 更新地址
func (r *AddressRepository) Update(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Save(address).Error
}

// Delete 删除地址
func (r *AddressRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Address{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByEntity 获取用户或酒店的地址
func (r *AddressRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*models.Address, error) {
	var addresses []*models.Address
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("id ASC").
		Find(&addresses).Error
	return addresses, err
}

// List 获取地址列表
func (r *AddressRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Address, int64, error) {
	var addresses []*models.Address
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Address{})

	if entityType, ok := filters["entity_type"].(string); ok && entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID, ok := filters["entity_id"].(int64); ok && entityID > 0 {
		query = query.Where("entity_id = ?", entityID)
	}
	if city, ok := filters["city"].(string); ok && city != "" {
		query = query.Where("city = ?", city)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&addresses).Error; err != nil {
		return nil, 0, err
	}

	return addresses, total, nil
}
