package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// AmenityRepository 设施仓储
type AmenityRepository struct {
	db *gorm.DB
}

// NewAmenityRepository 创建设施仓储
func NewAmenityRepository(db *gorm.DB) *AmenityRepository {
	return &AmenityRepository{db: db}
}

// Create 创建设施
func (r *AmenityRepository) Create(ctx context.Context, amenity *models.Amenity) error {
	return r.db.WithContext(ctx).Create(amenity).Error
}

// GetByID 根据 ID 获取设施
func (r *AmenityRepository) GetByID(ctx context.Context, id int64) (*models.Amenity, error) {
	var amenity models.Amenity
	err := r.db.WithContext(ctx).First(&amenity, id).Error
	if err != nil {
		return nil, err
	}
	return &amenity, nil
}

// Update 更新设施
func (r *AmenityRepository) Update(ctx context.Context, amenity *models.Amenity) error {
	return r.db.WithContext(ctx).Save(amenity).Error
}

// Delete 删除设施及其全部关联
func (r *AmenityRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("amenity_id = ?", id).Delete(&models.EntityAmenity{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Amenity{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List 获取设施列表
func (r *AmenityRepository) List(ctx context.Context, offset, limit int, name string) ([]*models.Amenity, int64, error) {
	var amenities []*models.Amenity
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Amenity{})
	if name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&amenities).Error; err != nil {
		return nil, 0, err
	}
	return amenities, total, nil
}

// Link 关联设施到房间或酒店
func (r *AmenityRepository) Link(ctx context.Context, link *models.EntityAmenity) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// Unlink 解除关联
func (r *AmenityRepository) Unlink(ctx context.Context, amenityID, entityID int64, entityType string) error {
	result := r.db.WithContext(ctx).
		Where("amenity_id = ? AND entity_id = ? AND entity_type = ?", amenityID, entityID, entityType).
		Delete(&models.EntityAmenity{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByEntity 获取房间或酒店的设施
func (r *AmenityRepository) ListByEntity(ctx context.Context, entityType string, entityID int64) ([]*models.Amenity, error) {
	var amenities []*models.Amenity
	err := r.db.WithContext(ctx).
		Joins("JOIN entity_amenities ON entity_amenities.amenity_id = amenities.id").
		Where("entity_amenities.entity_type = ? AND entity_amenities.entity_id = ?", entityType, entityID).
		Order("amenities.name ASC").
		Find(&amenities).Error
	return amenities, err
}

// ListByEntities 批量获取多个实体的设施，按实体 ID 分组
func (r *AmenityRepository) ListByEntities(ctx context.Context, entityType string, entityIDs []int64) (map[int64][]*models.Amenity, error) {
	result := make(map[int64][]*models.Amenity, len(entityIDs))
	if len(entityIDs) == 0 {
		return result, nil
	}

	var links []*models.EntityAmenity
	err := r.db.WithContext(ctx).
		Preload("Amenity").
		Where("entity_type = ? AND entity_id IN ?", entityType, entityIDs).
		Order("id ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		if link.Amenity != nil {
			result[link.EntityID] = append(result[link.EntityID], link.Amenity)
		}
	}
	return result, nil
}
