package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// PaymentRepository 支付仓储
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓储
func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create 创建支付记录，transaction_id 唯一索引冲突时返回 gorm.ErrDuplicatedKey
func (r *PaymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	return conn(r.db, tx).WithContext(ctx).Omit("Booking").Create(payment).Error
}

// GetByID 根据 ID 获取支付记录
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).Preload("Booking").First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetByTransactionID 根据支付渠道流水号获取支付记录
func (r *PaymentRepository) GetByTransactionID(ctx context.Context, tx *gorm.DB, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	err := conn(r.db, tx).WithContext(ctx).Where("transaction_id = ?", transactionID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetForUpdate 按流水号获取支付记录（加锁）
func (r *PaymentRepository) GetForUpdate(ctx context.Context, tx *gorm.DB, transactionID string) (*models.Payment, error) {
	var payment models.Payment
	err := forUpdate(tx.WithContext(ctx)).Where("transaction_id = ?", transactionID).First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateFields 更新指定字段
func (r *PaymentRepository) UpdateFields(ctx context.Context, tx *gorm.DB, id int64, fields map[string]interface{}) error {
	return conn(r.db, tx).WithContext(ctx).Model(&models.Payment{}).Where("id = ?", id).Updates(fields).Error
}

// List 获取支付列表，user_id 按预订归属筛选
func (r *PaymentRepository) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Payment{})

	if bookingID, ok := filters["booking_id"].(int64); ok && bookingID > 0 {
		query = query.Where("booking_id = ?", bookingID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("payment_status = ?", status)
	}
	if userID, ok := filters["user_id"].(int64); ok && userID > 0 {
		query = query.Where("booking_id IN (?)",
			r.db.Model(&models.Booking{}).Select("id").Where("user_id = ?", userID))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&payments).Error; err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

// ListByBooking 获取预订的支付记录
func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		Find(&payments).Error
	return payments, err
}
