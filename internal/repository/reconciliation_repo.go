package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// ReconciliationRepository 待对账记录仓储
type ReconciliationRepository struct {
	db *gorm.DB
}

// NewReconciliationRepository 创建待对账记录仓储
func NewReconciliationRepository(db *gorm.DB) *ReconciliationRepository {
	return &ReconciliationRepository{db: db}
}

// CreateIfAbsent 按流水号落库一条待对账记录，已存在时保持原记录
func (r *ReconciliationRepository) CreateIfAbsent(ctx context.Context, rec *models.PaymentReconciliation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}},
			DoNothing: true,
		}).
		Create(rec).Error
}

// GetByTransactionID 根据流水号获取待对账记录
func (r *ReconciliationRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentReconciliation, error) {
	var rec models.PaymentReconciliation
	err := r.db.WithContext(ctx).Where("transaction_id = ?", transactionID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListDue 获取到期待处理的记录
func (r *ReconciliationRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*models.PaymentReconciliation, error) {
	var recs []*models.PaymentReconciliation
	err := r.db.WithContext(ctx).
		Where("status = ?", models.ReconciliationStatusPending).
		Where("next_attempt_at <= ?", now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

// MarkResolved 标记已对账，tx 非空时与支付状态变更同事务
func (r *ReconciliationRepository) MarkResolved(ctx context.Context, tx *gorm.DB, transactionID string, at time.Time) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.PaymentReconciliation{}).
		Where("transaction_id = ? AND status = ?", transactionID, models.ReconciliationStatusPending).
		Updates(map[string]interface{}{
			"status":      models.ReconciliationStatusResolved,
			"resolved_at": at,
		}).Error
}

// RecordAttempt 记录一次失败的对账尝试
func (r *ReconciliationRepository) RecordAttempt(ctx context.Context, id int64, attempts int, lastErr string, next time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentReconciliation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":        attempts,
			"last_error":      lastErr,
			"next_attempt_at": next,
		}).Error
}

// MarkAbandoned 超过最大尝试次数后放弃
func (r *ReconciliationRepository) MarkAbandoned(ctx context.Context, id int64, attempts int, lastErr string) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentReconciliation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.ReconciliationStatusAbandoned,
			"attempts":   attempts,
			"last_error": lastErr,
		}).Error
}

// CountPending 待对账数量
func (r *ReconciliationRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentReconciliation{}).
		Where("status = ?", models.ReconciliationStatusPending).
		Count(&count).Error
	return count, err
}
