package payment

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

// 对账结果指标
const (
	reconcileResolved  = "resolved"
	reconcileRetry     = "retry"
	reconcileAbandoned = "abandoned"
)

// maxReconcileBackoff 单条记录两次尝试的最大间隔
const maxReconcileBackoff = time.Hour

// ReconcileStats 一轮对账统计
type ReconcileStats struct {
	Processed int
	Resolved  int
	Retried   int
	Abandoned int
}

// ReconcilePending 处理到期的待对账记录：支付记录已存在则补记成功，否则退避重试，超过上限后放弃并告警
func (s *PaymentService) ReconcilePending(ctx context.Context, now time.Time) (*ReconcileStats, error) {
	recs, err := s.reconRepo.ListDue(ctx, now, s.opts.BatchSize)
	if err != nil {
		return nil, err
	}

	stats := &ReconcileStats{}
	for _, rec := range recs {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Processed++
		s.reconcileOne(ctx, rec, now, stats)
	}
	return stats, nil
}

func (s *PaymentService) reconcileOne(ctx context.Context, rec *models.PaymentReconciliation, now time.Time, stats *ReconcileStats) {
	err := s.applySuccess(ctx, rec.TransactionID)
	if err == nil {
		stats.Resolved++
		s.metrics.RecordReconciliation(reconcileResolved)
		logger.Info("payment reconciled", logger.TransactionID(rec.TransactionID), logger.EventID(rec.EventID))
		return
	}

	lastErr := err.Error()
	if err == gorm.ErrRecordNotFound {
		lastErr = "payment not recorded"
	}
	attempts := rec.Attempts + 1

	if attempts >= s.opts.MaxAttempts {
		if markErr := s.reconRepo.MarkAbandoned(ctx, rec.ID, attempts, lastErr); markErr != nil {
			logger.Error("mark reconciliation abandoned failed", logger.TransactionID(rec.TransactionID), zap.Error(markErr))
			return
		}
		stats.Abandoned++
		s.metrics.RecordReconciliation(reconcileAbandoned)
		logger.Error("payment reconciliation abandoned",
			logger.TransactionID(rec.TransactionID),
			logger.EventID(rec.EventID),
			zap.Int("attempts", attempts),
			zap.String("last_error", lastErr),
		)
		s.notifier.ReconciliationAbandoned(ctx, rec.TransactionID, attempts)
		return
	}

	next := now.Add(s.reconcileBackoff(attempts))
	if markErr := s.reconRepo.RecordAttempt(ctx, rec.ID, attempts, lastErr, next); markErr != nil {
		logger.Error("record reconciliation attempt failed", logger.TransactionID(rec.TransactionID), zap.Error(markErr))
		return
	}
	stats.Retried++
	s.metrics.RecordReconciliation(reconcileRetry)
	logger.Warn("payment still not reconciled",
		logger.TransactionID(rec.TransactionID),
		zap.Int("attempts", attempts),
		zap.Time("next_attempt_at", next),
	)
}

// reconcileBackoff 第 n 次失败后的等待时间，BaseBackoff 起按 2 倍增长
func (s *PaymentService) reconcileBackoff(attempts int) time.Duration {
	d := s.opts.BaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxReconcileBackoff {
			return maxReconcileBackoff
		}
	}
	return d
}

// RefreshBacklog 导出待对账数量
func (s *PaymentService) RefreshBacklog(ctx context.Context) (int64, error) {
	count, err := s.reconRepo.CountPending(ctx)
	if err != nil {
		return 0, err
	}
	s.metrics.SetReconciliationBacklog(count)
	return count, nil
}
