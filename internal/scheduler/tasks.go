package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	paymentService "github.com/dumeirei/hotel-booking-backend/internal/service/payment"
)

// backlogInterval 积压指标刷新间隔
const backlogInterval = time.Minute

// Reconciler 对账能力
type Reconciler interface {
	ReconcilePending(ctx context.Context, now time.Time) (*paymentService.ReconcileStats, error)
	RefreshBacklog(ctx context.Context) (int64, error)
}

// TaskHandler 任务处理器
type TaskHandler struct {
	reconciler Reconciler
	now        func() time.Time
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(reconciler Reconciler) *TaskHandler {
	return &TaskHandler{
		reconciler: reconciler,
		now:        time.Now,
	}
}

// ResolvePaymentReconciliations 处理到期的待对账支付
func (h *TaskHandler) ResolvePaymentReconciliations(ctx context.Context) error {
	stats, err := h.reconciler.ReconcilePending(ctx, h.now())
	if err != nil {
		return err
	}
	if stats.Processed > 0 {
		logger.Info("payment reconciliation round",
			zap.Int("processed", stats.Processed),
			zap.Int("resolved", stats.Resolved),
			zap.Int("retried", stats.Retried),
			zap.Int("abandoned", stats.Abandoned),
		)
	}
	return nil
}

// RefreshBacklogMetrics 导出待对账积压数
func (h *TaskHandler) RefreshBacklogMetrics(ctx context.Context) error {
	_, err := h.reconciler.RefreshBacklog(ctx)
	return err
}

// SetupTasks 设置所有任务
func SetupTasks(scheduler *Scheduler, handler *TaskHandler, cfg *config.ReconciliationConfig) {
	if !cfg.Enabled {
		logger.Warn("payment reconciliation disabled")
		return
	}

	scheduler.AddTask("ResolvePaymentReconciliations", cfg.IntervalDuration(), handler.ResolvePaymentReconciliations)
	scheduler.AddTask("RefreshBacklogMetrics", backlogInterval, handler.RefreshBacklogMetrics)
}
