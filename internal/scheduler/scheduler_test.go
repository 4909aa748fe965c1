package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	paymentService "github.com/dumeirei/hotel-booking-backend/internal/service/payment"
)

type fakeReconciler struct {
	rounds  atomic.Int32
	backlog atomic.Int32
	err     error
}

func (f *fakeReconciler) ReconcilePending(ctx context.Context, now time.Time) (*paymentService.ReconcileStats, error) {
	f.rounds.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &paymentService.ReconcileStats{Processed: 1, Resolved: 1}, nil
}

func (f *fakeReconciler) RefreshBacklog(ctx context.Context) (int64, error) {
	f.backlog.Add(1)
	return 0, nil
}

// ==================== Scheduler 测试 ====================

func TestScheduler_RunsImmediatelyAndOnInterval(t *testing.T) {
	s := NewScheduler()
	var calls atomic.Int32
	s.AddTask("count", 10*time.Millisecond, func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	s.Start()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	stopped := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, calls.Load())
}

func TestScheduler_SurvivesFailureAndPanic(t *testing.T) {
	s := NewScheduler()
	var calls atomic.Int32
	s.AddTask("flaky", 10*time.Millisecond, func(ctx context.Context) error {
		n := calls.Add(1)
		if n == 1 {
			panic("boom")
		}
		return errors.New("still failing")
	})
	s.Start()
	defer s.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
}

func TestScheduler_IgnoresNonPositiveInterval(t *testing.T) {
	s := NewScheduler()
	s.AddTask("never", 0, func(ctx context.Context) error { return nil })
	assert.Empty(t, s.Tasks())
}

// ==================== 任务测试 ====================

func TestSetupTasks(t *testing.T) {
	h := NewTaskHandler(&fakeReconciler{})

	t.Run("启用时注册两个任务", func(t *testing.T) {
		s := NewScheduler()
		SetupTasks(s, h, &config.ReconciliationConfig{Enabled: true, Interval: 30})
		require.Len(t, s.Tasks(), 2)
		assert.Equal(t, 30*time.Second, s.Tasks()[0].Interval)
		assert.Equal(t, time.Minute, s.Tasks()[1].Interval)
	})

	t.Run("禁用时不注册", func(t *testing.T) {
		s := NewScheduler()
		SetupTasks(s, h, &config.ReconciliationConfig{Enabled: false, Interval: 30})
		assert.Empty(t, s.Tasks())
	})
}

func TestTaskHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("对账与积压刷新", func(t *testing.T) {
		rec := &fakeReconciler{}
		h := NewTaskHandler(rec)
		require.NoError(t, h.ResolvePaymentReconciliations(ctx))
		require.NoError(t, h.RefreshBacklogMetrics(ctx))
		assert.Equal(t, int32(1), rec.rounds.Load())
		assert.Equal(t, int32(1), rec.backlog.Load())
	})

	t.Run("对账失败返回错误", func(t *testing.T) {
		h := NewTaskHandler(&fakeReconciler{err: errors.New("db down")})
		assert.Error(t, h.ResolvePaymentReconciliations(ctx))
	})
}
