// Package analytics 提供管理端统计服务
package analytics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/utils"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
)

const (
	// months 统计的月份数
	months = 12
	// recentLimit 最近预订与新用户条数
	recentLimit = 5
	// newUserWindow 新用户统计窗口
	newUserWindow = 30 * 24 * time.Hour
	// cacheTTL 统计结果缓存时间
	cacheTTL = time.Minute
)

// AnalyticsService 统计服务
type AnalyticsService struct {
	repo  *repository.AnalyticsRepository
	cache *cache.Store
	now   func() time.Time
}

// NewAnalyticsService 创建统计服务
func NewAnalyticsService(repo *repository.AnalyticsRepository, store *cache.Store) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: store, now: time.Now}
}

// MonthlyAmount 月度金额
type MonthlyAmount struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// MonthlyCount 月度数量
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// Summary 统计概要
type Summary struct {
	TotalRevenue            float64         `json:"total_revenue"`
	TotalUsers              int64           `json:"total_users"`
	TotalBookings           int64           `json:"total_bookings"`
	OpenTickets             int64           `json:"open_tickets"`
	MonthlySpending         []MonthlyAmount `json:"monthly_spending"`
	MonthlyBookingFrequency []MonthlyCount  `json:"monthly_booking_frequency"`
}

// Stats 仪表盘总数
type Stats struct {
	TotalUsers    int64   `json:"total_users"`
	TotalBookings int64   `json:"total_bookings"`
	TotalHotels   int64   `json:"total_hotels"`
	TotalRooms    int64   `json:"total_rooms"`
	TotalRevenue  float64 `json:"total_revenue"`
	NewUsers      int64   `json:"new_users_30d"`
}

// Occupancy 今日入住
type Occupancy struct {
	Date      string `json:"date"`
	Occupied  int64  `json:"occupied"`
	Available int64  `json:"available"`
}

// Dashboard 管理端仪表盘
type Dashboard struct {
	Stats           Stats                      `json:"stats"`
	MonthlyBookings []MonthlyCount             `json:"monthly_bookings"`
	RoomOccupancy   Occupancy                  `json:"room_occupancy"`
	RecentBookings  []repository.RecentBooking `json:"recent_bookings"`
	NewUsers        []repository.NewUser       `json:"new_users"`
}

// GetSummary 收入、用户、预订与工单概要，含最近 12 个月趋势
func (s *AnalyticsService) GetSummary(ctx context.Context) (*Summary, error) {
	key := cache.BuildKey(cache.KeyPrefixAnalytics, "summary")
	var summary Summary
	if s.fromCache(ctx, key, &summary) {
		return &summary, nil
	}

	now := s.now()
	since := monthStart(now).AddDate(0, -(months - 1), 0)

	var (
		payments []repository.AmountAt
		bookings []repository.AmountAt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary.TotalRevenue, err = s.repo.TotalRevenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		summary.TotalUsers, err = s.repo.Count(gctx, "users")
		return err
	})
	g.Go(func() (err error) {
		summary.TotalBookings, err = s.repo.Count(gctx, "bookings")
		return err
	})
	g.Go(func() (err error) {
		summary.OpenTickets, err = s.repo.CountOpenTickets(gctx)
		return err
	})
	g.Go(func() (err error) {
		payments, err = s.repo.CompletedPaymentsSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		bookings, err = s.repo.BookingsSince(gctx, since)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	summary.TotalRevenue = utils.RoundMoney(summary.TotalRevenue)
	summary.MonthlySpending = sumByMonth(payments, now)
	summary.MonthlyBookingFrequency = countByMonth(bookings, now)

	s.toCache(ctx, key, &summary)
	return &summary, nil
}

// GetDashboard 仪表盘：总数、月度预订、今日入住、最近预订与新用户
func (s *AnalyticsService) GetDashboard(ctx context.Context) (*Dashboard, error) {
	key := cache.BuildKey(cache.KeyPrefixAnalytics, "dashboard")
	var dash Dashboard
	if s.fromCache(ctx, key, &dash) {
		return &dash, nil
	}

	now := s.now()
	today := models.NewDate(now.UTC().Year(), now.UTC().Month(), now.UTC().Day())
	since := monthStart(now).AddDate(0, -(months - 1), 0)

	var (
		bookings []repository.AmountAt
		occupied int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		dash.Stats.TotalUsers, err = s.repo.Count(gctx, "users")
		return err
	})
	g.Go(func() (err error) {
		dash.Stats.TotalBookings, err = s.repo.Count(gctx, "bookings")
		return err
	})
	g.Go(func() (err error) {
		dash.Stats.TotalHotels, err = s.repo.Count(gctx, "hotels")
		return err
	})
	g.Go(func() (err error) {
		dash.Stats.TotalRooms, err = s.repo.Count(gctx, "rooms")
		return err
	})
	g.Go(func() (err error) {
		dash.Stats.TotalRevenue, err = s.repo.TotalRevenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		dash.Stats.NewUsers, err = s.repo.CountUsersSince(gctx, now.Add(-newUserWindow))
		return err
	})
	g.Go(func() (err error) {
		bookings, err = s.repo.BookingsSince(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		occupied, err = s.repo.CountOccupiedRooms(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		dash.RecentBookings, err = s.repo.RecentBookings(gctx, recentLimit)
		return err
	})
	g.Go(func() (err error) {
		dash.NewUsers, err = s.repo.NewUsers(gctx, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}

	dash.Stats.TotalRevenue = utils.RoundMoney(dash.Stats.TotalRevenue)
	dash.MonthlyBookings = countByMonth(bookings, now)
	dash.RoomOccupancy = Occupancy{
		Date:      today.String(),
		Occupied:  occupied,
		Available: max(dash.Stats.TotalRooms-occupied, 0),
	}
	if dash.RecentBookings == nil {
		dash.RecentBookings = []repository.RecentBooking{}
	}
	if dash.NewUsers == nil {
		dash.NewUsers = []repository.NewUser{}
	}

	s.toCache(ctx, key, &dash)
	return &dash, nil
}

func (s *AnalyticsService) fromCache(ctx context.Context, key string, dest interface{}) bool {
	hit, err := s.cache.GetJSON(ctx, key, dest)
	if err != nil {
		logger.Warn("analytics cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (s *AnalyticsService) toCache(ctx context.Context, key string, value interface{}) {
	if err := s.cache.SetJSON(ctx, key, value, cacheTTL); err != nil {
		logger.Warn("analytics cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// monthStart 当月第一天（UTC）
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// monthKeys 最近 12 个月，由新到旧
func monthKeys(now time.Time) []string {
	start := monthStart(now)
	keys := make([]string, months)
	for i := 0; i < months; i++ {
		keys[i] = start.AddDate(0, -i, 0).Format("2006-01")
	}
	return keys
}

// sumByMonth 按月汇总金额，没有数据的月份为 0
func sumByMonth(rows []repository.AmountAt, now time.Time) []MonthlyAmount {
	totals := make(map[string]float64, months)
	for _, r := range rows {
		totals[r.At.UTC().Format("2006-01")] += r.Amount
	}
	keys := monthKeys(now)
	out := make([]MonthlyAmount, len(keys))
	for i, k := range keys {
		out[i] = MonthlyAmount{Month: k, Total: utils.RoundMoney(totals[k])}
	}
	return out
}

// countByMonth 按月计数
func countByMonth(rows []repository.AmountAt, now time.Time) []MonthlyCount {
	counts := make(map[string]int64, months)
	for _, r := range rows {
		counts[r.At.UTC().Format("2006-01")]++
	}
	keys := monthKeys(now)
	out := make([]MonthlyCount, len(keys))
	for i, k := range keys {
		out[i] = MonthlyCount{Month: k, Count: counts[k]}
	}
	return out
}
