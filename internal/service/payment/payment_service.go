// Package payment 提供支付会话、支付回调与对账服务
package payment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/repository"
	"github.com/dumeirei/hotel-booking-backend/internal/service/notify"
	stripepkg "github.com/dumeirei/hotel-booking-backend/pkg/stripe"
)

// Gateway 支付渠道
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p *stripepkg.CheckoutParams) (*stripepkg.CheckoutSession, error)
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

// RetryPolicy 支付记录查找的重试策略
type RetryPolicy struct {
	Attempts   int
	Delay      time.Duration
	Multiplier float64
	MaxDelay   time.Duration
}

// Options 支付服务配置
type Options struct {
	Currency    string
	FrontendURL string
	Retry       RetryPolicy
	EventTTL    time.Duration

	// 对账任务
	BatchSize   int
	MaxAttempts int
	BaseBackoff time.Duration
}

// OptionsFromConfig 由配置构造
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Currency:    cfg.Stripe.Currency,
		FrontendURL: cfg.Stripe.FrontendURL,
		Retry: RetryPolicy{
			Attempts:   cfg.Webhook.RetryAttempts,
			Delay:      cfg.Webhook.RetryDelay(),
			Multiplier: cfg.Webhook.RetryMultiplier,
			MaxDelay:   cfg.Webhook.RetryMaxDelay(),
		},
		EventTTL:    cfg.Webhook.EventTTL(),
		BatchSize:   cfg.Reconciliation.BatchSize,
		MaxAttempts: cfg.Reconciliation.MaxAttempts,
		BaseBackoff: time.Duration(cfg.Reconciliation.BaseBackoffSec) * time.Second,
	}
}

func (o *Options) normalize() {
	if o.Currency == "" {
		o.Currency = "usd"
	}
	if o.Retry.Attempts < 1 {
		o.Retry.Attempts = 3
	}
	if o.Retry.Delay <= 0 {
		o.Retry.Delay = time.Second
	}
	if o.Retry.Multiplier < 1 {
		o.Retry.Multiplier = 2
	}
	if o.Retry.MaxDelay <= 0 {
		o.Retry.MaxDelay = 4 * time.Second
	}
	if o.EventTTL <= 0 {
		o.EventTTL = 72 * time.Hour
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 10
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = 30 * time.Second
	}
}

// PaymentService 支付服务
type PaymentService struct {
	db          *gorm.DB
	bookingRepo *repository.BookingRepository
	paymentRepo *repository.PaymentRepository
	reconRepo   *repository.ReconciliationRepository
	gateway     Gateway
	cache       *cache.Store
	notifier    *notify.Notifier
	metrics     *metrics.Metrics
	opts        Options
}

// NewPaymentService 创建支付服务
func NewPaymentService(
	db *gorm.DB,
	bookingRepo *repository.BookingRepository,
	paymentRepo *repository.PaymentRepository,
	reconRepo *repository.ReconciliationRepository,
	gateway Gateway,
	store *cache.Store,
	notifier *notify.Notifier,
	m *metrics.Metrics,
	opts Options,
) *PaymentService {
	opts.normalize()
	return &PaymentService{
		db:          db,
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		reconRepo:   reconRepo,
		gateway:     gateway,
		cache:       store,
		notifier:    notifier,
		metrics:     m,
		opts:        opts,
	}
}

// CheckoutRequest 创建支付会话请求，Amount 缺省为预订总额
type CheckoutRequest struct {
	BookingID int64    `json:"booking_id" binding:"required,min=1"`
	Amount    *float64 `json:"amount"`
}

// CheckoutResponse 支付会话
type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// CreateCheckoutSession 为待支付预订创建托管收银台会话
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, userID int64, isAdmin bool, req *CheckoutRequest) (*CheckoutResponse, error) {
	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrBookingNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if !isAdmin && booking.UserID != userID {
		return nil, errors.ErrPermissionDenied
	}
	if booking.BookingStatus != models.BookingStatusPending {
		return nil, errors.ErrBookingNotPayable
	}

	amount := booking.TotalAmount
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount <= 0 {
		return nil, errors.ErrPaymentAmountInvalid
	}
	if s.gateway == nil {
		return nil, errors.ErrCheckoutSessionFail.WithMessage("支付渠道未配置")
	}

	frontend := strings.TrimRight(s.opts.FrontendURL, "/")
	session, err := s.gateway.CreateCheckoutSession(ctx, &stripepkg.CheckoutParams{
		BookingID:   booking.ID,
		Amount:      amount,
		Currency:    s.opts.Currency,
		ProductName: "Booking Payment",
		Description: fmt.Sprintf("Booking #%d", booking.ID),
		SuccessURL:  frontend + "/user/payment/payment-success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   frontend + "/user/payment/payment-cancelled",
	})
	if err != nil {
		logger.Error("create checkout session failed", logger.BookingID(booking.ID), logger.UserID(userID), zap.Error(err))
		return nil, errors.ErrCheckoutSessionFail.WithError(err)
	}

	logger.Info("checkout session created", logger.BookingID(booking.ID), logger.UserID(userID))
	return &CheckoutResponse{URL: session.URL, SessionID: session.ID}, nil
}

// ListPaymentsRequest 支付列表筛选
type ListPaymentsRequest struct {
	BookingID int64  `form:"booking_id" binding:"omitempty,min=1"`
	Status    string `form:"status" binding:"omitempty,oneof=Pending Completed Failed"`
}

// ListPayments 支付列表
func (s *PaymentService) ListPayments(ctx context.Context, offset, limit int, req *ListPaymentsRequest) ([]*models.Payment, int64, error) {
	filters := map[string]interface{}{
		"booking_id": req.BookingID,
		"status":     req.Status,
	}
	payments, total, err := s.paymentRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return payments, total, nil
}

// ListUserPayments 用户自己预订下的支付记录
func (s *PaymentService) ListUserPayments(ctx context.Context, userID int64, offset, limit int, req *ListPaymentsRequest) ([]*models.Payment, int64, error) {
	filters := map[string]interface{}{
		"user_id":    userID,
		"booking_id": req.BookingID,
		"status":     req.Status,
	}
	payments, total, err := s.paymentRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, errors.ErrDatabaseError.WithError(err)
	}
	return payments, total, nil
}

// GetPayment 支付详情
func (s *PaymentService) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	return payment, nil
}
