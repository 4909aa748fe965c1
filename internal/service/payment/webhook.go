package payment

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/common/cache"
	"github.com/dumeirei/hotel-booking-backend/internal/common/database"
	"github.com/dumeirei/hotel-booking-backend/internal/common/errors"
	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/tracing"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/internal/service/notify"
	stripepkg "github.com/dumeirei/hotel-booking-backend/pkg/stripe"
)

// 回调处理结果指标
const (
	resultProcessed = "processed"
	resultDuplicate = "duplicate"
	resultIgnored   = "ignored"
	resultInvalid   = "invalid"
	resultError     = "error"
)

// outcome 一次支付状态变更对预订的影响
type outcome struct {
	bookingID       int64
	paymentStatus   string
	bookingChanged  string
	refundNeeded    bool
	paymentFailed   bool
	alreadyRecorded bool
	bookingMissing  bool
}

// HandleWebhook 校验签名并处理支付回调事件
// 返回错误时渠道会重投；同一事件重复投递为空操作
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) (err error) {
	if s.gateway == nil {
		return errors.ErrWebhookNotConfigured
	}

	ev, err := s.gateway.ConstructEvent(payload, signature)
	if err != nil {
		if stderrors.Is(err, stripepkg.ErrWebhookSecretMissing) {
			return errors.ErrWebhookNotConfigured
		}
		s.metrics.RecordWebhookEvent("unknown", resultInvalid)
		logger.Warn("webhook signature verification failed", zap.Error(err))
		return errors.ErrWebhookSignature.WithError(err)
	}

	eventType := string(ev.Type)
	ctx, span := tracing.StartSpan(ctx, "payment.webhook", tracing.WithEvent(eventType, ev.ID)...)
	defer func() { tracing.End(span, err) }()

	log := logger.With(logger.EventType(eventType), logger.EventID(ev.ID))

	key := cache.WebhookEventKey(ev.ID)
	seen, cacheErr := s.cache.Exists(ctx, key)
	if cacheErr != nil {
		log.Warn("webhook dedupe lookup failed", zap.Error(cacheErr))
	}
	if seen {
		log.Info("webhook event already processed")
		s.metrics.RecordWebhookEvent(eventType, resultDuplicate)
		return nil
	}

	result := resultProcessed
	switch eventType {
	case stripepkg.EventCheckoutSessionCompleted:
		err = s.handleCheckoutCompleted(ctx, ev)
	case stripepkg.EventPaymentIntentSucceeded:
		err = s.handlePaymentSucceeded(ctx, ev)
	case stripepkg.EventPaymentIntentPaymentFailed:
		err = s.handlePaymentFailed(ctx, ev)
	case stripepkg.EventChargeSucceeded, stripepkg.EventChargeFailed:
		log.Info("charge event acknowledged")
	default:
		log.Debug("unhandled webhook event")
		result = resultIgnored
	}

	if err != nil {
		result = resultError
		if errors.Is(err, errors.ErrWebhookPayload) {
			result = resultInvalid
		}
		s.metrics.RecordWebhookEvent(eventType, result)
		log.Error("webhook processing failed", zap.Error(err))
		return err
	}

	if _, cacheErr := s.cache.Remember(ctx, key, s.opts.EventTTL); cacheErr != nil {
		log.Warn("webhook dedupe store failed", zap.Error(cacheErr))
	}
	s.metrics.RecordWebhookEvent(eventType, result)
	return nil
}

// handleCheckoutCompleted 收银台完成：按流水号落库支付记录，已付款时确认预订
func (s *PaymentService) handleCheckoutCompleted(ctx context.Context, ev stripe.Event) error {
	session, err := stripepkg.DecodeCheckoutSession(ev)
	if err != nil {
		return errors.ErrWebhookPayload.WithError(err)
	}
	bookingID, err := strconv.ParseInt(session.Metadata[stripepkg.MetadataBookingID], 10, 64)
	if err != nil || bookingID <= 0 {
		return errors.ErrWebhookPayload.WithMessage("缺少预订 ID")
	}
	if session.PaymentIntent == nil || session.PaymentIntent.ID == "" {
		return errors.ErrWebhookPayload.WithMessage("缺少 payment_intent")
	}
	transactionID := session.PaymentIntent.ID
	paid := session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid

	var out outcome
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.paymentRepo.GetByTransactionID(ctx, tx, transactionID); err == nil {
			out.alreadyRecorded = true
			return nil
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		booking, err := s.bookingRepo.GetForUpdate(ctx, tx, bookingID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				out.bookingMissing = true
				return nil
			}
			return err
		}

		amount := stripepkg.FromMinorUnits(session.AmountTotal)
		if amount <= 0 {
			amount = booking.TotalAmount
		}
		method := models.PaymentMethodCard
		payment := &models.Payment{
			BookingID:     booking.ID,
			Amount:        amount,
			PaymentStatus: models.PaymentStatusPending,
			PaymentMethod: &method,
			TransactionID: &transactionID,
		}
		if paid {
			now := time.Now()
			payment.PaymentStatus = models.PaymentStatusCompleted
			payment.PaymentDate = &now
		}
		if err := s.paymentRepo.Create(ctx, tx, payment); err != nil {
			return err
		}
		out.bookingID = booking.ID
		out.paymentStatus = payment.PaymentStatus

		if paid {
			if err := s.confirmBooking(ctx, tx, booking, &out); err != nil {
				return err
			}
			return s.reconRepo.MarkResolved(ctx, tx, transactionID, time.Now())
		}
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			logger.Info("payment recorded concurrently", logger.TransactionID(transactionID))
			return nil
		}
		return txError(err)
	}
	if out.alreadyRecorded {
		logger.Info("payment already recorded", logger.TransactionID(transactionID))
		return nil
	}
	if out.bookingMissing {
		// 重投无法补全已删除的预订，确认接收并转人工
		logger.Error("checkout completed for missing booking",
			logger.BookingID(bookingID),
			logger.TransactionID(transactionID),
			zap.Bool("paid", paid),
		)
		if paid {
			s.notifier.OrphanPayment(ctx, bookingID, transactionID)
		}
		return nil
	}

	logger.Info("payment recorded from checkout",
		logger.BookingID(out.bookingID),
		logger.TransactionID(transactionID),
		zap.String("payment_status", out.paymentStatus),
	)
	s.after(ctx, transactionID, out)
	return nil
}

// handlePaymentSucceeded 支付成功：支付记录可能尚未由收银台事件写入，有限次退避重试
// 仍未找到时落库待对账记录并返回错误，由渠道重投与定时任务共同补偿
func (s *PaymentService) handlePaymentSucceeded(ctx context.Context, ev stripe.Event) error {
	intent, err := stripepkg.DecodePaymentIntent(ev)
	if err != nil {
		return errors.ErrWebhookPayload.WithError(err)
	}
	if intent.ID == "" {
		return errors.ErrWebhookPayload.WithMessage("缺少 payment_intent")
	}
	transactionID := intent.ID

	attempt := 0
	err = backoff.Retry(func() error {
		attempt++
		err := s.applySuccess(ctx, transactionID)
		if err == gorm.ErrRecordNotFound {
			logger.Debug("payment not recorded yet",
				logger.TransactionID(transactionID),
				zap.Int("attempt", attempt),
			)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}, s.retryBackOff(ctx))
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			return errors.ErrPaymentNotRecorded.WithError(err)
		}
		return txError(err)
	}

	rec := &models.PaymentReconciliation{
		TransactionID: transactionID,
		EventID:       ev.ID,
		EventType:     string(ev.Type),
		Status:        models.ReconciliationStatusPending,
		NextAttemptAt: time.Now(),
	}
	if recErr := s.reconRepo.CreateIfAbsent(ctx, rec); recErr != nil {
		logger.Error("persist payment reconciliation failed", logger.TransactionID(transactionID), zap.Error(recErr))
	}
	logger.Error("payment not recorded after retries",
		logger.TransactionID(transactionID),
		logger.EventType(string(ev.Type)),
		logger.EventID(ev.ID),
		zap.Int("attempts", attempt),
	)
	return errors.ErrPaymentNotRecorded
}

// retryBackOff 指数退避，单次间隔封顶，总次数有限
func (s *PaymentService) retryBackOff(ctx context.Context) backoff.BackOffContext {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.Retry.Delay
	b.Multiplier = s.opts.Retry.Multiplier
	b.MaxInterval = s.opts.Retry.MaxDelay
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(s.opts.Retry.Attempts-1)), ctx)
}

// applySuccess 将支付记为成功并确认预订，同事务内结清待对账记录
// 支付记录不存在时返回 gorm.ErrRecordNotFound
func (s *PaymentService) applySuccess(ctx context.Context, transactionID string) error {
	var out outcome
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.GetForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		out.bookingID = payment.BookingID

		if payment.PaymentStatus != models.PaymentStatusCompleted {
			if err := s.paymentRepo.UpdateFields(ctx, tx, payment.ID, map[string]interface{}{
				"payment_status": models.PaymentStatusCompleted,
				"payment_date":   time.Now(),
			}); err != nil {
				return err
			}
			out.paymentStatus = models.PaymentStatusCompleted
		}

		booking, err := s.bookingRepo.GetForUpdate(ctx, tx, payment.BookingID)
		if err != nil {
			return err
		}
		if err := s.confirmBooking(ctx, tx, booking, &out); err != nil {
			return err
		}
		return s.reconRepo.MarkResolved(ctx, tx, transactionID, time.Now())
	})
	if err != nil {
		return err
	}

	if out.paymentStatus != "" || out.bookingChanged != "" || out.refundNeeded {
		logger.Info("payment completed",
			logger.BookingID(out.bookingID),
			logger.TransactionID(transactionID),
		)
	}
	s.after(ctx, transactionID, out)
	return nil
}

// confirmBooking 支付成功后的预订状态迁移：待支付确认，已确认保持，已取消不再确认而需人工退款
func (s *PaymentService) confirmBooking(ctx context.Context, tx *gorm.DB, booking *models.Booking, out *outcome) error {
	switch booking.BookingStatus {
	case models.BookingStatusPending:
		if _, err := s.bookingRepo.UpdateStatus(ctx, tx, booking.ID, models.BookingStatusConfirmed); err != nil {
			return err
		}
		out.bookingChanged = models.BookingStatusConfirmed
	case models.BookingStatusCancelled:
		out.refundNeeded = true
	}
	return nil
}

// handlePaymentFailed 支付失败：支付记为失败并取消待支付预订；已完成的支付与已确认的预订不受影响
func (s *PaymentService) handlePaymentFailed(ctx context.Context, ev stripe.Event) error {
	intent, err := stripepkg.DecodePaymentIntent(ev)
	if err != nil {
		return errors.ErrWebhookPayload.WithError(err)
	}
	if intent.ID == "" {
		return errors.ErrWebhookPayload.WithMessage("缺少 payment_intent")
	}
	transactionID := intent.ID

	var out outcome
	missing := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.paymentRepo.GetForUpdate(ctx, tx, transactionID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				missing = true
				return nil
			}
			return err
		}
		out.bookingID = payment.BookingID
		if payment.PaymentStatus != models.PaymentStatusPending {
			return nil
		}

		if err := s.paymentRepo.UpdateFields(ctx, tx, payment.ID, map[string]interface{}{
			"payment_status": models.PaymentStatusFailed,
		}); err != nil {
			return err
		}
		out.paymentStatus = models.PaymentStatusFailed
		out.paymentFailed = true

		booking, err := s.bookingRepo.GetForUpdate(ctx, tx, payment.BookingID)
		if err != nil {
			return err
		}
		if booking.BookingStatus == models.BookingStatusPending {
			if _, err := s.bookingRepo.UpdateStatus(ctx, tx, booking.ID, models.BookingStatusCancelled); err != nil {
				return err
			}
			out.bookingChanged = models.BookingStatusCancelled
		}
		return nil
	})
	if err != nil {
		return txError(err)
	}
	if missing {
		logger.Warn("failed payment not recorded, skipped", logger.TransactionID(transactionID))
		return nil
	}
	if !out.paymentFailed {
		logger.Info("payment failure ignored", logger.TransactionID(transactionID), logger.BookingID(out.bookingID))
		return nil
	}

	logger.Warn("payment failed",
		logger.BookingID(out.bookingID),
		logger.TransactionID(transactionID),
		zap.String("booking_status", out.bookingChanged),
	)
	s.after(ctx, transactionID, out)
	return nil
}

// after 提交后的指标与通知
func (s *PaymentService) after(ctx context.Context, transactionID string, out outcome) {
	if out.paymentStatus != "" {
		s.metrics.RecordPayment(out.paymentStatus)
	}
	if out.refundNeeded {
		logger.Warn("payment succeeded for cancelled booking, refund needed",
			logger.BookingID(out.bookingID),
			logger.TransactionID(transactionID),
		)
		s.notifier.RefundNeeded(ctx, out.bookingID, transactionID)
	}
	if out.paymentFailed {
		s.notifier.PaymentFailed(ctx, out.bookingID, transactionID)
	}
	if out.bookingChanged == "" || s.notifier == nil {
		return
	}

	booking, err := s.bookingRepo.GetByIDWithDetails(ctx, out.bookingID)
	if err != nil {
		logger.Warn("load booking for notification failed", logger.BookingID(out.bookingID), zap.Error(err))
		return
	}
	switch out.bookingChanged {
	case models.BookingStatusConfirmed:
		s.notifier.BookingConfirmed(ctx, notify.NoticeFromBooking(booking))
	case models.BookingStatusCancelled:
		s.notifier.BookingCancelled(ctx, notify.NoticeFromBooking(booking))
	}
}

// txError 事务错误映射
func txError(err error) error {
	if errors.IsAppError(err) {
		return err
	}
	if err == gorm.ErrRecordNotFound {
		return errors.ErrPaymentNotFound
	}
	return errors.ErrDatabaseError.WithError(err)
}
