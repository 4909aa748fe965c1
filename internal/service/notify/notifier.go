// Package notify 预订与支付通知，提交后异步分发，不影响调用方结果
package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-booking-backend/internal/common/logger"
	"github.com/dumeirei/hotel-booking-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-booking-backend/internal/models"
	"github.com/dumeirei/hotel-booking-backend/pkg/mqtt"
	"github.com/dumeirei/hotel-booking-backend/pkg/sms"
	"github.com/dumeirei/hotel-booking-backend/pkg/telegram"
)

const dispatchTimeout = 10 * time.Second

// BookingNotice 预订通知所需信息
type BookingNotice struct {
	Booking *models.Booking
	HotelID int64
	Phone   string
	Guest   string
}

// NoticeFromBooking 由预加载了 User 与 Room 的预订构造通知
func NoticeFromBooking(b *models.Booking) BookingNotice {
	notice := BookingNotice{Booking: b}
	if b == nil {
		return notice
	}
	if b.Room != nil {
		notice.HotelID = b.Room.HotelID
	}
	if b.User != nil {
		notice.Guest = b.User.FullName()
		if b.User.ContactPhone != nil {
			notice.Phone = *b.User.ContactPhone
		}
	}
	return notice
}

// Notifier 通知分发器，各通道均可为空
type Notifier struct {
	sms         sms.Sender
	publisher   mqtt.Publisher
	topicPrefix string
	alerter     telegram.Alerter
	metrics     *metrics.Metrics
	log         *zap.Logger
	wg          sync.WaitGroup
}

// Option 配置项
type Option func(*Notifier)

// WithSMS 短信通道
func WithSMS(s sms.Sender) Option {
	return func(n *Notifier) { n.sms = s }
}

// WithMQTT MQTT 通道
func WithMQTT(p mqtt.Publisher, topicPrefix string) Option {
	return func(n *Notifier) {
		n.publisher = p
		n.topicPrefix = topicPrefix
	}
}

// WithTelegram 员工告警通道
func WithTelegram(a telegram.Alerter) Option {
	return func(n *Notifier) { n.alerter = a }
}

// WithMetrics 指标
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Notifier) { n.metrics = m }
}

// New 创建通知分发器
func New(opts ...Option) *Notifier {
	n := &Notifier{log: logger.Named("notify")}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Wait 等待已派发的通知完成
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifier) dispatch(ctx context.Context, name string, fn func(ctx context.Context) error) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dispatchTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			n.log.Warn("notification failed", zap.String("channel", name), zap.Error(err))
		}
	}()
}

// BookingConfirmed 预订确认：短信通知住客，MQTT 通知前台
func (n *Notifier) BookingConfirmed(ctx context.Context, notice BookingNotice) {
	n.bookingChanged(ctx, notice, sms.TemplateBookingConfirmed, mqtt.EventBookingConfirmed)
}

// BookingCancelled 预订取消
func (n *Notifier) BookingCancelled(ctx context.Context, notice BookingNotice) {
	n.bookingChanged(ctx, notice, sms.TemplateBookingCancelled, mqtt.EventBookingCancelled)
}

func (n *Notifier) bookingChanged(ctx context.Context, notice BookingNotice, template, event string) {
	if n == nil || notice.Booking == nil {
		return
	}
	b := notice.Booking

	if n.sms != nil && notice.Phone != "" {
		params := map[string]string{
			"booking_id": strconv.FormatInt(b.ID, 10),
			"check_in":   b.CheckInDate.String(),
			"check_out":  b.CheckOutDate.String(),
		}
		if notice.Guest != "" {
			params["name"] = notice.Guest
		}
		phone := notice.Phone
		n.dispatch(ctx, "sms", func(ctx context.Context) error {
			return n.sms.Send(ctx, phone, template, params)
		})
	}

	if n.publisher != nil {
		topic := mqtt.BookingTopic(n.topicPrefix, notice.HotelID, b.RoomID)
		payload := mqtt.BookingEvent{
			Event:        event,
			BookingID:    b.ID,
			HotelID:      notice.HotelID,
			RoomID:       b.RoomID,
			CheckInDate:  b.CheckInDate.String(),
			CheckOutDate: b.CheckOutDate.String(),
			Status:       b.BookingStatus,
			Timestamp:    time.Now().Unix(),
		}
		n.dispatch(ctx, "mqtt", func(ctx context.Context) error {
			err := n.publisher.Publish(ctx, topic, payload)
			result := "success"
			if err != nil {
				result = "error"
			}
			n.metrics.RecordMQTTMessage(event, result)
			return err
		})
	}
}

// PaymentFailed 支付失败告警
func (n *Notifier) PaymentFailed(ctx context.Context, bookingID int64, transactionID string) {
	n.alert(ctx, fmt.Sprintf("Payment failed for booking #%d (transaction %s)", bookingID, transactionID))
}

// RefundNeeded 已取消的预订收到支付成功，需要人工退款
func (n *Notifier) RefundNeeded(ctx context.Context, bookingID int64, transactionID string) {
	n.alert(ctx, fmt.Sprintf("Refund needed: booking #%d was cancelled but payment %s succeeded", bookingID, transactionID))
}

// OrphanPayment 支付成功但预订已不存在，需要人工退款
func (n *Notifier) OrphanPayment(ctx context.Context, bookingID int64, transactionID string) {
	n.alert(ctx, fmt.Sprintf("Refund needed: payment %s references missing booking #%d", transactionID, bookingID))
}

// ReconciliationAbandoned 对账重试耗尽
func (n *Notifier) ReconciliationAbandoned(ctx context.Context, transactionID string, attempts int) {
	n.alert(ctx, fmt.Sprintf("Payment %s could not be reconciled after %d attempts", transactionID, attempts))
}

// TicketCreated 新工单
func (n *Notifier) TicketCreated(ctx context.Context, ticket *models.SupportTicket) {
	if ticket == nil {
		return
	}
	n.alert(ctx, fmt.Sprintf("New support ticket #%d from user %d: %s", ticket.ID, ticket.UserID, ticket.Subject))
}

// ContactMessage 访客留言转给值班人员
func (n *Notifier) ContactMessage(ctx context.Context, name, email, message string) {
	n.alert(ctx, fmt.Sprintf("Contact form message from %s <%s>:\n%s", name, email, message))
}

func (n *Notifier) alert(ctx context.Context, text string) {
	if n == nil || n.alerter == nil {
		return
	}
	n.dispatch(ctx, "telegram", func(ctx context.Context) error {
		return n.alerter.Alert(ctx, text)
	})
}
