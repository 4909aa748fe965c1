package stripe

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v76"
)

// 处理的事件类型
const (
	EventCheckoutSessionCompleted   = "checkout.session.completed"
	EventPaymentIntentSucceeded     = "payment_intent.succeeded"
	EventPaymentIntentPaymentFailed = "payment_intent.payment_failed"
	EventChargeSucceeded            = "charge.succeeded"
	EventChargeFailed               = "charge.failed"
)

// ErrWebhookSecretMissing 未配置回调密钥
var ErrWebhookSecretMissing = errors.New("stripe webhook secret not configured")

// DecodeCheckoutSession 解析 checkout.session.* 事件对象
func DecodeCheckoutSession(ev stripe.Event) (*stripe.CheckoutSession, error) {
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return nil, fmt.Errorf("event %s has no data", ev.ID)
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &s, nil
}

// DecodePaymentIntent 解析 payment_intent.* 事件对象
func DecodePaymentIntent(ev stripe.Event) (*stripe.PaymentIntent, error) {
	if ev.Data == nil || len(ev.Data.Raw) == 0 {
		return nil, fmt.Errorf("event %s has no data", ev.ID)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	return &pi, nil
}
