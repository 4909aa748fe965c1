// Package stripe 封装 Stripe 托管收银台与回调验签
package stripe

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

// MetadataBookingID 会话元数据中的预订 ID 键
const MetadataBookingID = "bookingId"

// Config Stripe 配置
type Config struct {
	SecretKey     string
	WebhookSecret string
	// BackendURL 非空时覆盖 API 地址，测试使用
	BackendURL string
}

// CheckoutParams 收银台会话参数
type CheckoutParams struct {
	BookingID   int64
	Amount      float64
	Currency    string
	ProductName string
	Description string
	SuccessURL  string
	CancelURL   string
}

// CheckoutSession 收银台会话
type CheckoutSession struct {
	ID  string
	URL string
}

// Client Stripe 客户端，显式构造后注入
type Client struct {
	api           *client.API
	webhookSecret string
}

// NewClient 创建客户端
func NewClient(cfg *Config) *Client {
	var backends *stripe.Backends
	if cfg.BackendURL != "" {
		backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			URL:               stripe.String(cfg.BackendURL),
			MaxNetworkRetries: stripe.Int64(0),
		})
		backends = &stripe.Backends{API: backend, Connect: backend, Uploads: backend}
	}
	return &Client{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
	}
}

// ToMinorUnits 金额转为最小货币单位（分）
func ToMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromMinorUnits 最小货币单位转为金额
func FromMinorUnits(amount int64) float64 {
	return float64(amount) / 100
}

// CreateCheckoutSession 创建一次性付款的托管收银台会话
func (c *Client) CreateCheckoutSession(ctx context.Context, p *CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(p.ProductName),
						Description: stripe.String(p.Description),
					},
					UnitAmount: stripe.Int64(ToMinorUnits(p.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx
	params.AddMetadata(MetadataBookingID, strconv.FormatInt(p.BookingID, 10))

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// ConstructEvent 校验 Stripe-Signature 并解析事件，不校验 API 版本
func (c *Client) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	if c.webhookSecret == "" {
		return stripe.Event{}, ErrWebhookSecretMissing
	}
	return webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
