// Package telegram 员工告警机器人
package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-telegram/bot"
)

// Alerter 告警发送接口
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// Client 向员工群发送告警
type Client struct {
	bot    *bot.Bot
	chatID int64
}

// New 创建客户端，不在启动时调用 getMe
func New(token string, chatID int64, opts ...bot.Option) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	options := append([]bot.Option{bot.WithSkipGetMe()}, opts...)
	b, err := bot.New(token, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Client{bot: b, chatID: chatID}, nil
}

// Alert 发送纯文本告警
func (c *Client) Alert(ctx context.Context, text string) error {
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: c.chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("failed to send telegram alert: %w", err)
	}
	return nil
}

// MockAlerter 记录告警（用于测试）
type MockAlerter struct {
	mu     sync.Mutex
	alerts []string
}

// NewMockAlerter 创建模拟告警器
func NewMockAlerter() *MockAlerter {
	return &MockAlerter{}
}

// Alert 记录告警
func (m *MockAlerter) Alert(ctx context.Context, text string) error {
	m.mu.Lock()
	m.alerts = append(m.alerts, text)
	m.mu.Unlock()
	return nil
}

// Alerts 已记录的告警
func (m *MockAlerter) Alerts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.alerts))
	copy(out, m.alerts)
	return out
}
