// Package sms 短信服务
package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi "github.com/alibabacloud-go/dysmsapi-20170525/v3/client"
	"github.com/alibabacloud-go/tea/tea"
)

// 模板键
const (
	TemplateBookingConfirmed = "booking_confirmed" // 预订已确认
	TemplateBookingCancelled = "booking_cancelled" // 预订已取消
	TemplatePaymentFailed    = "payment_failed"    // 支付失败
)

// Sender 短信发送器接口，template 为模板键
type Sender interface {
	Send(ctx context.Context, phone, template string, params map[string]string) error
}

// AliyunConfig 阿里云短信配置
type AliyunConfig struct {
	AccessKeyID     string
	AccessKeySecret string
	SignName        string
	RegionID        string // 默认 cn-hangzhou
	Endpoint        string
}

// DefaultTemplates 默认模板编码
var DefaultTemplates = map[string]string{
	TemplateBookingConfirmed: "SMS_BOOKING_CONFIRMED",
	TemplateBookingCancelled: "SMS_BOOKING_CANCELLED",
	TemplatePaymentFailed:    "SMS_PAYMENT_FAILED",
}

// AliyunSender 阿里云短信发送器
type AliyunSender struct {
	client    *dysmsapi.Client
	signName  string
	templates map[string]string
}

// NewAliyunSender 创建阿里云短信发送器
func NewAliyunSender(config *AliyunConfig) (*AliyunSender, error) {
	if config.RegionID == "" {
		config.RegionID = "cn-hangzhou"
	}

	cfg := &openapi.Config{
		AccessKeyId:     tea.String(config.AccessKeyID),
		AccessKeySecret: tea.String(config.AccessKeySecret),
		RegionId:        tea.String(config.RegionID),
	}
	if config.Endpoint != "" {
		cfg.Endpoint = tea.String(config.Endpoint)
	} else {
		cfg.Endpoint = tea.String("dysmsapi.aliyuncs.com")
	}

	client, err := dysmsapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sms client: %w", err)
	}

	templates := make(map[string]string, len(DefaultTemplates))
	for k, v := range DefaultTemplates {
		templates[k] = v
	}

	return &AliyunSender{
		client:    client,
		signName:  config.SignName,
		templates: templates,
	}, nil
}

// SetTemplates 覆盖模板编码
func (s *AliyunSender) SetTemplates(templates map[string]string) {
	for k, v := range templates {
		s.templates[k] = v
	}
}

// TemplateCode 模板键对应的模板编码
func (s *AliyunSender) TemplateCode(template string) (string, bool) {
	code, ok := s.templates[template]
	return code, ok
}

// Send 发送短信
func (s *AliyunSender) Send(ctx context.Context, phone, template string, params map[string]string) error {
	code, ok := s.templates[template]
	if !ok {
		return fmt.Errorf("sms template %q not configured", template)
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal sms params: %w", err)
	}

	req := &dysmsapi.SendSmsRequest{
		PhoneNumbers:  tea.String(phone),
		SignName:      tea.String(s.signName),
		TemplateCode:  tea.String(code),
		TemplateParam: tea.String(string(paramsJSON)),
	}

	resp, err := s.client.SendSms(req)
	if err != nil {
		return fmt.Errorf("failed to send sms: %w", err)
	}

	if resp.Body == nil || resp.Body.Code == nil || *resp.Body.Code != "OK" {
		msg := "unknown error"
		if resp.Body != nil && resp.Body.Message != nil {
			msg = *resp.Body.Message
		}
		return fmt.Errorf("sms send failed: %s", msg)
	}

	return nil
}

// MockSender 模拟短信发送器（用于开发/测试）
type MockSender struct {
	mu           sync.Mutex
	SentMessages []MockMessage
	Err          error
}

// MockMessage 模拟消息
type MockMessage struct {
	Phone    string
	Template string
	Params   map[string]string
	SentAt   time.Time
}

// NewMockSender 创建模拟发送器
func NewMockSender() *MockSender {
	return &MockSender{
		SentMessages: make([]MockMessage, 0),
	}
}

// Send 模拟发送
func (s *MockSender) Send(ctx context.Context, phone, template string, params map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.SentMessages = append(s.SentMessages, MockMessage{
		Phone:    phone,
		Template: template,
		Params:   params,
		SentAt:   time.Now(),
	})
	return nil
}

// Messages 已发送消息副本
func (s *MockSender) Messages() []MockMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MockMessage, len(s.SentMessages))
	copy(out, s.SentMessages)
	return out
}

// GetLastMessage 获取最后发送的消息
func (s *MockSender) GetLastMessage() *MockMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.SentMessages) == 0 {
		return nil
	}
	msg := s.SentMessages[len(s.SentMessages)-1]
	return &msg
}

// Clear 清空消息记录
func (s *MockSender) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SentMessages = make([]MockMessage, 0)
}
