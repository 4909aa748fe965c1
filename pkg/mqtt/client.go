// Package mqtt 提供 MQTT 客户端封装，向前台与门锁系统推送预订事件
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// Config MQTT 配置
type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	QoS            byte
	Retained       bool
	KeepAlive      int
	ConnectTimeout int
	AutoReconnect  bool
	TopicPrefix    string // 默认 "hotel/"
}

// Publisher 消息发布接口
type Publisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

// BookingEvent 预订状态事件
type BookingEvent struct {
	Event        string `json:"event"`
	BookingID    int64  `json:"booking_id"`
	HotelID      int64  `json:"hotel_id"`
	RoomID       int64  `json:"room_id"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Status       string `json:"status"`
	Timestamp    int64  `json:"timestamp"`
}

// 事件类型
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingTopic 预订事件主题：{prefix}{hotel_id}/rooms/{room_id}/booking
func BookingTopic(prefix string, hotelID, roomID int64) string {
	if prefix == "" {
		prefix = "hotel/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%s%d/rooms/%d/booking", prefix, hotelID, roomID)
}

// Encode 序列化消息体
func Encode(payload interface{}) ([]byte, error) {
	switch v := payload.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("mqtt marshal payload error: %w", err)
		}
		return data, nil
	}
}

// Client MQTT 客户端
type Client struct {
	config *Config
	client mqtt.Client
	logger *zap.Logger
}

// NewClient 创建 MQTT 客户端
func NewClient(config *Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config: config,
		logger: logger.Named("mqtt"),
	}
}

// Connect 连接 MQTT Broker
func (c *Client) Connect() error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(fmt.Sprintf("%s%d", c.config.ClientID, time.Now().UnixNano()))
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetKeepAlive(time.Duration(c.config.KeepAlive) * time.Second)
	opts.SetConnectTimeout(time.Duration(c.config.ConnectTimeout) * time.Second)
	opts.SetAutoReconnect(c.config.AutoReconnect)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		c.logger.Warn("connection lost", zap.Error(err))
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		c.logger.Info("connected to broker", zap.String("broker", c.config.Broker))
	})
	opts.SetReconnectingHandler(func(_ mqtt.Client, _ *mqtt.ClientOptions) {
		c.logger.Info("reconnecting to broker")
	})

	c.client = mqtt.NewClient(opts)

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect error: %w", token.Error())
	}
	return nil
}

// Disconnect 断开连接
func (c *Client) Disconnect() {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
		c.logger.Info("disconnected from broker")
	}
}

// IsConnected 检查是否已连接
func (c *Client) IsConnected() bool {
	return c.client != nil && c.client.IsConnected()
}

// Publish 发布消息，等待确认或 ctx 结束
func (c *Client) Publish(ctx context.Context, topic string, payload interface{}) error {
	if !c.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	data, err := Encode(payload)
	if err != nil {
		return err
	}

	token := c.client.Publish(topic, c.config.QoS, c.config.Retained, data)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("mqtt publish error: %w", token.Error())
		}
		return nil
	}
}

// MockPublisher 记录发布的消息（用于测试）
type MockPublisher struct {
	mu       sync.Mutex
	Messages []PublishedMessage
	Err      error
}

// PublishedMessage 已发布消息
type PublishedMessage struct {
	Topic   string
	Payload []byte
}

// NewMockPublisher 创建模拟发布器
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish 记录消息
func (p *MockPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	if p.Err != nil {
		return p.Err
	}
	data, err := Encode(payload)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.Messages = append(p.Messages, PublishedMessage{Topic: topic, Payload: data})
	p.mu.Unlock()
	return nil
}

// Published 已发布消息副本
func (p *MockPublisher) Published() []PublishedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedMessage, len(p.Messages))
	copy(out, p.Messages)
	return out
}
