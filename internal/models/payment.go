package models

import (
	"time"
)

// Payment 支付记录，TransactionID 为支付渠道的 payment intent id
type Payment struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID     int64      `gorm:"index;not null" json:"booking_id"`
	Amount        float64    `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentStatus string     `gorm:"type:varchar(16);not null;default:Pending" json:"payment_status"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	PaymentMethod *string    `gorm:"type:varchar(32)" json:"payment_method,omitempty"`
	TransactionID *string    `gorm:"type:varchar(255);uniqueIndex" json:"transaction_id,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Booking *Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
}

// TableName 表名
func (Payment) TableName() string {
	return "payments"
}

// PaymentStatus 支付状态
const (
	PaymentStatusPending   = "Pending"   // 待支付
	PaymentStatusCompleted = "Completed" // 已完成
	PaymentStatusFailed    = "Failed"    // 失败
)

// PaymentMethodCard 银行卡
const PaymentMethodCard = "card"

// PaymentReconciliation 待对账记录：支付成功事件先于支付记录到达时落库，由定时任务补偿
type PaymentReconciliation struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	TransactionID string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"transaction_id"`
	EventID       string     `gorm:"type:varchar(255);not null" json:"event_id"`
	EventType     string     `gorm:"type:varchar(64);not null" json:"event_type"`
	Status        string     `gorm:"type:varchar(16);not null;default:pending;index" json:"status"`
	Attempts      int        `gorm:"not null;default:0" json:"attempts"`
	LastError     *string    `gorm:"type:text" json:"last_error,omitempty"`
	NextAttemptAt time.Time  `gorm:"not null;index" json:"next_attempt_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (PaymentReconciliation) TableName() string {
	return "payment_reconciliations"
}

// ReconciliationStatus 对账状态
const (
	ReconciliationStatusPending   = "pending"
	ReconciliationStatusResolved  = "resolved"
	ReconciliationStatusAbandoned = "abandoned"
)
