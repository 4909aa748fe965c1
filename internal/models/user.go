// Package models 定义数据模型
package models

import (
	"time"
)

// User 用户模型
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string    `gorm:"type:varchar(255);not null" json:"-"`
	ContactPhone *string   `gorm:"type:varchar(32)" json:"contact_phone,omitempty"`
	Role         string    `gorm:"type:varchar(16);not null;default:user" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (User) TableName() string {
	return "users"
}

// FullName 姓名
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserRole 用户角色
const (
	RoleUser  = "user"  // 普通用户
	RoleOwner = "owner" // 酒店业主
	RoleAdmin = "admin" // 管理员
)

// IsValidRole 是否为合法角色
func IsValidRole(role string) bool {
	return role == RoleUser || role == RoleOwner || role == RoleAdmin
}

// SupportTicket 客服工单
type SupportTicket struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"index;not null" json:"user_id"`
	Subject     string    `gorm:"type:varchar(255);not null" json:"subject"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Status      string    `gorm:"type:varchar(16);not null;default:Open;index" json:"status"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName 表名
func (SupportTicket) TableName() string {
	return "support_tickets"
}

// TicketStatus 工单状态
const (
	TicketStatusOpen     = "Open"     // 待处理
	TicketStatusResolved = "Resolved" // 已解决
)
