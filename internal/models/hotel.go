package models

import (
	"time"
)

// Hotel 酒店模型
type Hotel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Location     string    `gorm:"type:varchar(255);not null" json:"location"`
	ContactPhone *string   `gorm:"type:varchar(32)" json:"contact_phone,omitempty"`
	Category     *string   `gorm:"type:varchar(64)" json:"category,omitempty"`
	Rating       *float64  `gorm:"type:decimal(2,1)" json:"rating,omitempty"`
	Thumbnail    *string   `gorm:"type:varchar(512)" json:"thumbnail,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Rooms []Room `gorm:"foreignKey:HotelID" json:"rooms,omitempty"`
}

// TableName 表名
func (Hotel) TableName() string {
	return "hotels"
}

// Room 房间模型
type Room struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	HotelID       int64     `gorm:"index;not null" json:"hotel_id"`
	RoomType      string    `gorm:"type:varchar(64);not null" json:"room_type"`
	PricePerNight float64   `gorm:"type:decimal(10,2);not null" json:"price_per_night"`
	Capacity      int       `gorm:"not null" json:"capacity"`
	IsAvailable   bool      `gorm:"not null" json:"is_available"`
	Thumbnail     *string   `gorm:"type:varchar(512)" json:"thumbnail,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Hotel *Hotel `gorm:"foreignKey:HotelID" json:"hotel,omitempty"`
}

// TableName 表名
func (Room) TableName() string {
	return "rooms"
}

// Address 地址，归属用户或酒店
type Address struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	EntityID   int64     `gorm:"index:idx_addresses_entity;not null" json:"entity_id"`
	EntityType string    `gorm:"type:varchar(16);index:idx_addresses_entity;not null" json:"entity_type"`
	Street     string    `gorm:"type:varchar(255);not null" json:"street"`
	City       string    `gorm:"type:varchar(100);not null" json:"city"`
	State      *string   `gorm:"type:varchar(100)" json:"state,omitempty"`
	PostalCode *string   `gorm:"type:varchar(20)" json:"postal_code,omitempty"`
	Country    string    `gorm:"type:varchar(100);not null" json:"country"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Address) TableName() string {
	return "addresses"
}

// Address 归属类型
const (
	AddressEntityUser  = "user"
	AddressEntityHotel = "hotel"
)

// Amenity 设施
type Amenity struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	Icon        *string   `gorm:"type:varchar(255)" json:"icon,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 表名
func (Amenity) TableName() string {
	return "amenities"
}

// EntityAmenity 设施与房间/酒店的关联
type EntityAmenity struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AmenityID  int64     `gorm:"uniqueIndex:uk_entity_amenity;not null" json:"amenity_id"`
	EntityID   int64     `gorm:"uniqueIndex:uk_entity_amenity;not null" json:"entity_id"`
	EntityType string    `gorm:"type:varchar(16);uniqueIndex:uk_entity_amenity;not null" json:"entity_type"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	// 关联
	Amenity *Amenity `gorm:"foreignKey:AmenityID" json:"amenity,omitempty"`
}

// TableName 表名
func (EntityAmenity) TableName() string {
	return "entity_amenities"
}

// 设施关联类型
const (
	AmenityEntityRoom  = "room"
	AmenityEntityHotel = "hotel"
)
