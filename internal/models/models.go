package models

// All 返回全部模型，供 sqlite 测试库 AutoMigrate 使用；PostgreSQL 由 migrations 建表
func All() []interface{} {
	return []interface{}{
		&User{},
		&Hotel{},
		&Room{},
		&Address{},
		&Amenity{},
		&EntityAmenity{},
		&Booking{},
		&Payment{},
		&PaymentReconciliation{},
		&SupportTicket{},
	}
}
