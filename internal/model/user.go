package model

import "time"

// User 用户表 — 对应 users
// 用户名即主键，访问类别注册后不可修改
type User struct {
	Username     string      `gorm:"type:varchar(50);primaryKey"           json:"username"`
	PasswordHash string      `gorm:"type:varchar(255);not null"            json:"-"`
	AccessClass  AccessClass `gorm:"type:varchar(10);not null"             json:"access_class"`
	RegisteredBy string      `gorm:"type:varchar(50);not null"             json:"registered_by"`
	RegisteredAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"    json:"registered_at"`
	UpdatedAt    time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"    json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
