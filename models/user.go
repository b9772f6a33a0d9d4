package models

import (
	"time"
)

// User 用户资料模型
// user_id 由外部系统分配，作为主键，不自增
type User struct {
	UserID        uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	DisplayName   string    `json:"display_name" gorm:"size:255"`
	Name          string    `json:"name" gorm:"size:255;not null"`
	Bio           string    `json:"bio" gorm:"type:text"`
	Location      string    `json:"location" gorm:"size:255"`
	ProfilePicURL string    `json:"profile_pic_url" gorm:"size:512"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}
