package models

import (
	"time"
)

// AIProfile AI角色资料模型
// 每条记录对应一个内容（content_id 唯一），资料字段由生成式模型产出
type AIProfile struct {
	ID                  uint      `json:"ai_id" gorm:"column:ai_id;primaryKey"`
	ContentID           uint      `json:"content_id" gorm:"uniqueIndex;not null"`
	DisplayName         string    `json:"display_name" gorm:"size:255"`
	Name                string    `json:"name" gorm:"size:255;not null"`
	Bio                 string    `json:"bio" gorm:"type:text"`
	Location            string    `json:"location" gorm:"size:255"`
	SystemsInstructions string    `json:"systems_instructions" gorm:"type:text"`
	ProfilePicURL       string    `json:"profile_pic_url" gorm:"size:512"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName 设置表名
func (AIProfile) TableName() string {
	return "ais"
}
