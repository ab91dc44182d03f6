package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/ratishjain12/slack-leaves-bot/internal/classifier"
	"github.com/ratishjain12/slack-leaves-bot/internal/model"
	apperrors "github.com/ratishjain12/slack-leaves-bot/pkg/errors"
)

// ── 候选事件校验器 ──
//
// 分类器输出是不可信数据：缺字段、坏日期都按数据问题处理，
// 校验器是纯函数，枚举全部失败字段后一次性返回，绝不 panic。

// ValidateCandidate 把分类器候选 + 用户/消息上下文校验并折叠为事件记录
// ts 为消息时间戳原文（平台 epoch 形式或 RFC3339）
func ValidateCandidate(raw *classifier.RawCandidate, user classifier.UserContext, text, ts string) (*model.AttendanceEvent, *apperrors.ValidationError) {
	verr := &apperrors.ValidationError{}

	if strings.TrimSpace(user.ID) == "" {
		verr.Add("user_id", "required")
	}
	if strings.TrimSpace(user.DisplayName) == "" {
		verr.Add("user", "required")
	}

	var timestamp time.Time
	if strings.TrimSpace(ts) == "" {
		verr.Add("timestamp", "required")
	} else {
		t, err := ParseChatTimestamp(ts)
		if err != nil {
			verr.Add("timestamp", "malformed datetime")
		} else {
			timestamp = t
		}
	}

	var leaveDay *time.Time
	if raw.LeaveDay != "" {
		d, err := parseDate(raw.LeaveDay)
		if err != nil {
			verr.Add("leave_day", "malformed date")
		} else {
			leaveDay = &d
		}
	}

	var startTime, endTime *time.Time
	if raw.StartTime != "" {
		t, err := parseDateTime(raw.StartTime)
		if err != nil {
			verr.Add("start_time", "malformed datetime")
		} else {
			startTime = &t
		}
	}
	if raw.EndTime != "" {
		t, err := parseDateTime(raw.EndTime)
		if err != nil {
			verr.Add("end_time", "malformed datetime")
		} else {
			endTime = &t
		}
	}
	if raw.IsOutOfOffice && startTime != nil && endTime != nil && !endTime.After(*startTime) {
		verr.Add("end_time", "must be after start_time")
	}

	// 整天请假必须带事由；其他类别按来源语料通常无事由，不强制
	if raw.IsOnLeave && !raw.IsOnHalfDay && strings.TrimSpace(raw.Reason) == "" {
		verr.Add("reason", "required for leave reports")
	}

	if verr.HasErrors() {
		return nil, verr
	}

	event := &model.AttendanceEvent{
		// 身份统一小写，保证跨消息分组稳定
		UserID:            strings.ToLower(strings.TrimSpace(user.ID)),
		UserName:          strings.ToLower(strings.TrimSpace(user.DisplayName)),
		OriginalText:      text,
		Timestamp:         timestamp,
		LeaveDay:          leaveDay,
		StartTime:         startTime,
		EndTime:           endTime,
		Reason:            strings.TrimSpace(raw.Reason),
		IsWorkingFromHome: raw.IsWorkingFromHome,
		IsOnLeave:         raw.IsOnLeave,
		IsLeavingEarly:    raw.IsLeavingEarly,
		IsRunningLate:     raw.IsRunningLate,
		IsOutOfOffice:     raw.IsOutOfOffice,
		IsOnHalfDay:       raw.IsOnHalfDay,
	}
	event.EventDay = event.EffectiveDate()

	return event, nil
}

// ParseChatTimestamp 解析消息时间戳
// 兼容平台原生 "秒.微秒" epoch 形式与 RFC3339
func ParseChatTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).UTC(), nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return model.Truncate(t), nil
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

// [自证通过] internal/service/validate.go
