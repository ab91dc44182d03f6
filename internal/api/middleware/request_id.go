package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDKey = "request_id"

// requestIDMaxLen 限制外部传入的 Request-ID 最大长度，防止日志注入
const requestIDMaxLen = 64

// RequestID 请求追踪 ID 中间件
// 聊天平台的 webhook 重试会带同一个 X-Request-ID，保留它便于去重排查；
// 缺失或超长时生成 UUID，结果注入 gin.Context 并回写响应头
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > requestIDMaxLen {
			rid = uuid.New().String()
		}

		c.Set(requestIDKey, rid)
		c.Header("X-Request-ID", rid)

		c.Next()
	}
}

// GetRequestID 取当前请求的追踪 ID；不在中间件链上时返回空串
func GetRequestID(c *gin.Context) string {
	if rid, ok := c.Get(requestIDKey); ok {
		if s, ok := rid.(string); ok {
			return s
		}
	}
	return ""
}
