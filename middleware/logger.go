package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// HeaderCorrelationID 跨服务追踪用的关联ID请求头
const HeaderCorrelationID = "X-Correlation-ID"

// correlationIDKey gin 上下文中关联ID的键名
const correlationIDKey = "correlation_id"

// maxLoggedBody 请求体日志截断上限
const maxLoggedBody = 4 << 10

// CorrelationID 读取请求关联ID，缺失时生成一个，并回写到响应头
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(HeaderCorrelationID)
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Set(correlationIDKey, cid)
		c.Header(HeaderCorrelationID, cid)
		c.Next()
	}
}

// GetCorrelationID 获取当前请求的关联ID
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(correlationIDKey)
}

// RequestLogger 结构化请求日志中间件
// 记录方法、路径、状态、耗时、请求头与请求体；X-API-KEY 一律脱敏，绝不落盘明文密钥
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBody+1))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
		}
		truncated := false
		if len(body) > maxLoggedBody {
			body = body[:maxLoggedBody]
			truncated = true
		}

		headers := make(map[string]string, len(c.Request.Header))
		for k, v := range c.Request.Header {
			val := strings.Join(v, ",")
			if strings.EqualFold(k, HeaderAPIKey) {
				val = "[REDACTED]"
			}
			headers[k] = val
		}

		c.Next()

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("correlation_id", GetCorrelationID(c)).
			Interface("headers", headers).
			Str("body", string(body)).
			Bool("body_truncated", truncated).
			Msg("request")
	}
}
