package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "github.com/xiebiao/booklibrary/pkg/errors"
	"github.com/xiebiao/booklibrary/pkg/response"
	"github.com/xiebiao/booklibrary/pkg/tracing"
)

// RequestIDHeader 请求ID头
const RequestIDHeader = "X-Request-ID"

// slowRequestThreshold 超过该耗时记录告警
const slowRequestThreshold = time.Second

// RequestLogger 请求日志中间件
// 生成(或沿用客户端传入的)请求ID,并把带request_id/trace_id的日志器放入Context
func RequestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 64 {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		fields := logrus.Fields{"request_id": requestID}
		if traceID := tracing.ExtractTraceID(c.Request.Context()); traceID != "" {
			fields["trace_id"] = traceID
		}
		entry := log.WithFields(fields)
		response.SetLogger(c, entry)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		entry = entry.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   latency.String(),
			"client_ip": c.ClientIP(),
		})

		switch {
		case status >= 500:
			entry.Error("请求处理失败")
		case latency > slowRequestThreshold:
			entry.Warn("慢请求")
		case status >= 400:
			entry.Info("请求被拒绝")
		default:
			entry.Info("请求完成")
		}
	}
}

// Recovery 捕获panic,返回统一的500响应
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		response.Logger(c).WithField("panic", recovered).Error("请求处理发生panic")
		response.Error(c, apperrors.ErrInternal)
	})
}
