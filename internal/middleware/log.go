package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"prison-records/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 请求体超过这个长度就不写进日志
const maxLoggedBody = 2000

// RequestLogger 记录每个请求的方法、路径、状态码和耗时。
// 写操作（非 GET）额外记录一条 action，JSON 请求体较短时一并写入。
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	log := logging.OrNop(logger)
	return func(c *gin.Context) {
		start := time.Now()

		// 读取请求体（上传文件不读）
		var bodyBytes []byte
		if c.Request.Method != http.MethodGet && c.Request.Body != nil &&
			strings.HasPrefix(c.ContentType(), "application/json") {
			bodyBytes, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBody+1))
			rest := c.Request.Body
			c.Request.Body = struct {
				io.Reader
				io.Closer
			}{io.MultiReader(bytes.NewReader(bodyBytes), rest), rest}
		}

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case c.Request.Method == http.MethodGet:
			log.Debug("request", fields...)
		default:
			action := c.Request.Method + " " + c.Request.URL.Path
			if len(bodyBytes) > 0 && len(bodyBytes) <= maxLoggedBody {
				action += " " + string(bodyBytes)
			}
			log.Info("request", append(fields, zap.String("action", action))...)
		}
	}
}
