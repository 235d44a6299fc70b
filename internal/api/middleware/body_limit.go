package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"siwes-logbook/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// maxBytes 需大于附件上限，留出表单字段的余量
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()

		// Handler 未写响应时兜底
		if c.IsAborted() || c.Writer.Written() {
			return
		}
		for _, e := range c.Errors {
			var mbe *http.MaxBytesError
			if errors.As(e.Err, &mbe) {
				response.TooLarge(c)
				return
			}
		}
	}
}
