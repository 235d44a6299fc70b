package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"siwes-logbook/pkg/redis"
	"siwes-logbook/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件（按 IP + 路由）
// rdb 为 nil 或 Redis 出错时降级放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Abort(c, http.StatusTooManyRequests, response.CodeTooManyRequests, "Too many attempts. Please try again later.")
			return
		}

		c.Next()
	}
}
