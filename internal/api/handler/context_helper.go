package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"siwes-logbook/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, CodeUnauthorized, "authentication required")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, CodeUnauthorized, "authentication required")
		return "", false
	}
	return s, true
}

// tokenInfo 当前 Token 的 jti 与过期时间（登出使用），缺失时返回零值
func tokenInfo(c *gin.Context) (string, time.Time) {
	jti := c.GetString("token_jti")
	exp, _ := c.Get("token_exp")
	t, _ := exp.(time.Time)
	return jti, t
}
