package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"sps-logbook/internal/api/middleware"
	"sps-logbook/internal/session"
	"sps-logbook/pkg/response"
)

// MustGetSession 从 Gin 上下文中安全提取会话。
// 如果 JWT 中间件未正确注入会话，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := OptionalSession(c)
	if !ok {
		response.Unauthorized(c, 10002, "未认证")
		return nil, false
	}
	return sess, true
}

// OptionalSession 匿名请求返回 false，不写响应
func OptionalSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(middleware.CtxSession)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	if !ok || sess == nil || sess.Username == "" {
		return nil, false
	}
	return sess, true
}

// tokenMeta 当前 Access Token 的 jti 与过期时间
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString(middleware.CtxTokenID)
	exp, _ := c.Get(middleware.CtxTokenExp)
	t, _ := exp.(time.Time)
	return jti, t
}
