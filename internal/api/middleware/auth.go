package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sps-logbook/internal/model"
	"sps-logbook/internal/session"
	"sps-logbook/pkg/jwt"
	"sps-logbook/pkg/response"
)

// 上下文键
const (
	CtxSession  = "session"
	CtxTokenID  = "token_jti"
	CtxTokenExp = "token_exp"
)

// TokenChecker Token 黑名单查询
type TokenChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token，注入 *session.Session
// blacklist 为 nil 时跳过黑名单检查
func JWTAuth(jwtMgr *jwt.Manager, blacklist TokenChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, 10002, "缺少或无效的认证头")
			c.Abort()
			return
		}

		if !authenticate(c, jwtMgr, blacklist, logger, token) {
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalJWTAuth 携带有效 Token 时注入会话，否则按匿名请求放行
func OptionalJWTAuth(jwtMgr *jwt.Manager, blacklist TokenChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if !authenticate(c, jwtMgr, blacklist, logger, token) {
				c.Abort()
				return
			}
		}
		c.Next()
	}
}

// PageAuth 页面权限中间件：会话的访问类别须允许该页面
func PageAuth(page session.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := sessionFrom(c)
		if !ok {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}
		if !sess.CanAccess(page) {
			response.Forbidden(c, 10003, "当前访问类别无权访问该页面")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminOnly 仅内置管理员
func AdminOnly() gin.HandlerFunc {
	return PageAuth(session.PageUsers)
}

// ── 内部辅助 ──

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authenticate 校验 Token 并注入会话；失败时已写入响应
func authenticate(c *gin.Context, jwtMgr *jwt.Manager, blacklist TokenChecker, logger *zap.Logger, token string) bool {
	claims, err := jwtMgr.ParseToken(token)
	if err != nil {
		response.Unauthorized(c, 10002, "Token 无效或已过期")
		return false
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		response.Unauthorized(c, 10002, "Token 类型无效")
		return false
	}

	// Redis 出错时降级放行
	if blacklist != nil {
		hit, err := blacklist.IsBlacklisted(c.Request.Context(), claims.ID)
		if err != nil {
			logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		} else if hit {
			response.Unauthorized(c, 10002, "Token 已失效")
			return false
		}
	}

	class, err := model.ParseAccessClass(claims.AccessClass)
	if err != nil {
		response.Unauthorized(c, 10002, "Token 无效或已过期")
		return false
	}

	c.Set(CtxSession, &session.Session{
		ID:          claims.SessionID,
		Username:    claims.Username,
		AccessClass: class,
		IsAdmin:     claims.IsAdmin,
	})
	c.Set(CtxTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(CtxTokenExp, claims.ExpiresAt.Time)
	}
	return true
}

func sessionFrom(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(CtxSession)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}
