package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sps-logbook/internal/dto"
	"sps-logbook/internal/service"
	"sps-logbook/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Register 注册
// POST /api/v1/auth/register
// 携带有效 Token 时记录注册人，否则为 unknown
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	registeredBy := ""
	if sess, ok := OptionalSession(c); ok {
		registeredBy = sess.Username
	}

	user, err := h.authSvc.Register(c.Request.Context(), &req, registeredBy)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.Created(c, user)
}

// ResetPassword 重置密码
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), &req); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// RefreshToken 刷新 Token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.BadRequest(c, 10001, "缺少 Refresh Token")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	// 请求体可选
	var req dto.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	jti, exp := tokenMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), sess, jti, exp, req.RefreshToken); err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "用户名或密码错误")
	case errors.Is(err, service.ErrDuplicateUsername):
		response.Conflict(c, 11002, "用户名已存在")
	case errors.Is(err, service.ErrUnauthorizedRegistration):
		response.Forbidden(c, 11003, "注册该访问类别需要有效的授权码")
	case errors.Is(err, service.ErrInvalidUsername):
		response.BadRequest(c, 11004, err.Error())
	case errors.Is(err, service.ErrPasswordTooShort):
		response.BadRequest(c, 11005, err.Error())
	case errors.Is(err, service.ErrPasswordMismatch):
		response.BadRequest(c, 11006, err.Error())
	case errors.Is(err, service.ErrInvalidAccessClass):
		response.BadRequest(c, 11007, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11008, "用户不存在")
	case errors.Is(err, service.ErrInvalidRefreshToken):
		response.Error(c, http.StatusUnauthorized, 11009, "Refresh Token 无效或已过期")
	default:
		response.InternalError(c)
	}
}
