package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username   string `json:"username"    binding:"required"`
	Password   string `json:"password"    binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RegisterRequest 注册请求
// access_class 为 report / both 时必须提供 auth_code
type RegisterRequest struct {
	Username        string `json:"username"         binding:"required"`
	Password        string `json:"password"         binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	AccessClass     string `json:"access_class"     binding:"required"`
	AuthCode        string `json:"auth_code"`
}

// ResetPasswordRequest 重置密码请求
type ResetPasswordRequest struct {
	Username        string `json:"username"         binding:"required"`
	NewPassword     string `json:"new_password"     binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest 登出请求，refresh_token 可选，提供时一并作废
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}
