package dto

import (
	"bytes"
	"time"
)

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse    `json:"user"`
	Session      SessionResponse `json:"session"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	Username     string    `json:"username"`
	AccessClass  string    `json:"access_class"`
	IsAdmin      bool      `json:"is_admin"`
	RegisteredBy string    `json:"registered_by"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ── 会话 ──

// SessionResponse 当前会话
type SessionResponse struct {
	Username     string   `json:"username"`
	AccessClass  string   `json:"access_class"`
	IsAdmin      bool     `json:"is_admin"`
	ActivePage   string   `json:"active_page"`
	AllowedPages []string `json:"allowed_pages"`
	CanToggle    bool     `json:"can_toggle"`
}

// SwitchPageRequest 切换页面；page 为空时在录入页与报表页间切换
type SwitchPageRequest struct {
	Page string `json:"page"`
}

// ── 导出 ──

// ExportFile 导出文件，由 Handler 设置响应头后写出
type ExportFile struct {
	Buffer      *bytes.Buffer
	Filename    string
	ContentType string
}
