package authz

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"sps-logbook/config"
)

// Purpose 授权码用途
type Purpose string

const (
	PurposeRegistration  Purpose = "registration"   // 注册 report/both 账号
	PurposeEntryOverride Purpose = "entry_override" // 覆盖已有日志记录
)

// Policy 带外授权码校验
type Policy interface {
	Verify(code string, purpose Purpose) bool
}

// StaticPolicy 基于配置的授权码，每种用途一个
// 配置值以 $2 开头时按 bcrypt 哈希比对，否则常量时间比对明文
type StaticPolicy struct {
	secrets map[Purpose]string
}

// NewStaticPolicy 从配置创建授权策略
func NewStaticPolicy(cfg *config.AuthzConfig) *StaticPolicy {
	return &StaticPolicy{secrets: map[Purpose]string{
		PurposeRegistration:  cfg.RegistrationCode,
		PurposeEntryOverride: cfg.OverrideCode,
	}}
}

// Verify 空授权码或未配置的用途一律不通过
func (p *StaticPolicy) Verify(code string, purpose Purpose) bool {
	secret := p.secrets[purpose]
	if code == "" || secret == "" {
		return false
	}
	if strings.HasPrefix(secret, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(code)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(code)) == 1
}
