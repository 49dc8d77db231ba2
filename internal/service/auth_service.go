package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"sps-logbook/config"
	"sps-logbook/internal/dto"
	"sps-logbook/internal/model"
	"sps-logbook/internal/repository"
	"sps-logbook/internal/session"
	"sps-logbook/pkg/authz"
	"sps-logbook/pkg/jwt"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials       = errors.New("用户名或密码错误")
	ErrUserNotFound             = errors.New("用户不存在")
	ErrDuplicateUsername        = errors.New("用户名已存在")
	ErrUnauthorizedRegistration = errors.New("注册该访问类别需要有效的授权码")
	ErrInvalidUsername          = errors.New("用户名不能为空且不超过 50 个字符")
	ErrPasswordTooShort         = errors.New("密码长度不能少于 4 个字符")
	ErrPasswordMismatch         = errors.New("两次输入的密码不一致")
	ErrInvalidAccessClass       = errors.New("无效的访问类别")
	ErrInvalidRefreshToken      = errors.New("Refresh Token 无效或已过期")
)

const (
	maxUsernameLen    = 50
	minPasswordLen    = 4
	unknownRegistrant = "unknown"
)

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Register registeredBy 为空时记为 unknown
	Register(ctx context.Context, req *dto.RegisterRequest, registeredBy string) (*dto.UserResponse, error)
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
	RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, sess *session.Session, jti string, exp time.Time, refreshToken string) error
	// EnsureAdmin 启动时确保内置管理员存在
	EnsureAdmin(ctx context.Context) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	sessions  session.Store
	blacklist TokenBlacklist
	policy    authz.Policy
	logger    *zap.Logger

	// comparePassword 默认 bcrypt.CompareHashAndPassword，测试中可替换
	comparePassword func(hash, password []byte) error
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(d Deps) AuthService {
	return &authService{
		cfg:       d.Config,
		repo:      d.Repo,
		jwtMgr:    d.JWT,
		sessions:  d.Sessions,
		blacklist: d.Blacklist,
		policy:    d.Policy,
		logger:    d.Logger,

		comparePassword: bcrypt.CompareHashAndPassword,
	}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// dummyPasswordHash 用户不存在时用于比对的固定哈希，使两种失败耗时一致
func dummyPasswordHash() []byte {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("sps-logbook-dummy-password"), bcrypt.DefaultCost)
	})
	return dummyHash
}

// ──────── Login ────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户（不区分"用户不存在"与"密码错误"）
	user, err := s.repo.User.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 仍执行一次 bcrypt 比对，避免通过耗时探测用户名是否存在
			_ = s.comparePassword(dummyPasswordHash(), []byte(req.Password))
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := s.comparePassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 新会话：初始页面由访问类别决定
	sess := s.sessionFor(user, jwt.NewSessionID())
	st := session.NewState()
	st.ActivePage = sess.DefaultPage()
	if err := s.sessions.Save(ctx, sess.ID, st); err != nil {
		s.logger.Error("保存会话状态失败", zap.Error(err))
		return nil, err
	}

	return s.issueTokens(user, sess, st, req.RememberMe)
}

// ──────── Register ────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest, registeredBy string) (*dto.UserResponse, error) {
	// 1. 访问类别与授权码优先校验，未通过时不触碰存储
	class, err := model.ParseAccessClass(req.AccessClass)
	if err != nil {
		return nil, ErrInvalidAccessClass
	}
	if class.Elevated() && !s.policy.Verify(req.AuthCode, authz.PurposeRegistration) {
		return nil, ErrUnauthorizedRegistration
	}

	// 2. 表单校验
	username := strings.TrimSpace(req.Username)
	if username == "" || utf8.RuneCountInString(username) > maxUsernameLen {
		return nil, ErrInvalidUsername
	}
	if err := validateNewPassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}

	// 3. 写入；用户名唯一由主键保证
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	if registeredBy == "" {
		registeredBy = unknownRegistrant
	}
	now := time.Now()
	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		AccessClass:  class,
		RegisteredBy: registeredBy,
		RegisteredAt: now,
		UpdatedAt:    now,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		s.logger.Error("创建用户失败", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户注册成功",
		zap.String("username", username),
		zap.String("access_class", string(class)),
		zap.String("registered_by", registeredBy),
	)
	resp := toUserResponse(user, s.cfg.Admin.Username)
	return &resp, nil
}

// ──────── ResetPassword ────────

func (s *authService) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if err := validateNewPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	username := strings.TrimSpace(req.Username)
	if err := s.repo.User.UpdatePassword(ctx, username, string(hash)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("更新密码失败", zap.String("username", username), zap.Error(err))
		return err
	}

	s.logger.Info("密码已重置", zap.String("username", username))
	return nil
}

// ──────── RefreshToken ────────

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidRefreshToken
	}
	if s.isBlacklisted(ctx, claims.ID) {
		return nil, ErrInvalidRefreshToken
	}

	// 用户可能已不存在；访问类别以存储为准
	user, err := s.repo.User.GetByUsername(ctx, claims.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, err
	}

	// 旧 Refresh Token 单次有效
	s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)

	sess := s.sessionFor(user, claims.SessionID)
	st, err := s.sessions.Load(ctx, sess.ID)
	if err != nil {
		s.logger.Error("读取会话状态失败", zap.Error(err))
		return nil, err
	}
	return s.issueTokens(user, sess, st, claims.RememberMe)
}

// ──────── Logout ────────

func (s *authService) Logout(ctx context.Context, sess *session.Session, jti string, exp time.Time, refreshToken string) error {
	s.revoke(ctx, jti, exp)
	if refreshToken != "" {
		if claims, err := s.jwtMgr.ParseToken(refreshToken); err == nil && claims.SessionID == sess.ID {
			s.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
		}
	}

	// 会话结束时解锁状态随之失效
	if err := s.sessions.Delete(ctx, sess.ID); err != nil {
		s.logger.Warn("删除会话状态失败", zap.String("session_id", sess.ID), zap.Error(err))
	}
	return nil
}

// ──────── EnsureAdmin ────────

func (s *authService) EnsureAdmin(ctx context.Context) error {
	name := s.cfg.Admin.Username
	if _, err := s.repo.User.GetByUsername(ctx, name); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.Admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	err = s.repo.User.Create(ctx, &model.User{
		Username:     name,
		PasswordHash: string(hash),
		AccessClass:  model.AccessBoth,
		RegisteredBy: "system",
		RegisteredAt: now,
		UpdatedAt:    now,
	})
	if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}

	s.logger.Info("已创建内置管理员", zap.String("username", name))
	return nil
}

// ── 内部辅助 ──

func (s *authService) sessionFor(user *model.User, sid string) *session.Session {
	return &session.Session{
		ID:          sid,
		Username:    user.Username,
		AccessClass: user.AccessClass,
		IsAdmin:     user.Username == s.cfg.Admin.Username,
	}
}

func (s *authService) issueTokens(user *model.User, sess *session.Session, st *session.State, rememberMe bool) (*dto.TokenResponse, error) {
	id := jwt.Identity{
		Username:    sess.Username,
		AccessClass: string(sess.AccessClass),
		IsAdmin:     sess.IsAdmin,
		SessionID:   sess.ID,
	}

	accessToken, err := s.jwtMgr.GenerateAccessToken(id)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(id, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         toUserResponse(user, s.cfg.Admin.Username),
		Session:      toSessionResponse(sess, st),
	}, nil
}

func (s *authService) isBlacklisted(ctx context.Context, jti string) bool {
	if s.blacklist == nil {
		return false
	}
	hit, err := s.blacklist.IsBlacklisted(ctx, jti)
	if err != nil {
		s.logger.Warn("查询 Token 黑名单失败", zap.Error(err))
		return false
	}
	return hit
}

func (s *authService) revoke(ctx context.Context, jti string, exp time.Time) {
	if s.blacklist == nil || jti == "" {
		return
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(exp)); err != nil {
		s.logger.Warn("Token 加入黑名单失败", zap.Error(err))
	}
}

func validateNewPassword(password, confirm string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}
