package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"sps-logbook/internal/dto"
	"sps-logbook/internal/session"
)

// ── 会话模块业务错误 ──

var (
	ErrInvalidPage   = errors.New("无效的页面")
	ErrPageForbidden = errors.New("当前访问类别无权进入该页面")
)

// SessionService 会话页面路由
type SessionService interface {
	Get(ctx context.Context, sess *session.Session) (*dto.SessionResponse, error)
	// SwitchPage page 为空时对 both 类别在录入页与报表页间切换
	SwitchPage(ctx context.Context, sess *session.Session, page string) (*dto.SessionResponse, error)
}

type sessionService struct {
	store  session.Store
	logger *zap.Logger
}

// NewSessionService 创建 SessionService 实例
func NewSessionService(store session.Store, logger *zap.Logger) SessionService {
	return &sessionService{store: store, logger: logger}
}

func (s *sessionService) Get(ctx context.Context, sess *session.Session) (*dto.SessionResponse, error) {
	st, err := s.store.Load(ctx, sess.ID)
	if err != nil {
		s.logger.Error("读取会话状态失败", zap.String("session_id", sess.ID), zap.Error(err))
		return nil, err
	}
	resp := toSessionResponse(sess, st)
	return &resp, nil
}

func (s *sessionService) SwitchPage(ctx context.Context, sess *session.Session, page string) (*dto.SessionResponse, error) {
	st, err := s.store.Load(ctx, sess.ID)
	if err != nil {
		s.logger.Error("读取会话状态失败", zap.String("session_id", sess.ID), zap.Error(err))
		return nil, err
	}

	var target session.Page
	if strings.TrimSpace(page) == "" {
		target = sess.Toggle(sess.ActivePage(st))
	} else {
		target, err = session.ParsePage(strings.TrimSpace(page))
		if err != nil {
			return nil, ErrInvalidPage
		}
		if !sess.CanAccess(target) {
			return nil, ErrPageForbidden
		}
	}

	st.ActivePage = target
	if err := s.store.Save(ctx, sess.ID, st); err != nil {
		s.logger.Error("保存会话状态失败", zap.String("session_id", sess.ID), zap.Error(err))
		return nil, err
	}
	resp := toSessionResponse(sess, st)
	return &resp, nil
}

func toSessionResponse(sess *session.Session, st *session.State) dto.SessionResponse {
	allowed := sess.AllowedPages()
	pages := make([]string, 0, len(allowed))
	for _, p := range allowed {
		pages = append(pages, string(p))
	}
	return dto.SessionResponse{
		Username:     sess.Username,
		AccessClass:  string(sess.AccessClass),
		IsAdmin:      sess.IsAdmin,
		ActivePage:   string(sess.ActivePage(st)),
		AllowedPages: pages,
		CanToggle:    sess.AccessClass.CanEnter() && sess.AccessClass.CanReport(),
	}
}
