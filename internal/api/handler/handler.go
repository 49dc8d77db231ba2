package handler

import "sps-logbook/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth    *AuthHandler
	Session *SessionHandler
	Entry   *EntryHandler
	Report  *ReportHandler
	User    *UserHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:    NewAuthHandler(svc.Auth),
		Session: NewSessionHandler(svc.Session),
		Entry:   NewEntryHandler(svc.Entry),
		Report:  NewReportHandler(svc.Report),
		User:    NewUserHandler(svc.User),
	}
}
