package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sps-logbook/config"
	"sps-logbook/internal/dto"
	"sps-logbook/internal/repository"
	"sps-logbook/pkg/export"
)

// userColumns 用户目录导出列
var userColumns = []string{"Username", "Access", "Registered By", "Registered At"}

// UserService 用户目录（仅管理员）
type UserService interface {
	List(ctx context.Context) ([]dto.UserResponse, error)
	Export(ctx context.Context, format string) (*dto.ExportFile, error)
}

type userService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{cfg: cfg, repo: repo, logger: logger}
}

// ──────── List ────────

func (s *userService) List(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.User.List(ctx)
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i], s.cfg.Admin.Username))
	}
	return out, nil
}

// ──────── Export ────────

func (s *userService) Export(ctx context.Context, format string) (*dto.ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, ErrExportFormat
	}
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	t := &export.Table{Title: "Registered Users", Columns: userColumns}
	for _, u := range users {
		t.AddRow(u.Username, u.AccessClass, u.RegisteredBy, u.RegisteredAt.Format(time.DateTime))
	}
	return renderExport(s.logger, f, t, fmt.Sprintf("sps_users.%s", f.Extension()))
}
