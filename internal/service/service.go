package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sps-logbook/config"
	"sps-logbook/internal/dto"
	"sps-logbook/internal/model"
	"sps-logbook/internal/repository"
	"sps-logbook/internal/session"
	"sps-logbook/pkg/authz"
	"sps-logbook/pkg/jwt"
	"sps-logbook/pkg/metrics"
)

// TokenBlacklist Token 黑名单（由 pkg/redis 实现，可为 nil）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Clock 当前时间，测试中可替换
type Clock func() time.Time

// Deps Service 层依赖
type Deps struct {
	Config    *config.Config
	Repo      *repository.Repository
	JWT       *jwt.Manager
	Sessions  session.Store
	Blacklist TokenBlacklist
	Policy    authz.Policy
	Catalog   *model.Catalog
	Metrics   *metrics.Metrics
	Clock     Clock
	Logger    *zap.Logger
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth    AuthService
	Session SessionService
	Entry   EntryService
	Report  ReportService
	User    UserService
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Catalog == nil {
		d.Catalog = model.DefaultCatalog()
	}
	return &Service{
		Auth:    NewAuthService(d),
		Session: NewSessionService(d.Sessions, d.Logger),
		Entry:   NewEntryService(d),
		Report:  NewReportService(d),
		User:    NewUserService(d.Config, d.Repo, d.Logger),
	}
}

// ── 公共辅助 ──

// today 报表时区下的当前日期
func today(clock Clock, loc *time.Location) model.Date {
	return model.DateOf(clock().In(loc))
}

// ownerScope entry 类别的非管理员只能看到本人提交的记录
func ownerScope(sess *session.Session) string {
	if sess.IsAdmin || sess.AccessClass.CanReport() {
		return ""
	}
	return sess.Username
}

func toEntryResponse(r *model.StationRecord) dto.EntryResponse {
	return dto.EntryResponse{
		EntryDate:               r.EntryDate.String(),
		Zone:                    string(r.Zone),
		Station:                 r.Station,
		SubmittedBy:             r.SubmittedBy,
		TotalPumps:              r.TotalPumps,
		WorkingPumps:            r.WorkingPumps,
		StandbyPumps:            r.StandbyPumps,
		StandbyUnderMaintenance: r.StandbyUnderMaintenance,
		Remarks:                 r.Remarks,
		PumpingVolume:           r.PumpingVolume,
		IncomeVolume:            r.IncomeVolume,
		SupplyVolume:            r.SupplyVolume,
		Critical:                r.Critical(),
		CreatedAt:               r.CreatedAt,
		UpdatedAt:               r.UpdatedAt,
	}
}

func toEntryResponses(recs []model.StationRecord) []dto.EntryResponse {
	out := make([]dto.EntryResponse, 0, len(recs))
	for i := range recs {
		out = append(out, toEntryResponse(&recs[i]))
	}
	return out
}

func toUserResponse(u *model.User, adminName string) dto.UserResponse {
	return dto.UserResponse{
		Username:     u.Username,
		AccessClass:  string(u.AccessClass),
		IsAdmin:      u.Username == adminName,
		RegisteredBy: u.RegisteredBy,
		RegisteredAt: u.RegisteredAt,
	}
}
