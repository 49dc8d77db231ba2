package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sps-logbook/internal/dto"
	"sps-logbook/internal/model"
	"sps-logbook/internal/repository"
	"sps-logbook/internal/report"
	"sps-logbook/internal/session"
	"sps-logbook/pkg/authz"
	pkgerrors "sps-logbook/pkg/errors"
	"sps-logbook/pkg/metrics"
)

// ── 日志录入模块业务错误 ──

var (
	ErrInvalidEntryDate = errors.New("日期格式应为 YYYY-MM-DD")
	ErrInvalidZone      = errors.New("无效的区域")
	ErrStationNotInZone = errors.New("泵站不属于所选区域")
	ErrNegativeValue    = errors.New("泵数量与水量不能为负数")
	ErrRemarksTooLong   = errors.New("备注不能超过 500 个字符")
	ErrUnlockDenied     = errors.New("授权码错误，无法覆盖已有记录")
	ErrNotBlocked       = errors.New("该记录当前无需授权")
	ErrEntryNotFound    = errors.New("日志记录不存在")
	ErrNotOwner         = errors.New("只能删除本人提交的记录")
)

// 提交结果
const (
	OutcomeCreated   = "created"
	OutcomeReplaced  = "replaced"
	OutcomeUnchanged = "unchanged"
	OutcomeConflict  = "conflict"
	OutcomeDenied    = "denied"
	OutcomeInvalid   = "invalid"
)

// ConflictError 撞键或授权失败，携带键及其在会话中的状态
type ConflictError struct {
	Key   model.RecordKey
	State session.KeyState
	Err   error
}

func (e *ConflictError) Error() string { return e.Err.Error() }

func (e *ConflictError) Unwrap() error { return e.Err }

// IsEntryValidation 是否为表单校验错误
func IsEntryValidation(err error) bool {
	return errors.Is(err, ErrInvalidEntryDate) ||
		errors.Is(err, ErrInvalidZone) ||
		errors.Is(err, ErrStationNotInZone) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrRemarksTooLong)
}

// EntryService 日志录入业务接口
type EntryService interface {
	// Submit 写入一条日志；撞键时按会话中的解锁状态或随附授权码决定是否覆盖
	Submit(ctx context.Context, sess *session.Session, req *dto.SubmitEntryRequest) (*dto.SubmitEntryResponse, error)
	// Unlock 对处于 blocked 状态的键校验授权码
	Unlock(ctx context.Context, sess *session.Session, req *dto.UnlockEntryRequest) (*dto.UnlockEntryResponse, error)
	Get(ctx context.Context, sess *session.Session, date, station string) (*dto.EntryResponse, error)
	Delete(ctx context.Context, sess *session.Session, date, station string) error
	Recent(ctx context.Context, sess *session.Session) ([]dto.EntryResponse, error)
	// Pending date 为空时取今天
	Pending(ctx context.Context, zone, date string) (*dto.PendingResponse, error)
	Catalog() *dto.CatalogResponse
}

type entryService struct {
	repo     *repository.Repository
	sessions session.Store
	policy   authz.Policy
	catalog  *model.Catalog
	metrics  *metrics.Metrics
	clock    Clock
	loc      *time.Location
	limit    int
	logger   *zap.Logger
}

// NewEntryService 创建 EntryService 实例
func NewEntryService(d Deps) EntryService {
	return &entryService{
		repo:     d.Repo,
		sessions: d.Sessions,
		policy:   d.Policy,
		catalog:  d.Catalog,
		metrics:  d.Metrics,
		clock:    d.Clock,
		loc:      d.Config.Report.Location(),
		limit:    d.Config.Report.RecentLimit,
		logger:   d.Logger,
	}
}

// ──────── Submit ────────

func (s *entryService) Submit(ctx context.Context, sess *session.Session, req *dto.SubmitEntryRequest) (*dto.SubmitEntryResponse, error) {
	// 1. 规范化与校验
	rec, err := s.buildRecord(req)
	if err != nil {
		s.metrics.ObserveSubmission(OutcomeInvalid)
		return nil, err
	}
	rec.SubmittedBy = sess.Username
	key := rec.Key()

	// 2. 原子插入（不存在才写入）
	err = s.repo.Record.Insert(ctx, rec)
	if err == nil {
		return s.created(ctx, sess, key, rec), nil
	}
	if !errors.Is(err, pkgerrors.ErrKeyConflict) {
		s.logger.Error("写入日志失败", zap.String("key", key.String()), zap.Error(err))
		return nil, err
	}

	// 3. 撞键：读取已有记录
	existing, err := s.repo.Record.Get(ctx, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 期间已被删除，重试一次插入
		if err := s.repo.Record.Insert(ctx, rec); err == nil {
			return s.created(ctx, sess, key, rec), nil
		} else if !errors.Is(err, pkgerrors.ErrKeyConflict) {
			return nil, err
		}
		existing, err = s.repo.Record.Get(ctx, key)
	}
	if err != nil {
		s.logger.Error("读取已有日志失败", zap.String("key", key.String()), zap.Error(err))
		return nil, err
	}

	// 4. 内容一致的重复提交不写入、不消耗授权
	if existing.SameContent(rec) {
		s.metrics.ObserveSubmission(OutcomeUnchanged)
		return s.result(OutcomeUnchanged, existing), nil
	}

	st, err := s.sessions.Load(ctx, sess.ID)
	if err != nil {
		s.logger.Error("读取会话状态失败", zap.String("session_id", sess.ID), zap.Error(err))
		return nil, err
	}

	// 5. 已授权：先消耗授权再覆盖，保证授权只用一次
	authorized := st.Consume(key)
	if !authorized && req.UnlockCode != "" {
		granted := s.policy.Verify(req.UnlockCode, authz.PurposeEntryOverride)
		s.metrics.ObserveUnlock(granted)
		if !granted {
			return nil, s.block(ctx, sess, st, key, ErrUnlockDenied)
		}
		st.Clear(key)
		authorized = true
	}
	if !authorized {
		return nil, s.block(ctx, sess, st, key, pkgerrors.ErrKeyConflict)
	}
	if err := s.sessions.Save(ctx, sess.ID, st); err != nil {
		s.logger.Error("保存会话状态失败", zap.String("session_id", sess.ID), zap.Error(err))
		return nil, err
	}

	// 6. 整体覆盖，保留原创建时间
	rec.CreatedAt = existing.CreatedAt
	if err := s.repo.Record.Replace(ctx, rec); err != nil {
		s.logger.Error("覆盖日志失败", zap.String("key", key.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("日志已覆盖",
		zap.String("entry_date", rec.EntryDate.String()),
		zap.String("station", rec.Station),
		zap.String("username", sess.Username),
		zap.String("previous_submitter", existing.SubmittedBy),
	)
	s.metrics.ObserveSubmission(OutcomeReplaced)
	return s.result(OutcomeReplaced, rec), nil
}

// created 新插入成功：清除该键残留的会话状态
// 残留的 unlocked 针对的是已被删除的旧记录，不能用于覆盖之后他人写入的新记录
func (s *entryService) created(ctx context.Context, sess *session.Session, key model.RecordKey, rec *model.StationRecord) *dto.SubmitEntryResponse {
	s.metrics.ObserveSubmission(OutcomeCreated)

	st, err := s.sessions.Load(ctx, sess.ID)
	if err != nil {
		s.logger.Warn("读取会话状态失败，未清除键状态", zap.String("key", key.String()), zap.Error(err))
		return s.result(OutcomeCreated, rec)
	}
	if st.Status(key) == "" {
		return s.result(OutcomeCreated, rec)
	}
	st.Clear(key)
	if err := s.sessions.Save(ctx, sess.ID, st); err != nil {
		s.logger.Warn("保存会话状态失败，未清除键状态", zap.String("key", key.String()), zap.Error(err))
	}
	return s.result(OutcomeCreated, rec)
}

// block 将键置为 blocked 并返回冲突错误
func (s *entryService) block(ctx context.Context, sess *session.Session, st *session.State, key model.RecordKey, cause error) error {
	st.Block(key)
	if err := s.sessions.Save(ctx, sess.ID, st); err != nil {
		s.logger.Error("保存会话状态失败", zap.String("session_id", sess.ID), zap.Error(err))
		return err
	}
	if errors.Is(cause, ErrUnlockDenied) {
		s.metrics.ObserveSubmission(OutcomeDenied)
	} else {
		s.metrics.ObserveSubmission(OutcomeConflict)
	}
	return &ConflictError{Key: key, State: session.KeyBlocked, Err: cause}
}

func (s *entryService) result(outcome string, rec *model.StationRecord) *dto.SubmitEntryResponse {
	return &dto.SubmitEntryResponse{Outcome: outcome, Entry: toEntryResponse(rec)}
}

// buildRecord 解析请求并按区域规则归零不适用的水量
func (s *entryService) buildRecord(req *dto.SubmitEntryRequest) (*model.StationRecord, error) {
	key, zone, err := s.resolveKey(req.EntryDate, req.Zone, req.Station)
	if err != nil {
		return nil, err
	}

	if req.TotalPumps < 0 || req.WorkingPumps < 0 || req.StandbyPumps < 0 || req.StandbyUnderMaintenance < 0 {
		return nil, ErrNegativeValue
	}
	for _, v := range []float64{req.PumpingVolume, req.IncomeVolume, req.SupplyVolume} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrNegativeValue
		}
	}

	// 长度只约束用户输入部分，自动追加的提示语不计入
	remarks := strings.TrimSpace(req.Remarks)
	if utf8.RuneCountInString(remarks) > model.MaxRemarksLen {
		return nil, ErrRemarksTooLong
	}
	if req.StandbyPumps == req.StandbyUnderMaintenance && !strings.Contains(remarks, model.NoStandbyRemark) {
		if remarks != "" {
			remarks += "\n"
		}
		remarks += model.NoStandbyRemark
	}

	rec := &model.StationRecord{
		EntryDate:               key.Date,
		Station:                 key.Station,
		Zone:                    zone,
		TotalPumps:              req.TotalPumps,
		WorkingPumps:            req.WorkingPumps,
		StandbyPumps:            req.StandbyPumps,
		StandbyUnderMaintenance: req.StandbyUnderMaintenance,
		Remarks:                 remarks,
	}
	if zone.IsPlant() {
		rec.IncomeVolume = req.IncomeVolume
		rec.SupplyVolume = req.SupplyVolume
	} else {
		rec.PumpingVolume = req.PumpingVolume
	}
	return rec, nil
}

// resolveKey 按目录规范化区域与泵站
func (s *entryService) resolveKey(date, zone, station string) (model.RecordKey, model.Zone, error) {
	d, err := model.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return model.RecordKey{}, "", ErrInvalidEntryDate
	}
	z, err := model.ParseZone(zone)
	if err != nil {
		return model.RecordKey{}, "", ErrInvalidZone
	}
	name, err := s.catalog.Resolve(z, station)
	if err != nil {
		return model.RecordKey{}, "", ErrStationNotInZone
	}
	return model.RecordKey{Date: d, Station: name}, z, nil
}

// lookupKey 按路径参数定位记录，不在目录中的名称按原样使用
func (s *entryService) lookupKey(date, station string) (model.RecordKey, error) {
	d, err := model.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return model.RecordKey{}, ErrInvalidEntryDate
	}
	name, _, ok := s.catalog.Lookup(station)
	if !ok {
		name = strings.TrimSpace(station)
	}
	return model.RecordKey{Date: d, Station: name}, nil
}

// ──────── Unlock ────────

func (s *entryService) Unlock(ctx context.Context, sess *session.Session, req *dto.UnlockEntryRequest) (*dto.UnlockEntryResponse, error) {
	key, _, err := s.resolveKey(req.EntryDate, req.Zone, req.Station)
	if err != nil {
		return nil, err
	}

	st, err := s.sessions.Load(ctx, sess.ID)
	if err != nil {
		s.logger.Error("读取会话状态失败", zap.String("session_id", sess.ID), zap.Error(err))
		return nil, err
	}
	if st.Status(key) != session.KeyBlocked {
		return nil, ErrNotBlocked
	}

	// 授权失败保持 blocked
	granted := s.policy.Verify(req.UnlockCode, authz.PurposeEntryOverride)
	s.metrics.ObserveUnlock(granted)
	if !granted {
		s.logger.Warn("覆盖授权失败", zap.String("key", key.String()), zap.String("username", sess.Username))
		return nil, &ConflictError{Key: key, State: session.KeyBlocked, Err: ErrUnlockDenied}
	}

	st.Unlock(key)
	if err := s.sessions.Save(ctx, sess.ID, st); err != nil {
		s.logger.Error("保存会话状态失败", zap.String("session_id", sess.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("覆盖授权通过", zap.String("key", key.String()), zap.String("username", sess.Username))
	return &dto.UnlockEntryResponse{Key: key.String(), KeyState: string(session.KeyUnlocked)}, nil
}

// ──────── Get / Delete ────────

func (s *entryService) Get(ctx context.Context, sess *session.Session, date, station string) (*dto.EntryResponse, error) {
	key, err := s.lookupKey(date, station)
	if err != nil {
		return nil, err
	}
	rec, err := s.repo.Record.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	if owner := ownerScope(sess); owner != "" && rec.SubmittedBy != owner {
		return nil, ErrEntryNotFound
	}
	resp := toEntryResponse(rec)
	return &resp, nil
}

func (s *entryService) Delete(ctx context.Context, sess *session.Session, date, station string) error {
	key, err := s.lookupKey(date, station)
	if err != nil {
		return err
	}

	rec, err := s.repo.Record.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	if !sess.IsAdmin && rec.SubmittedBy != sess.Username {
		return ErrNotOwner
	}

	if err := s.repo.Record.Delete(ctx, key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		s.logger.Error("删除日志失败", zap.String("key", key.String()), zap.Error(err))
		return err
	}

	// 键已释放，会话中的阻塞状态一并清除
	if st, err := s.sessions.Load(ctx, sess.ID); err == nil && st.Status(key) != "" {
		st.Clear(key)
		if err := s.sessions.Save(ctx, sess.ID, st); err != nil {
			s.logger.Warn("保存会话状态失败", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}

	s.logger.Info("日志已删除",
		zap.String("entry_date", key.Date.String()),
		zap.String("station", key.Station),
		zap.String("username", sess.Username),
	)
	return nil
}

// ──────── Recent / Pending / Catalog ────────

func (s *entryService) Recent(ctx context.Context, sess *session.Session) ([]dto.EntryResponse, error) {
	owner := sess.Username
	if sess.IsAdmin {
		owner = ""
	}
	recs, err := s.repo.Record.Recent(ctx, owner, s.limit)
	if err != nil {
		s.logger.Error("查询最近日志失败", zap.Error(err))
		return nil, err
	}
	return toEntryResponses(recs), nil
}

func (s *entryService) Pending(ctx context.Context, zone, date string) (*dto.PendingResponse, error) {
	z, err := model.ParseZone(zone)
	if err != nil {
		return nil, ErrInvalidZone
	}
	d := today(s.clock, s.loc)
	if strings.TrimSpace(date) != "" {
		if d, err = model.ParseDate(strings.TrimSpace(date)); err != nil {
			return nil, ErrInvalidEntryDate
		}
	}

	recs, err := s.repo.Record.Scan(ctx, repository.RecordFilter{
		Dates: []model.Date{d},
		Zones: []model.Zone{z},
	})
	if err != nil {
		s.logger.Error("查询日志失败", zap.Error(err))
		return nil, err
	}

	return &dto.PendingResponse{
		Zone:     string(z),
		Date:     d.String(),
		Stations: report.Pending(s.catalog, z, d, recs),
	}, nil
}

func (s *entryService) Catalog() *dto.CatalogResponse {
	zones := s.catalog.Zones()
	resp := &dto.CatalogResponse{Zones: make([]dto.CatalogZone, 0, len(zones))}
	for _, z := range zones {
		resp.Zones = append(resp.Zones, dto.CatalogZone{
			Zone:     string(z),
			Group:    string(z.Group()),
			Stations: s.catalog.Stations(z),
		})
	}
	return resp
}
