package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sps-logbook/internal/dto"
	"sps-logbook/internal/model"
	"sps-logbook/internal/repository"
	"sps-logbook/internal/report"
	"sps-logbook/internal/session"
	"sps-logbook/pkg/export"
)

// ── 报表模块业务错误 ──

var (
	ErrInvalidRange       = errors.New("无效的日期范围")
	ErrInvalidReportDate  = errors.New("日期格式应为 YYYY-MM-DD")
	ErrInvalidReportZone  = errors.New("无效的区域筛选")
	ErrInvalidExportTable = errors.New("导出表格应为 filtered、all 或 critical")
	ErrExportFormat       = errors.New("导出格式应为 csv、xlsx 或 pdf")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// 报表可见范围
const (
	ScopeAll = "all"
	ScopeOwn = "own"
)

// 可导出的表格
const (
	TableFiltered = "filtered"
	TableAll      = "all"
	TableCritical = "critical"
)

// entryColumns 日志明细导出列
var entryColumns = []string{
	"Date", "Zone", "User", "SPS Name",
	"Total Pumps", "Working Pumps", "Standby Pumps", "Standby U/M",
	"Remarks", "Pumping MLD", "Income MLD", "Supply MLD",
}

// ReportService 分析报表业务接口
// 每次调用重新扫描存储并全量重算，不做缓存
type ReportService interface {
	Summary(ctx context.Context, sess *session.Session, q *dto.ReportQuery) (*dto.SummaryResponse, error)
	Compare(ctx context.Context, sess *session.Session, req *dto.CompareRequest) (*report.Comparison, error)
	Critical(ctx context.Context, sess *session.Session, q *dto.ReportQuery) ([]dto.EntryResponse, error)
	Export(ctx context.Context, sess *session.Session, q *dto.ExportQuery) (*dto.ExportFile, error)
	ExportComparison(ctx context.Context, sess *session.Session, req *dto.CompareRequest) (*dto.ExportFile, error)
}

type reportService struct {
	repo   *repository.Repository
	clock  Clock
	loc    *time.Location
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(d Deps) ReportService {
	return &reportService{
		repo:   d.Repo,
		clock:  d.Clock,
		loc:    d.Config.Report.Location(),
		logger: d.Logger,
	}
}

// ──────── Summary ────────

func (s *reportService) Summary(ctx context.Context, sess *session.Session, q *dto.ReportQuery) (*dto.SummaryResponse, error) {
	f, err := s.parseFilter(q)
	if err != nil {
		return nil, err
	}
	recs, err := s.scan(ctx, sess, f)
	if err != nil {
		return nil, err
	}

	return &dto.SummaryResponse{
		Scope:  scopeOf(sess),
		Range:  *f.Range,
		Tables: report.Recompute(recs, f),
	}, nil
}

// ──────── Critical ────────

func (s *reportService) Critical(ctx context.Context, sess *session.Session, q *dto.ReportQuery) ([]dto.EntryResponse, error) {
	f, err := s.parseFilter(q)
	if err != nil {
		return nil, err
	}
	recs, err := s.scan(ctx, sess, f)
	if err != nil {
		return nil, err
	}
	return toEntryResponses(report.Critical(report.Apply(recs, f))), nil
}

// ──────── Compare ────────

func (s *reportService) Compare(ctx context.Context, sess *session.Session, req *dto.CompareRequest) (*report.Comparison, error) {
	first, err := model.ParseDate(strings.TrimSpace(req.FirstDate))
	if err != nil {
		return nil, ErrInvalidReportDate
	}
	second, err := model.ParseDate(strings.TrimSpace(req.SecondDate))
	if err != nil {
		return nil, ErrInvalidReportDate
	}
	f, err := parseZoneStation(req.Zone, req.Station)
	if err != nil {
		return nil, err
	}

	rf := repository.RecordFilter{
		Dates:       []model.Date{first, second},
		SubmittedBy: ownerScope(sess),
	}
	if f.Zone != "" {
		rf.Zones = []model.Zone{f.Zone}
	}
	recs, err := s.repo.Record.Scan(ctx, rf)
	if err != nil {
		s.logger.Error("查询日志失败", zap.Error(err))
		return nil, err
	}

	cmp := report.Compare(recs, first, second, f, req.AsPercent)
	return &cmp, nil
}

// ──────── Export ────────

func (s *reportService) Export(ctx context.Context, sess *session.Session, q *dto.ExportQuery) (*dto.ExportFile, error) {
	format, err := export.ParseFormat(q.Format)
	if err != nil {
		return nil, ErrExportFormat
	}
	table := strings.ToLower(strings.TrimSpace(q.Table))
	if table == "" {
		table = TableFiltered
	}

	var recs []model.StationRecord
	var title string
	switch table {
	case TableAll:
		recs, err = s.scanAll(ctx, sess)
		title = "SPS Log Data"
	case TableFiltered, TableCritical:
		var f report.Filter
		if f, err = s.parseFilter(&q.ReportQuery); err != nil {
			return nil, err
		}
		if recs, err = s.scan(ctx, sess, f); err != nil {
			return nil, err
		}
		recs = report.Apply(recs, f)
		title = fmt.Sprintf("SPS Log Data %s to %s", f.Range.Start, f.Range.End)
		if table == TableCritical {
			recs = report.Critical(recs)
			title = fmt.Sprintf("Critical Stations %s to %s", f.Range.Start, f.Range.End)
		}
	default:
		return nil, ErrInvalidExportTable
	}
	if err != nil {
		return nil, err
	}

	t := entriesTable(title, recs)
	filename := fmt.Sprintf("sps_%s_%s.%s", table, today(s.clock, s.loc), format.Extension())
	return s.render(format, t, filename)
}

func (s *reportService) ExportComparison(ctx context.Context, sess *session.Session, req *dto.CompareRequest) (*dto.ExportFile, error) {
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, ErrExportFormat
	}
	cmp, err := s.Compare(ctx, sess, req)
	if err != nil {
		return nil, err
	}

	t := comparisonTable(cmp)
	filename := fmt.Sprintf("sps_comparison_%s_%s.%s", cmp.First, cmp.Second, format.Extension())
	return s.render(format, t, filename)
}

func (s *reportService) render(format export.Format, t *export.Table, filename string) (*dto.ExportFile, error) {
	return renderExport(s.logger, format, t, filename)
}

// ── 内部辅助 ──

// renderExport 按格式渲染表格到内存
func renderExport(logger *zap.Logger, format export.Format, t *export.Table, filename string) (*dto.ExportFile, error) {
	buf := new(bytes.Buffer)
	if err := export.Write(buf, format, t); err != nil {
		logger.Error("生成导出文件失败", zap.String("format", string(format)), zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return &dto.ExportFile{Buffer: buf, Filename: filename, ContentType: format.ContentType()}, nil
}

// parseFilter 解析日期范围与区域/泵站筛选，范围以报表时区的今天为锚点
func (s *reportService) parseFilter(q *dto.ReportQuery) (report.Filter, error) {
	token, err := report.ParseRangeToken(q.Range)
	if err != nil {
		return report.Filter{}, ErrInvalidRange
	}

	var start, end model.Date
	if token == report.RangeCustom {
		if start, err = parseOptionalDate(q.Start); err != nil {
			return report.Filter{}, err
		}
		if end, err = parseOptionalDate(q.End); err != nil {
			return report.Filter{}, err
		}
	}
	rng, err := report.ResolveRange(token, today(s.clock, s.loc), start, end)
	if err != nil {
		return report.Filter{}, fmt.Errorf("%w: %s", ErrInvalidRange, err.Error())
	}

	f, err := parseZoneStation(q.Zone, q.Station)
	if err != nil {
		return report.Filter{}, err
	}
	f.Range = &rng
	return f, nil
}

// scan 按日期范围、区域与可见范围扫描；泵站由 report.Filter 规范化匹配
func (s *reportService) scan(ctx context.Context, sess *session.Session, f report.Filter) ([]model.StationRecord, error) {
	rf := repository.RecordFilter{SubmittedBy: ownerScope(sess)}
	if f.Range != nil {
		rf.From, rf.To = f.Range.Start, f.Range.End
	}
	if f.Zone != "" {
		rf.Zones = []model.Zone{f.Zone}
	}
	recs, err := s.repo.Record.Scan(ctx, rf)
	if err != nil {
		s.logger.Error("查询日志失败", zap.Error(err))
		return nil, err
	}
	return recs, nil
}

func (s *reportService) scanAll(ctx context.Context, sess *session.Session) ([]model.StationRecord, error) {
	return s.scan(ctx, sess, report.Filter{})
}

func parseZoneStation(zone, station string) (report.Filter, error) {
	var f report.Filter
	if !report.IsAll(zone) {
		z, err := model.ParseZone(zone)
		if err != nil {
			return f, ErrInvalidReportZone
		}
		f.Zone = z
	}
	if !report.IsAll(station) {
		f.Station = strings.TrimSpace(station)
	}
	return f, nil
}

func parseOptionalDate(s string) (model.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, ErrInvalidReportDate
	}
	return d, nil
}

func scopeOf(sess *session.Session) string {
	if ownerScope(sess) != "" {
		return ScopeOwn
	}
	return ScopeAll
}

// entriesTable 日志明细导出表
func entriesTable(title string, recs []model.StationRecord) *export.Table {
	t := &export.Table{Title: title, Columns: entryColumns}
	for i := range recs {
		r := &recs[i]
		t.AddRow(
			r.EntryDate.String(), string(r.Zone), r.SubmittedBy, r.Station,
			r.TotalPumps, r.WorkingPumps, r.StandbyPumps, r.StandbyUnderMaintenance,
			r.Remarks, r.PumpingVolume, r.IncomeVolume, r.SupplyVolume,
		)
	}
	return t
}

// comparisonTable 每项指标依次为第一日、第二日、变化量（或变化百分比）
func comparisonTable(cmp *report.Comparison) *export.Table {
	change := "Change"
	if cmp.AsPercent {
		change = "Change %"
	}
	columns := []string{"SPS Name", "Zone"}
	for _, m := range report.Metrics {
		columns = append(columns,
			fmt.Sprintf("%s %s", m.Label(), cmp.First),
			fmt.Sprintf("%s %s", m.Label(), cmp.Second),
			fmt.Sprintf("%s %s", m.Label(), change),
		)
	}

	t := &export.Table{
		Title:   fmt.Sprintf("Comparison %s vs %s", cmp.First, cmp.Second),
		Columns: columns,
	}
	for _, row := range cmp.Rows {
		cells := []any{row.Station, string(row.Zone)}
		for _, d := range row.Metrics {
			cells = append(cells, d.First, d.Second, d.Shown(cmp.AsPercent))
		}
		t.AddRow(cells...)
	}
	return t
}
