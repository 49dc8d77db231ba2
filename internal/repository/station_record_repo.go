package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sps-logbook/internal/model"
	pkgerrors "sps-logbook/pkg/errors"
)

// RecordFilter 日志查询条件，零值字段不参与过滤
type RecordFilter struct {
	From        model.Date   // 起始日期（含）
	To          model.Date   // 截止日期（含）
	Dates       []model.Date // 精确日期集合，与 From/To 同时生效
	Zones       []model.Zone
	Stations    []string
	SubmittedBy string
}

// StationRecordRepository 泵站日志数据访问接口
type StationRecordRepository interface {
	// Insert 原子插入；(日期, 泵站) 已存在时返回 pkgerrors.ErrKeyConflict 且不修改已有记录
	Insert(ctx context.Context, rec *model.StationRecord) error
	// Replace 按唯一键整体覆盖（不存在则插入），保留原 created_at
	Replace(ctx context.Context, rec *model.StationRecord) error
	Get(ctx context.Context, key model.RecordKey) (*model.StationRecord, error)
	Delete(ctx context.Context, key model.RecordKey) error
	// Scan 按日期倒序、区域、泵站排序
	Scan(ctx context.Context, f RecordFilter) ([]model.StationRecord, error)
	// Recent 按最后写入时间倒序
	Recent(ctx context.Context, submittedBy string, limit int) ([]model.StationRecord, error)
}

type stationRecordRepo struct {
	db *gorm.DB
}

// NewStationRecordRepo 创建 StationRecordRepository 实例
func NewStationRecordRepo(db *gorm.DB) StationRecordRepository {
	return &stationRecordRepo{db: db}
}

// replaceColumns 覆盖时更新的列（主键与 created_at 除外）
var replaceColumns = []string{
	"zone", "submitted_by",
	"total_pumps", "working_pumps", "standby_pumps", "standby_under_maintenance",
	"remarks", "pumping_volume", "income_volume", "supply_volume",
	"updated_at",
}

func (r *stationRecordRepo) Insert(ctx context.Context, rec *model.StationRecord) error {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrKeyConflict
	}
	return nil
}

func (r *stationRecordRepo) Replace(ctx context.Context, rec *model.StationRecord) error {
	rec.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "entry_date"}, {Name: "station"}},
			DoUpdates: clause.AssignmentColumns(replaceColumns),
		}).
		Create(rec).Error
}

func (r *stationRecordRepo) Get(ctx context.Context, key model.RecordKey) (*model.StationRecord, error) {
	var rec model.StationRecord
	err := r.db.WithContext(ctx).
		Where("entry_date = ? AND station = ?", key.Date, key.Station).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete 记录不存在时返回 gorm.ErrRecordNotFound
func (r *stationRecordRepo) Delete(ctx context.Context, key model.RecordKey) error {
	result := r.db.WithContext(ctx).
		Where("entry_date = ? AND station = ?", key.Date, key.Station).
		Delete(&model.StationRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *stationRecordRepo) Scan(ctx context.Context, f RecordFilter) ([]model.StationRecord, error) {
	db := r.db.WithContext(ctx).Model(&model.StationRecord{})

	if !f.From.IsZero() {
		db = db.Where("entry_date >= ?", f.From)
	}
	if !f.To.IsZero() {
		db = db.Where("entry_date <= ?", f.To)
	}
	if len(f.Dates) > 0 {
		db = db.Where("entry_date IN ?", f.Dates)
	}
	if len(f.Zones) > 0 {
		db = db.Where("zone IN ?", f.Zones)
	}
	if len(f.Stations) > 0 {
		db = db.Where("station IN ?", f.Stations)
	}
	if f.SubmittedBy != "" {
		db = db.Where("submitted_by = ?", f.SubmittedBy)
	}

	var recs []model.StationRecord
	err := db.Order("entry_date DESC, zone ASC, station ASC").Find(&recs).Error
	return recs, err
}

func (r *stationRecordRepo) Recent(ctx context.Context, submittedBy string, limit int) ([]model.StationRecord, error) {
	db := r.db.WithContext(ctx).Model(&model.StationRecord{})
	if submittedBy != "" {
		db = db.Where("submitted_by = ?", submittedBy)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var recs []model.StationRecord
	err := db.Order("updated_at DESC, entry_date DESC, station ASC").Find(&recs).Error
	return recs, err
}
