package model

import "fmt"

// NoStandbyRemark 备用泵全部处于检修时自动追加到备注的提示语
const NoStandbyRemark = "No stand by in Pumping Station"

// MaxRemarksLen 用户填写备注的最大长度（字符数，不含自动追加的提示语）
const MaxRemarksLen = 500

// StationRecord 泵站日志表 — 对应 station_records
// (EntryDate, Station) 为联合主键，全局唯一
type StationRecord struct {
	EntryDate               Date    `gorm:"type:date;primaryKey"                  json:"entry_date"`
	Station                 string  `gorm:"type:varchar(100);primaryKey"          json:"station"`
	Zone                    Zone    `gorm:"type:varchar(10);not null"             json:"zone"`
	SubmittedBy             string  `gorm:"type:varchar(50);not null"             json:"submitted_by"`
	TotalPumps              int     `gorm:"not null;default:0"                    json:"total_pumps"`
	WorkingPumps            int     `gorm:"not null;default:0"                    json:"working_pumps"`
	StandbyPumps            int     `gorm:"not null;default:0"                    json:"standby_pumps"`
	StandbyUnderMaintenance int     `gorm:"not null;default:0"                    json:"standby_under_maintenance"`
	Remarks                 string  `gorm:"type:text;not null;default:''"         json:"remarks"`
	PumpingVolume           float64 `gorm:"column:pumping_volume;not null;default:0" json:"pumping_volume"`
	IncomeVolume            float64 `gorm:"column:income_volume;not null;default:0"  json:"income_volume"`
	SupplyVolume            float64 `gorm:"column:supply_volume;not null;default:0"  json:"supply_volume"`
	TimestampModel
}

// TableName 指定表名
func (StationRecord) TableName() string { return "station_records" }

// RecordKey 日志唯一键
type RecordKey struct {
	Date    Date
	Station string
}

// String 形如 2024-05-01|Ranip，用作会话中的解锁状态键
func (k RecordKey) String() string {
	return fmt.Sprintf("%s|%s", k.Date, k.Station)
}

// Key 返回记录的唯一键
func (r *StationRecord) Key() RecordKey {
	return RecordKey{Date: r.EntryDate, Station: r.Station}
}

// Volume 区域统计口径下的主量：处理厂取进水量，其余取抽排量
func (r *StationRecord) Volume() float64 {
	if r.Zone.IsPlant() {
		return r.IncomeVolume
	}
	return r.PumpingVolume
}

// Critical 无可用备用泵
func (r *StationRecord) Critical() bool { return r.StandbyPumps == 0 }

// SameContent 业务字段是否一致（忽略提交人与时间戳）
func (r *StationRecord) SameContent(o *StationRecord) bool {
	return r.EntryDate == o.EntryDate &&
		r.Station == o.Station &&
		r.Zone == o.Zone &&
		r.TotalPumps == o.TotalPumps &&
		r.WorkingPumps == o.WorkingPumps &&
		r.StandbyPumps == o.StandbyPumps &&
		r.StandbyUnderMaintenance == o.StandbyUnderMaintenance &&
		r.Remarks == o.Remarks &&
		r.PumpingVolume == o.PumpingVolume &&
		r.IncomeVolume == o.IncomeVolume &&
		r.SupplyVolume == o.SupplyVolume
}
