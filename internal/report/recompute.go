package report

import "sps-logbook/internal/model"

// Tables 一次报表查询的全部结果
type Tables struct {
	Range          *DateRange            `json:"range,omitempty"`
	Records        []model.StationRecord `json:"records"`
	Groups         GroupTotals           `json:"group_totals"`
	Zones          []ZoneTotal           `json:"zone_rollup"`
	StationSummary []SummaryRow          `json:"station_summary"`
	Plants         []PlantRow            `json:"plant_detail"`
	ZoneTrend      []TrendPoint          `json:"zone_trend"`
	StationTrend   []TrendPoint          `json:"station_trend"`
	Critical       []model.StationRecord `json:"critical"`
}

// Recompute 对已按权限限定的记录集应用过滤条件并计算全部报表
// 纯函数，不读写存储，每次查询重新计算
func Recompute(records []model.StationRecord, f Filter) Tables {
	filtered := Apply(records, f)
	return Tables{
		Range:          f.Range,
		Records:        filtered,
		Groups:         ComputeGroupTotals(filtered),
		Zones:          ZoneRollup(filtered),
		StationSummary: StationSummary(filtered),
		Plants:         PlantDetail(filtered),
		ZoneTrend:      ZoneTrend(filtered),
		StationTrend:   StationTrend(filtered),
		Critical:       Critical(filtered),
	}
}
