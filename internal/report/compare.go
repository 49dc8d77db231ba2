package report

import (
	"math"
	"sort"

	"sps-logbook/internal/model"
)

// Metric 对比指标
type Metric string

const (
	MetricPumping Metric = "pumping_volume"
	MetricIncome  Metric = "income_volume"
	MetricSupply  Metric = "supply_volume"
)

// Metrics 对比表的固定指标顺序
var Metrics = []Metric{MetricPumping, MetricIncome, MetricSupply}

// Label 导出表格的列名
func (m Metric) Label() string {
	switch m {
	case MetricPumping:
		return "Pumping MLD"
	case MetricIncome:
		return "Income MLD"
	case MetricSupply:
		return "Supply MLD"
	}
	return string(m)
}

func (m Metric) value(r *model.StationRecord) float64 {
	switch m {
	case MetricIncome:
		return r.IncomeVolume
	case MetricSupply:
		return r.SupplyVolume
	default:
		return r.PumpingVolume
	}
}

// MetricDelta 单项指标在两个日期间的变化
// 任一侧缺失时 Delta 为空；First 为 0 时 Percent 为空
type MetricDelta struct {
	Metric  Metric   `json:"metric"`
	First   *float64 `json:"first"`
	Second  *float64 `json:"second"`
	Delta   *float64 `json:"delta"`
	Percent *float64 `json:"percent"`
}

// Shown 按展示方式取值
func (d MetricDelta) Shown(asPercent bool) *float64 {
	if asPercent {
		return d.Percent
	}
	return d.Delta
}

// CompareRow 单站对比
type CompareRow struct {
	Station string        `json:"station"`
	Zone    model.Zone    `json:"zone"`
	Metrics []MetricDelta `json:"metrics"`
}

// Comparison 两日对比结果，行按泵站名排序
type Comparison struct {
	First     model.Date   `json:"first_date"`
	Second    model.Date   `json:"second_date"`
	AsPercent bool         `json:"as_percent"`
	Rows      []CompareRow `json:"rows"`
}

// Compare 将两个日期的记录按泵站透视并计算差值
// f 的日期范围被忽略，只取 first 与 second 两天
func Compare(records []model.StationRecord, first, second model.Date, f Filter, asPercent bool) Comparison {
	f.Range = nil

	type side struct {
		zone   model.Zone
		first  map[Metric]float64
		second map[Metric]float64
	}
	stations := make(map[string]*side)
	for i := range records {
		r := &records[i]
		if !f.Match(r) || (r.EntryDate != first && r.EntryDate != second) {
			continue
		}
		s, ok := stations[r.Station]
		if !ok {
			s = &side{zone: r.Zone}
			stations[r.Station] = s
		}
		for _, m := range Metrics {
			if r.EntryDate == first {
				if s.first == nil {
					s.first = make(map[Metric]float64)
				}
				s.first[m] += m.value(r)
			}
			if r.EntryDate == second {
				if s.second == nil {
					s.second = make(map[Metric]float64)
				}
				s.second[m] += m.value(r)
			}
		}
	}

	names := make([]string, 0, len(stations))
	for name := range stations {
		names = append(names, name)
	}
	sort.Strings(names)

	cmp := Comparison{First: first, Second: second, AsPercent: asPercent, Rows: make([]CompareRow, 0, len(names))}
	for _, name := range names {
		s := stations[name]
		row := CompareRow{Station: name, Zone: s.zone}
		for _, m := range Metrics {
			row.Metrics = append(row.Metrics, delta(m, s.first, s.second))
		}
		cmp.Rows = append(cmp.Rows, row)
	}
	return cmp
}

func delta(m Metric, first, second map[Metric]float64) MetricDelta {
	d := MetricDelta{Metric: m}
	if first != nil {
		v := first[m]
		d.First = &v
	}
	if second != nil {
		v := second[m]
		d.Second = &v
	}
	if d.First == nil || d.Second == nil {
		return d
	}

	diff := *d.Second - *d.First
	d.Delta = &diff
	if *d.First != 0 {
		pct := math.Round(diff / *d.First * 100 * 100) / 100
		d.Percent = &pct
	}
	return d
}
