package report

import (
	"sort"

	"sps-logbook/internal/model"
)

// StationTotal 单站合计
type StationTotal struct {
	Station string     `json:"station"`
	Zone    model.Zone `json:"zone"`
	Pumping float64    `json:"pumping_volume"`
	Income  float64    `json:"income_volume"`
	Supply  float64    `json:"supply_volume"`
	Entries int        `json:"entries"`
}

// GroupTotals 三个区域分组的按站合计；无记录的泵站不出现
type GroupTotals struct {
	SPS   []StationTotal `json:"sps"`
	TSPS  []StationTotal `json:"tsps"`
	Plant []StationTotal `json:"plant"`
}

// ComputeGroupTotals 普通泵站与转输泵站合计抽排量，处理厂合计进水与出水
func ComputeGroupTotals(records []model.StationRecord) GroupTotals {
	byGroup := stationTotals(records)
	return GroupTotals{
		SPS:   nonNil(byGroup[model.GroupStandard]),
		TSPS:  nonNil(byGroup[model.GroupTSPS]),
		Plant: nonNil(byGroup[model.GroupPlant]),
	}
}

func stationTotals(records []model.StationRecord) map[model.ZoneGroup][]StationTotal {
	index := make(map[string]*StationTotal)
	var order []string
	for i := range records {
		r := &records[i]
		t, ok := index[r.Station]
		if !ok {
			t = &StationTotal{Station: r.Station, Zone: r.Zone}
			index[r.Station] = t
			order = append(order, r.Station)
		}
		t.Entries++
		if r.Zone.IsPlant() {
			t.Income += r.IncomeVolume
			t.Supply += r.SupplyVolume
		} else {
			t.Pumping += r.PumpingVolume
		}
	}

	sort.Strings(order)
	out := make(map[model.ZoneGroup][]StationTotal)
	for _, name := range order {
		t := index[name]
		g := t.Zone.Group()
		out[g] = append(out[g], *t)
	}
	return out
}

// ZoneTotal 区域合计
type ZoneTotal struct {
	Zone    model.Zone      `json:"zone"`
	Group   model.ZoneGroup `json:"group"`
	Pumping float64         `json:"pumping_volume"`
	Income  float64         `json:"income_volume"`
	Supply  float64         `json:"supply_volume"`
	Entries int             `json:"entries"`
}

// ZoneRollup 按区域汇总
// 普通泵站区域总是逐个输出（无记录时为 0）；TSPS 与 Plant 仅在有记录时输出
func ZoneRollup(records []model.StationRecord) []ZoneTotal {
	index := make(map[model.Zone]*ZoneTotal)
	for i := range records {
		r := &records[i]
		t, ok := index[r.Zone]
		if !ok {
			t = &ZoneTotal{Zone: r.Zone, Group: r.Zone.Group()}
			index[r.Zone] = t
		}
		t.Entries++
		t.Pumping += r.PumpingVolume
		t.Income += r.IncomeVolume
		t.Supply += r.SupplyVolume
	}

	out := make([]ZoneTotal, 0, len(model.AllZones))
	for _, z := range model.AllZones {
		if t, ok := index[z]; ok {
			out = append(out, *t)
			continue
		}
		if z.Group() == model.GroupStandard {
			out = append(out, ZoneTotal{Zone: z, Group: model.GroupStandard})
		}
	}
	return out
}

// SummaryRow 区域 × 泵站抽排量合计
type SummaryRow struct {
	Zone    model.Zone `json:"zone"`
	Station string     `json:"station"`
	Pumping float64    `json:"pumping_volume"`
}

// StationSummary 按区域展示顺序、再按泵站名排序
func StationSummary(records []model.StationRecord) []SummaryRow {
	type key struct {
		zone    model.Zone
		station string
	}
	sums := make(map[key]float64)
	for i := range records {
		r := &records[i]
		sums[key{r.Zone, r.Station}] += r.PumpingVolume
	}

	out := make([]SummaryRow, 0, len(sums))
	for k, v := range sums {
		out = append(out, SummaryRow{Zone: k.zone, Station: k.station, Pumping: v})
	}
	sort.Slice(out, func(i, j int) bool {
		zi, zj := zoneRank(out[i].Zone), zoneRank(out[j].Zone)
		if zi != zj {
			return zi < zj
		}
		return out[i].Station < out[j].Station
	})
	return out
}

// PlantRow 处理厂明细
type PlantRow struct {
	Station string  `json:"station"`
	Income  float64 `json:"income_volume"`
	Supply  float64 `json:"supply_volume"`
	Entries int     `json:"entries"`
}

// PlantDetail 处理厂按站合计进水、出水与记录条数
func PlantDetail(records []model.StationRecord) []PlantRow {
	totals := stationTotals(records)[model.GroupPlant]
	out := make([]PlantRow, 0, len(totals))
	for _, t := range totals {
		out = append(out, PlantRow{Station: t.Station, Income: t.Income, Supply: t.Supply, Entries: t.Entries})
	}
	return out
}

func zoneRank(z model.Zone) int {
	for i, az := range model.AllZones {
		if az == z {
			return i
		}
	}
	return len(model.AllZones)
}

func nonNil(s []StationTotal) []StationTotal {
	if s == nil {
		return []StationTotal{}
	}
	return s
}
