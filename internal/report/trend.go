package report

import (
	"sort"

	"sps-logbook/internal/model"
)

// TrendPoint 某日某序列的抽排量合计
type TrendPoint struct {
	Date    model.Date `json:"date"`
	Series  string     `json:"series"`
	Pumping float64    `json:"pumping_volume"`
}

// ZoneTrend 每日按区域合计抽排量
func ZoneTrend(records []model.StationRecord) []TrendPoint {
	return trend(records, func(r *model.StationRecord) string { return string(r.Zone) })
}

// StationTrend 每日按泵站合计抽排量
func StationTrend(records []model.StationRecord) []TrendPoint {
	return trend(records, func(r *model.StationRecord) string { return r.Station })
}

func trend(records []model.StationRecord, series func(*model.StationRecord) string) []TrendPoint {
	type key struct {
		date   model.Date
		series string
	}
	sums := make(map[key]float64)
	for i := range records {
		r := &records[i]
		sums[key{r.EntryDate, series(r)}] += r.PumpingVolume
	}

	out := make([]TrendPoint, 0, len(sums))
	for k, v := range sums {
		out = append(out, TrendPoint{Date: k.date, Series: k.series, Pumping: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Series < out[j].Series
	})
	return out
}
