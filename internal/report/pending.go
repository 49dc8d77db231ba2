package report

import (
	"sort"

	"sps-logbook/internal/model"
)

// Pending 目录中该区域应录入、但当日尚无记录的泵站（保持目录顺序）
func Pending(catalog *model.Catalog, zone model.Zone, date model.Date, records []model.StationRecord) []string {
	done := make(map[string]bool)
	for i := range records {
		r := &records[i]
		if r.EntryDate == date && r.Zone == zone {
			done[model.NormalizeName(r.Station)] = true
		}
	}

	pending := []string{}
	for _, s := range catalog.Stations(zone) {
		if !done[model.NormalizeName(s)] {
			pending = append(pending, s)
		}
	}
	return pending
}

// Critical 备用泵为 0 的记录，按日期倒序
func Critical(records []model.StationRecord) []model.StationRecord {
	out := []model.StationRecord{}
	for i := range records {
		if records[i].Critical() {
			out = append(out, records[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EntryDate.After(out[j].EntryDate)
	})
	return out
}
