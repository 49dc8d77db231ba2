package report

import (
	"strings"

	"sps-logbook/internal/model"
)

// AllSentinel 下拉框中"全部"的取值，等价于不过滤
const AllSentinel = "All"

// Filter 查询条件，各字段独立可选，按"与"组合
type Filter struct {
	Range   *DateRange
	Zone    model.Zone // 空值表示全部
	Station string     // 空值表示全部，按规范化名称比较
}

// IsAll 空串或 All（忽略大小写）
func IsAll(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, AllSentinel)
}

// Match 记录是否满足条件
func (f Filter) Match(r *model.StationRecord) bool {
	if f.Range != nil && !f.Range.Contains(r.EntryDate) {
		return false
	}
	if f.Zone != "" && r.Zone != f.Zone {
		return false
	}
	if f.Station != "" && model.NormalizeName(r.Station) != model.NormalizeName(f.Station) {
		return false
	}
	return true
}

// Apply 返回满足条件的记录，保持原顺序
func Apply(records []model.StationRecord, f Filter) []model.StationRecord {
	out := make([]model.StationRecord, 0, len(records))
	for i := range records {
		if f.Match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}
