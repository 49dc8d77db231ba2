package report

import (
	"errors"
	"fmt"
	"strings"

	"sps-logbook/internal/model"
)

// RangeToken 快捷日期范围
type RangeToken string

const (
	RangeToday      RangeToken = "today"
	RangeYesterday  RangeToken = "yesterday"
	RangeLast7Days  RangeToken = "last_7_days"
	RangeLast30Days RangeToken = "last_30_days"
	RangeThisMonth  RangeToken = "this_month"
	RangeThisYear   RangeToken = "this_year"
	RangeCustom     RangeToken = "custom"
)

var (
	ErrUnknownRange  = errors.New("未知的日期范围")
	ErrInvertedRange = errors.New("开始日期不能晚于结束日期")
	ErrMissingCustom = errors.New("自定义范围需要提供开始与结束日期")
)

// ParseRangeToken 兼容界面展示名（"Last 7 Days"、"Custom Range"）
func ParseRangeToken(s string) (RangeToken, error) {
	key := strings.NewReplacer(" ", "_", "-", "_").Replace(model.NormalizeName(s))
	switch t := RangeToken(key); t {
	case RangeToday, RangeYesterday, RangeLast7Days, RangeLast30Days, RangeThisMonth, RangeThisYear, RangeCustom:
		return t, nil
	case "custom_range":
		return RangeCustom, nil
	case "":
		return RangeLast7Days, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRange, s)
}

// DateRange 闭区间 [Start, End]
type DateRange struct {
	Start model.Date `json:"start"`
	End   model.Date `json:"end"`
}

// Contains 日期是否落在区间内（含端点）
func (r DateRange) Contains(d model.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days 区间包含的自然日数
func (r DateRange) Days() int {
	return int(r.End.Time().Sub(r.Start.Time()).Hours()/24) + 1
}

// ResolveRange 以 today 为锚点计算闭区间；custom 时使用 start/end
func ResolveRange(token RangeToken, today, start, end model.Date) (DateRange, error) {
	switch token {
	case RangeToday:
		return DateRange{Start: today, End: today}, nil
	case RangeYesterday:
		y := today.AddDays(-1)
		return DateRange{Start: y, End: y}, nil
	case RangeLast7Days:
		return DateRange{Start: today.AddDays(-6), End: today}, nil
	case RangeLast30Days:
		return DateRange{Start: today.AddDays(-29), End: today}, nil
	case RangeThisMonth:
		return DateRange{Start: model.Date{Year: today.Year, Month: today.Month, Day: 1}, End: today}, nil
	case RangeThisYear:
		return DateRange{Start: model.Date{Year: today.Year, Month: 1, Day: 1}, End: today}, nil
	case RangeCustom:
		if start.IsZero() || end.IsZero() {
			return DateRange{}, ErrMissingCustom
		}
		if start.After(end) {
			return DateRange{}, ErrInvertedRange
		}
		return DateRange{Start: start, End: end}, nil
	}
	return DateRange{}, fmt.Errorf("%w: %q", ErrUnknownRange, token)
}
