package dto

import "sps-logbook/internal/report"

// ── 报表模块 DTO ──

// ReportQuery 报表查询参数
// range 取 today / yesterday / last_7_days / last_30_days / this_month / this_year / custom
type ReportQuery struct {
	Range   string `form:"range"`
	Start   string `form:"start"`
	End     string `form:"end"`
	Zone    string `form:"zone"`
	Station string `form:"station"`
}

// ExportQuery 报表导出参数
// table 取 filtered（默认）/ all / critical
type ExportQuery struct {
	ReportQuery
	Format string `form:"format"`
	Table  string `form:"table"`
}

// CompareRequest 两日对比
type CompareRequest struct {
	FirstDate  string `json:"first_date"  binding:"required"`
	SecondDate string `json:"second_date" binding:"required"`
	Zone       string `json:"zone"`
	Station    string `json:"station"`
	AsPercent  bool   `json:"as_percent"`
	Format     string `json:"format"` // 仅导出时使用
}

// SummaryResponse 报表查询结果
// scope: own 表示仅含本人提交的记录
type SummaryResponse struct {
	Scope string           `json:"scope"`
	Range report.DateRange `json:"range"`
	report.Tables
}
