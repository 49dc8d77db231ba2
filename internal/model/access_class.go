package model

import (
	"fmt"
	"strings"
)

// AccessClass 用户访问类别，注册时确定，之后不可变更
type AccessClass string

const (
	AccessEntry  AccessClass = "entry"  // 仅日志录入
	AccessReport AccessClass = "report" // 仅分析报表
	AccessBoth   AccessClass = "both"   // 录入 + 报表
)

// ParseAccessClass 解析访问类别
// 兼容旧系统的标签写法（"log entry" / "analysis report"）
func ParseAccessClass(s string) (AccessClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "entry", "log entry", "log_entry":
		return AccessEntry, nil
	case "report", "analysis report", "analysis_report":
		return AccessReport, nil
	case "both":
		return AccessBoth, nil
	default:
		return "", fmt.Errorf("未知的访问类别 %q", s)
	}
}

// Valid 是否为合法访问类别
func (a AccessClass) Valid() bool {
	return a == AccessEntry || a == AccessReport || a == AccessBoth
}

// CanEnter 是否可访问录入页
func (a AccessClass) CanEnter() bool { return a == AccessEntry || a == AccessBoth }

// CanReport 是否可访问报表页
func (a AccessClass) CanReport() bool { return a == AccessReport || a == AccessBoth }

// Elevated 注册该类别是否需要带外授权码
func (a AccessClass) Elevated() bool { return a.CanReport() }
