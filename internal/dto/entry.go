package dto

import "time"

// ── 日志录入 DTO ──

// SubmitEntryRequest 提交日志
// unlock_code 可选：撞键时直接携带覆盖授权码
type SubmitEntryRequest struct {
	EntryDate               string  `json:"entry_date"                binding:"required"`
	Zone                    string  `json:"zone"                      binding:"required"`
	Station                 string  `json:"station"                   binding:"required"`
	TotalPumps              int     `json:"total_pumps"`
	WorkingPumps            int     `json:"working_pumps"`
	StandbyPumps            int     `json:"standby_pumps"`
	StandbyUnderMaintenance int     `json:"standby_under_maintenance"`
	Remarks                 string  `json:"remarks"`
	PumpingVolume           float64 `json:"pumping_volume"`
	IncomeVolume            float64 `json:"income_volume"`
	SupplyVolume            float64 `json:"supply_volume"`
	UnlockCode              string  `json:"unlock_code,omitempty"`
}

// UnlockEntryRequest 对被阻塞的 (日期, 泵站) 提交覆盖授权码
type UnlockEntryRequest struct {
	EntryDate  string `json:"entry_date"  binding:"required"`
	Zone       string `json:"zone"        binding:"required"`
	Station    string `json:"station"     binding:"required"`
	UnlockCode string `json:"unlock_code" binding:"required"`
}

// EntryResponse 日志记录
type EntryResponse struct {
	EntryDate               string    `json:"entry_date"`
	Zone                    string    `json:"zone"`
	Station                 string    `json:"station"`
	SubmittedBy             string    `json:"submitted_by"`
	TotalPumps              int       `json:"total_pumps"`
	WorkingPumps            int       `json:"working_pumps"`
	StandbyPumps            int       `json:"standby_pumps"`
	StandbyUnderMaintenance int       `json:"standby_under_maintenance"`
	Remarks                 string    `json:"remarks"`
	PumpingVolume           float64   `json:"pumping_volume"`
	IncomeVolume            float64   `json:"income_volume"`
	SupplyVolume            float64   `json:"supply_volume"`
	Critical                bool      `json:"critical"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// SubmitEntryResponse 提交结果
// outcome: created / replaced / unchanged
type SubmitEntryResponse struct {
	Outcome string        `json:"outcome"`
	Entry   EntryResponse `json:"entry"`
}

// EntryConflictData 提交失败时回显的表单内容与键状态
type EntryConflictData struct {
	Key       string              `json:"key,omitempty"`
	KeyState  string              `json:"key_state,omitempty"`
	Submitted *SubmitEntryRequest `json:"submitted"`
}

// UnlockEntryResponse 授权结果
type UnlockEntryResponse struct {
	Key      string `json:"key"`
	KeyState string `json:"key_state"`
}

// PendingResponse 某区域某日尚未录入的泵站
type PendingResponse struct {
	Zone     string   `json:"zone"`
	Date     string   `json:"date"`
	Stations []string `json:"stations"`
}

// CatalogZone 目录中的一个区域
type CatalogZone struct {
	Zone     string   `json:"zone"`
	Group    string   `json:"group"`
	Stations []string `json:"stations"`
}

// CatalogResponse 区域泵站目录
type CatalogResponse struct {
	Zones []CatalogZone `json:"zones"`
}
