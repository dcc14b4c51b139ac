package dto

// ── 休业日历模块 DTO ──

// ImportClosureResponse 休业日历导入结果
type ImportClosureResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ClosureDayResponse 休业日响应
type ClosureDayResponse struct {
	Date string `json:"date"`
	Name string `json:"name"`
}
