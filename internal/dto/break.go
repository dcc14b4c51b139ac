package dto

// ── 休息模块 DTO ──

// BreakStartRequest 开始休息请求
// Now 缺省时由 Handler 以服务器当前时间补全
type BreakStartRequest struct {
	Date string `json:"date" binding:"omitempty,len=10"`
	Now  string `json:"now"  binding:"omitempty,len=5"`
}

// BreakEndRequest 结束休息请求
type BreakEndRequest struct {
	Date string `json:"date" binding:"omitempty,len=10"`
	Now  string `json:"now"  binding:"omitempty,len=5"`
}

// BreakResponse 休息记录响应
type BreakResponse struct {
	ID              string  `json:"id"`
	SubjectID       string  `json:"subject_id"`
	WorkDate        string  `json:"work_date"`
	StartTime       string  `json:"start_time"`
	PlannedEndTime  string  `json:"planned_end_time"`
	EndTime         *string `json:"end_time,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
	EndedBy         *string `json:"ended_by,omitempty"`
}
