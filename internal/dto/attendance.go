package dto

// ── 考勤模块 DTO ──

// ClockInRequest 出勤打卡请求
// Date/Time 缺省时由 Handler 以服务器当前时间补全
type ClockInRequest struct {
	Date string `json:"date" binding:"omitempty,len=10"` // "YYYY-MM-DD"
	Time string `json:"time" binding:"omitempty,len=5"`  // "HH:MM"
}

// ClockOutRequest 下班打卡请求
type ClockOutRequest struct {
	Date string `json:"date" binding:"omitempty,len=10"`
	Time string `json:"time" binding:"omitempty,len=5"`
}

// CorrectAttendanceRequest 管理员修正考勤请求
type CorrectAttendanceRequest struct {
	ClockIn  *string `json:"clock_in"  binding:"omitempty,len=5"`
	ClockOut *string `json:"clock_out" binding:"omitempty,len=5"`
	Status   *string `json:"status"    binding:"omitempty,oneof=normal late early absence paid_leave"`
}

// AttendanceListRequest 考勤列表查询
type AttendanceListRequest struct {
	Month     string `form:"month"      binding:"omitempty,len=7"` // "YYYY-MM"
	SubjectID string `form:"subject_id" binding:"omitempty,uuid"`
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	ID        string  `json:"id"`
	SubjectID string  `json:"subject_id"`
	WorkDate  string  `json:"work_date"`
	ClockIn   string  `json:"clock_in"`
	ClockOut  *string `json:"clock_out,omitempty"`
	Status    string  `json:"status"`
	Version   int     `json:"version"`
}
