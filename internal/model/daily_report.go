package model

// 日报身体状况枚举
const (
	ConditionGood   = "good"
	ConditionNormal = "normal"
	ConditionBad    = "bad"
)

// DailyReport 日报表 — 对应 daily_reports
// 每 (subject_id, report_date) 至多一条；仅在当日考勤已下班打卡后才允许创建。
// 批注出现后，本人不可再编辑内容；特权角色仍可修改。
type DailyReport struct {
	ReportID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"report_id"`
	SubjectID  string `gorm:"type:uuid;not null"                             json:"subject_id"`
	ReportDate string `gorm:"type:varchar(10);not null"                      json:"report_date"`
	Condition  string `gorm:"type:varchar(20);not null;default:'good'"       json:"condition"`
	Body       string `gorm:"type:text;not null"                             json:"body"`
	VersionedModel

	// 关联
	Subject    *User       `gorm:"foreignKey:SubjectID;references:UserID"   json:"subject,omitempty"`
	Annotation *Annotation `gorm:"foreignKey:ReportID;references:ReportID"  json:"annotation,omitempty"`
}

// TableName 指定表名
func (DailyReport) TableName() string { return "daily_reports" }
