package model

// ClosureDay 设施休业日表 — 对应 closure_days
// 由管理员导入的 iCalendar 休业日历生成，导出报表时用于标注
type ClosureDay struct {
	ClosureID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"closure_id"`
	ClosureDate string `gorm:"type:varchar(10);not null"                      json:"closure_date"`
	Name        string `gorm:"type:varchar(200);not null"                     json:"name"`
	BaseModel
}

// TableName 指定表名
func (ClosureDay) TableName() string { return "closure_days" }
