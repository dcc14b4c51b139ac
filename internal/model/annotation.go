package model

// Annotation 职员批注表 — 对应 annotations
// 每份日报至多一条。创建者之外仅特权角色可更新。
// 陈旧写入检测以 Version 为准：客户端保存时携带其最后读到的版本号，
// 与当前行版本不一致即为冲突，需要人工选择放弃或强制覆盖。
type Annotation struct {
	AnnotationID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"annotation_id"`
	ReportID     string `gorm:"type:uuid;not null"                             json:"report_id"`
	AuthorID     string `gorm:"type:uuid;not null"                             json:"author_id"`
	Content      string `gorm:"type:text;not null"                             json:"content"`
	VersionedModel

	// 关联
	Author *User `gorm:"foreignKey:AuthorID;references:UserID" json:"author,omitempty"`
}

// TableName 指定表名
func (Annotation) TableName() string { return "annotations" }
