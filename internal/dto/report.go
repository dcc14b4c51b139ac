package dto

// ── 日报模块 DTO ──

// CreateReportRequest 创建日报请求
// Date 缺省时由 Handler 以服务器当前日期补全
type CreateReportRequest struct {
	Date      string `json:"date"      binding:"omitempty,len=10"`
	Condition string `json:"condition" binding:"required,oneof=good normal bad"`
	Body      string `json:"body"      binding:"required,min=1,max=4000"`
}

// UpdateReportRequest 更新日报请求
type UpdateReportRequest struct {
	Condition *string `json:"condition" binding:"omitempty,oneof=good normal bad"`
	Body      *string `json:"body"      binding:"omitempty,min=1,max=4000"`
}

// ReportListRequest 日报列表查询
type ReportListRequest struct {
	Month     string `form:"month"      binding:"omitempty,len=7"`
	SubjectID string `form:"subject_id" binding:"omitempty,uuid"`
}

// ReportResponse 日报响应
type ReportResponse struct {
	ID          string              `json:"id"`
	SubjectID   string              `json:"subject_id"`
	SubjectName string              `json:"subject_name,omitempty"`
	ReportDate  string              `json:"report_date"`
	Condition   string              `json:"condition"`
	Body        string              `json:"body"`
	Annotation  *AnnotationResponse `json:"annotation,omitempty"`
	UpdatedAt   string              `json:"updated_at"`
}

// CanSubmitResponse 日报提交资格响应
type CanSubmitResponse struct {
	CanSubmit bool `json:"can_submit"`
}
