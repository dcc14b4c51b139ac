package handler

import "care-station/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	User       *UserHandler
	Attendance *AttendanceHandler
	Break      *BreakHandler
	Report     *ReportHandler
	Annotation *AnnotationHandler
	Export     *ExportHandler
	Calendar   *CalendarHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		User:       NewUserHandler(svc.User),
		Attendance: NewAttendanceHandler(svc.Attendance),
		Break:      NewBreakHandler(svc.Break),
		Report:     NewReportHandler(svc.Report),
		Annotation: NewAnnotationHandler(svc.Annotation),
		Export:     NewExportHandler(svc.Export),
		Calendar:   NewCalendarHandler(svc.Calendar),
	}
}
