package handler

import (
	"github.com/gin-gonic/gin"

	"care-station/backend/internal/service"
	"care-station/backend/pkg/response"
)

// CalendarHandler 休业日历模块 HTTP 处理器
type CalendarHandler struct {
	calSvc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calSvc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calSvc: calSvc}
}

// ImportICS 导入休业日历（管理员）
// POST /api/v1/calendar/import
// 请求体为 multipart 表单，字段名 file，内容为 .ics 文件
func (h *CalendarHandler) ImportICS(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少 file 字段")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 18001, "文件读取失败")
		return
	}
	defer file.Close()

	result, err := h.calSvc.ImportICS(c.Request.Context(), file, callerID)
	if err != nil {
		response.BadRequest(c, 18002, "日历解析失败")
		return
	}
	response.OK(c, result)
}

// List 月度休业日列表
// GET /api/v1/calendar?month=
func (h *CalendarHandler) List(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = todayDate()[:7]
	}

	result, err := h.calSvc.ListByMonth(c.Request.Context(), month)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
