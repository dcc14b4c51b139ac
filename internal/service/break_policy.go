package service

import (
	"care-station/backend/internal/model"
	"care-station/backend/pkg/timeutil"
)

// ── 休息策略 ──
//
// 两种服务类别的休息规则差异收敛到策略变体中，调用方按类别分发一次，
// 新增类别时不需要改动各调用点：
//   - fixedWindowPolicy（到所）：窗口外部固定，记录创建即完结
//   - selfTimedPolicy（居家）：自报开始 + 15 分钟向下取整 + 自动截止
//
// 到所出勤有现场监督，休息窗口统一管理即可；
// 居家出勤基于信任自报，需要确定性的取整窗口加超时自动关闭兜底。

const (
	fixedBreakStart   = "11:30"
	fixedBreakEnd     = "12:30"
	fixedBreakCutoff  = 690 // 11:30 之后到所者当日无休息
	selfTimedDuration = 60  // 居家休息额定时长（分钟）
	endOfDay          = 1439
)

// openBreakResult 策略计算出的新休息记录内容
type openBreakResult struct {
	StartTime      string
	PlannedEndTime string
	EndTime        *string // 非 nil 表示创建即完结
	Duration       int
	EndedBy        *string
	NeedsAutoEnd   bool // 是否需要安排自动截止定时器
}

// breakPolicy 休息开始规则
type breakPolicy interface {
	// Open 依据出勤打卡时刻与当前时刻计算新记录内容
	Open(clockInMinutes int, now string) (*openBreakResult, error)
}

// policyForCategory 按服务类别选择策略；未知类别返回 ErrUnknownCategory
func policyForCategory(category string) (breakPolicy, error) {
	switch category {
	case model.CategoryCommute:
		return &fixedWindowPolicy{}, nil
	case model.CategoryHome:
		return &selfTimedPolicy{}, nil
	default:
		return nil, ErrUnknownCategory
	}
}

// ── 到所：固定窗口 ──

type fixedWindowPolicy struct{}

func (p *fixedWindowPolicy) Open(clockInMinutes int, _ string) (*openBreakResult, error) {
	// 11:30 及之后到所者当日不再有休息资格
	if clockInMinutes >= fixedBreakCutoff {
		return nil, ErrNoBreakEligible
	}

	end := fixedBreakEnd
	endedBy := model.BreakEndedByFixed
	return &openBreakResult{
		StartTime:      fixedBreakStart,
		PlannedEndTime: fixedBreakEnd,
		EndTime:        &end,
		Duration:       model.MaxBreakDurationMinutes,
		EndedBy:        &endedBy,
		NeedsAutoEnd:   false,
	}, nil
}

// ── 居家：自报 + 取整 + 自动截止 ──

type selfTimedPolicy struct{}

func (p *selfTimedPolicy) Open(_ int, now string) (*openBreakResult, error) {
	start, err := timeutil.RoundDownToQuarterHour(now)
	if err != nil {
		return nil, ErrInvalidTime
	}

	startMinutes, _ := timeutil.TimeToMinutes(start)
	plannedEnd := startMinutes + selfTimedDuration
	if plannedEnd > endOfDay {
		plannedEnd = endOfDay
	}

	return &openBreakResult{
		StartTime:      start,
		PlannedEndTime: timeutil.MinutesToTime(plannedEnd),
		NeedsAutoEnd:   true,
	}, nil
}
