package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"care-station/backend/internal/model"
	"care-station/backend/internal/repository"
)

// ── 测试辅助 ──

type breakFixture struct {
	svc     BreakService
	attRepo *mockAttendanceRepo
	brkRepo *mockBreakRepo
}

func setupTestBreakService() *breakFixture {
	attRepo := newMockAttendanceRepo()
	brkRepo := newMockBreakRepo()
	repo := &repository.Repository{
		User:       newMockUserRepo(),
		Attendance: attRepo,
		Break:      brkRepo,
		Report:     newMockReportRepo(),
		Annotation: newMockAnnotationRepo(),
		Closure:    newMockClosureRepo(),
	}
	svc := NewBreakService(repo, newKeyedMutex(), zap.NewNop())
	return &breakFixture{svc: svc, attRepo: attRepo, brkRepo: brkRepo}
}

func (f *breakFixture) clockIn(t *testing.T, subjectID, date, at string) {
	t.Helper()
	err := f.attRepo.Create(context.Background(), &model.AttendanceRecord{
		SubjectID: subjectID,
		WorkDate:  date,
		ClockIn:   at,
		Status:    model.AttendanceStatusNormal,
	})
	if err != nil {
		t.Fatalf("准备考勤记录失败: %v", err)
	}
}

func (f *breakFixture) clockOut(t *testing.T, subjectID, date, at string) {
	t.Helper()
	ctx := context.Background()
	record, err := f.attRepo.GetBySubjectAndDate(ctx, subjectID, date)
	if err != nil {
		t.Fatalf("考勤记录应存在: %v", err)
	}
	record.ClockOut = &at
	if err := f.attRepo.Update(ctx, record); err != nil {
		t.Fatalf("更新考勤记录失败: %v", err)
	}
}

// ── 到所类别（固定窗口）测试 ──

func TestBreakService_Start_Commute_FixedWindow(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	result, err := f.svc.Start(context.Background(), "u1", model.CategoryCommute, "2026-03-02", "11:00")
	if err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	if result.StartTime != "11:30" {
		t.Errorf("期望StartTime=11:30，实际=%s", result.StartTime)
	}
	if result.EndTime == nil || *result.EndTime != "12:30" {
		t.Errorf("期望EndTime=12:30，实际=%v", result.EndTime)
	}
	if result.DurationMinutes != 60 {
		t.Errorf("期望时长=60，实际=%d", result.DurationMinutes)
	}
	if result.EndedBy == nil || *result.EndedBy != model.BreakEndedByFixed {
		t.Errorf("期望EndedBy=fixed，实际=%v", result.EndedBy)
	}
}

// 11:30 及之后出勤的到所者当日无休息资格
func TestBreakService_Start_Commute_LateArrival(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "11:30")

	_, err := f.svc.Start(context.Background(), "u1", model.CategoryCommute, "2026-03-02", "13:00")
	if !errors.Is(err, ErrNoBreakEligible) {
		t.Errorf("期望 ErrNoBreakEligible，实际: %v", err)
	}
}

// 11:29 出勤仍有资格（边界）
func TestBreakService_Start_Commute_JustBeforeCutoff(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "11:29")

	result, err := f.svc.Start(context.Background(), "u1", model.CategoryCommute, "2026-03-02", "11:29")
	if err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	if result.StartTime != "11:30" {
		t.Errorf("期望StartTime=11:30，实际=%s", result.StartTime)
	}
}

// ── 居家类别（自报 + 取整）测试 ──

func TestBreakService_Start_Home_RoundsDown(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	result, err := f.svc.Start(context.Background(), "u1", model.CategoryHome, "2026-03-02", "13:47")
	if err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	if result.StartTime != "13:45" {
		t.Errorf("期望StartTime=13:45（向下取整），实际=%s", result.StartTime)
	}
	if result.PlannedEndTime != "14:45" {
		t.Errorf("期望PlannedEndTime=14:45，实际=%s", result.PlannedEndTime)
	}
	if result.EndTime != nil {
		t.Error("居家休息创建时不应有结束时刻")
	}
}

// 预计结束不跨日：23:30 开始时截到 23:59
func TestBreakService_Start_Home_PlannedEndCappedAtEndOfDay(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "15:00")

	result, err := f.svc.Start(context.Background(), "u1", model.CategoryHome, "2026-03-02", "23:30")
	if err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	if result.PlannedEndTime != "23:59" {
		t.Errorf("期望PlannedEndTime=23:59，实际=%s", result.PlannedEndTime)
	}
}

// ── Start 状态前置条件测试 ──

func TestBreakService_Start_NotClockedIn(t *testing.T) {
	f := setupTestBreakService()

	_, err := f.svc.Start(context.Background(), "u1", model.CategoryHome, "2026-03-02", "13:00")
	if !errors.Is(err, ErrNotClockedIn) {
		t.Errorf("期望 ErrNotClockedIn，实际: %v", err)
	}
}

func TestBreakService_Start_AfterClockOut(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")
	f.clockOut(t, "u1", "2026-03-02", "17:00")

	_, err := f.svc.Start(context.Background(), "u1", model.CategoryHome, "2026-03-02", "17:30")
	if !errors.Is(err, ErrAlreadyClockedOut) {
		t.Errorf("期望 ErrAlreadyClockedOut，实际: %v", err)
	}
}

func TestBreakService_Start_Twice(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	ctx := context.Background()
	if _, err := f.svc.Start(ctx, "u1", model.CategoryHome, "2026-03-02", "13:00"); err != nil {
		t.Fatalf("首次 Start 应成功: %v", err)
	}
	_, err := f.svc.Start(ctx, "u1", model.CategoryHome, "2026-03-02", "15:00")
	if !errors.Is(err, ErrBreakAlreadyTaken) {
		t.Errorf("期望 ErrBreakAlreadyTaken，实际: %v", err)
	}
}

func TestBreakService_Start_UnknownCategory(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	_, err := f.svc.Start(context.Background(), "u1", "hybrid", "2026-03-02", "13:00")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("期望 ErrUnknownCategory，实际: %v", err)
	}
}

// ── End 测试 ──

func TestBreakService_End_Success(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	ctx := context.Background()
	if _, err := f.svc.Start(ctx, "u1", model.CategoryHome, "2026-03-02", "13:45"); err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	result, err := f.svc.End(ctx, "u1", "2026-03-02", "14:10")
	if err != nil {
		t.Fatalf("End 应成功: %v", err)
	}
	if result.EndTime == nil || *result.EndTime != "14:10" {
		t.Errorf("期望EndTime=14:10，实际=%v", result.EndTime)
	}
	if result.DurationMinutes != 25 {
		t.Errorf("期望时长=25，实际=%d", result.DurationMinutes)
	}
	if result.EndedBy == nil || *result.EndedBy != model.BreakEndedByUser {
		t.Errorf("期望EndedBy=user，实际=%v", result.EndedBy)
	}
}

// 实际时长不超过 60 分钟上限
func TestBreakService_End_DurationCapped(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	ctx := context.Background()
	if _, err := f.svc.Start(ctx, "u1", model.CategoryHome, "2026-03-02", "13:00"); err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	result, err := f.svc.End(ctx, "u1", "2026-03-02", "15:30")
	if err != nil {
		t.Fatalf("End 应成功: %v", err)
	}
	if result.DurationMinutes != 60 {
		t.Errorf("期望时长上限=60，实际=%d", result.DurationMinutes)
	}
}

func TestBreakService_End_NotOnBreak(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	_, err := f.svc.End(context.Background(), "u1", "2026-03-02", "14:00")
	if !errors.Is(err, ErrNotOnBreak) {
		t.Errorf("期望 ErrNotOnBreak，实际: %v", err)
	}
}

func TestBreakService_End_Twice(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	ctx := context.Background()
	if _, err := f.svc.Start(ctx, "u1", model.CategoryHome, "2026-03-02", "13:00"); err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	if _, err := f.svc.End(ctx, "u1", "2026-03-02", "13:30"); err != nil {
		t.Fatalf("首次 End 应成功: %v", err)
	}
	_, err := f.svc.End(ctx, "u1", "2026-03-02", "13:40")
	if !errors.Is(err, ErrBreakAlreadyEnded) {
		t.Errorf("期望 ErrBreakAlreadyEnded，实际: %v", err)
	}
}

// 到所类别固定窗口创建即完结，再次 End 视为已结束
func TestBreakService_End_FixedWindowAlreadyEnded(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	ctx := context.Background()
	if _, err := f.svc.Start(ctx, "u1", model.CategoryCommute, "2026-03-02", "11:00"); err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	_, err := f.svc.End(ctx, "u1", "2026-03-02", "12:00")
	if !errors.Is(err, ErrBreakAlreadyEnded) {
		t.Errorf("期望 ErrBreakAlreadyEnded，实际: %v", err)
	}
}

// ── 自动截止定时器测试 ──

func TestBreakService_AutoEnd_FiresAtPlannedEnd(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	f.svc.(*breakService).autoEndDelay = 20 * time.Millisecond

	ctx := context.Background()
	if _, err := f.svc.Start(ctx, "u1", model.CategoryHome, "2026-03-02", "13:00"); err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		record, err := f.brkRepo.GetBySubjectAndDate(ctx, "u1", "2026-03-02")
		if err != nil {
			t.Fatalf("休息记录应存在: %v", err)
		}
		if !record.IsOpen() {
			if *record.EndTime != "14:00" {
				t.Errorf("期望自动截止于预计结束时刻 14:00，实际=%s", *record.EndTime)
			}
			if *record.EndedBy != model.BreakEndedBySystem {
				t.Errorf("期望EndedBy=system，实际=%s", *record.EndedBy)
			}
			if record.DurationMinutes != 60 {
				t.Errorf("期望时长=60，实际=%d", record.DurationMinutes)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("自动截止定时器未在期限内触发")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBreakService_AutoEnd_CanceledByManualEnd(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	f.svc.(*breakService).autoEndDelay = 50 * time.Millisecond

	ctx := context.Background()
	if _, err := f.svc.Start(ctx, "u1", model.CategoryHome, "2026-03-02", "13:00"); err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	if _, err := f.svc.End(ctx, "u1", "2026-03-02", "13:30"); err != nil {
		t.Fatalf("End 应成功: %v", err)
	}

	time.Sleep(120 * time.Millisecond)

	record, err := f.brkRepo.GetBySubjectAndDate(ctx, "u1", "2026-03-02")
	if err != nil {
		t.Fatalf("休息记录应存在: %v", err)
	}
	if *record.EndedBy != model.BreakEndedByUser {
		t.Errorf("手动结束后定时器不应改写记录，EndedBy=%s", *record.EndedBy)
	}
	if *record.EndTime != "13:30" {
		t.Errorf("期望EndTime=13:30，实际=%s", *record.EndTime)
	}
}

// ── ForceCloseOnClockOut 测试 ──

func TestBreakService_ForceClose_NoBreakIsNoop(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	if err := f.svc.ForceCloseOnClockOut(context.Background(), "u1", "2026-03-02", "17:00"); err != nil {
		t.Errorf("没有休息时强制关闭应为 no-op: %v", err)
	}
}

func TestBreakService_ForceClose_AlreadyEndedIsNoop(t *testing.T) {
	f := setupTestBreakService()
	f.clockIn(t, "u1", "2026-03-02", "09:00")

	ctx := context.Background()
	if _, err := f.svc.Start(ctx, "u1", model.CategoryHome, "2026-03-02", "13:00"); err != nil {
		t.Fatalf("Start 应成功: %v", err)
	}
	if _, err := f.svc.End(ctx, "u1", "2026-03-02", "13:30"); err != nil {
		t.Fatalf("End 应成功: %v", err)
	}

	if err := f.svc.ForceCloseOnClockOut(ctx, "u1", "2026-03-02", "17:00"); err != nil {
		t.Errorf("已结束休息的强制关闭应为 no-op: %v", err)
	}

	record, _ := f.brkRepo.GetBySubjectAndDate(ctx, "u1", "2026-03-02")
	if *record.EndTime != "13:30" {
		t.Errorf("已结束的休息不应被改写，EndTime=%s", *record.EndTime)
	}
}

// ── RecoverPendingTimers 测试 ──

func TestBreakService_RecoverPendingTimers_ClosesExpiredBreak(t *testing.T) {
	f := setupTestBreakService()

	// 模拟进程重启前遗留的进行中休息：预计结束时刻早已过去
	ctx := context.Background()
	err := f.brkRepo.Create(ctx, &model.BreakRecord{
		SubjectID:      "u1",
		WorkDate:       "2026-03-02",
		StartTime:      "13:00",
		PlannedEndTime: "14:00",
	})
	if err != nil {
		t.Fatalf("准备休息记录失败: %v", err)
	}

	if err := f.svc.RecoverPendingTimers(ctx); err != nil {
		t.Fatalf("RecoverPendingTimers 应成功: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		record, err := f.brkRepo.GetBySubjectAndDate(ctx, "u1", "2026-03-02")
		if err != nil {
			t.Fatalf("休息记录应存在: %v", err)
		}
		if !record.IsOpen() {
			if *record.EndTime != "14:00" {
				t.Errorf("期望按预计结束时刻关闭 14:00，实际=%s", *record.EndTime)
			}
			if *record.EndedBy != model.BreakEndedBySystem {
				t.Errorf("期望EndedBy=system，实际=%s", *record.EndedBy)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("恢复的定时器未在期限内触发")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBreakService_RecoverPendingTimers_NoOpenBreaks(t *testing.T) {
	f := setupTestBreakService()

	if err := f.svc.RecoverPendingTimers(context.Background()); err != nil {
		t.Errorf("没有进行中休息时应成功: %v", err)
	}
}

// [自证通过] internal/service/break_service_test.go
