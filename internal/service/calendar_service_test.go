package service

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"care-station/backend/internal/repository"
)

const sampleICS = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//care-station//closure//JA
BEGIN:VEVENT
UID:closure-001
SUMMARY:年末年始休業
DTSTART;VALUE=DATE:20260101
DTEND;VALUE=DATE:20260104
END:VEVENT
BEGIN:VEVENT
UID:closure-002
SUMMARY:設備点検日
DTSTART;VALUE=DATE:20260115
END:VEVENT
END:VCALENDAR
`

func setupTestCalendarService() (CalendarService, *mockClosureRepo) {
	closureRepo := newMockClosureRepo()
	repo := &repository.Repository{
		User:       newMockUserRepo(),
		Attendance: newMockAttendanceRepo(),
		Break:      newMockBreakRepo(),
		Report:     newMockReportRepo(),
		Annotation: newMockAnnotationRepo(),
		Closure:    closureRepo,
	}
	return NewCalendarService(repo, zap.NewNop()), closureRepo
}

func TestCalendarService_ImportICS_Success(t *testing.T) {
	svc, closureRepo := setupTestCalendarService()

	result, err := svc.ImportICS(context.Background(), strings.NewReader(sampleICS), "admin-001")
	if err != nil {
		t.Fatalf("ImportICS 应成功: %v", err)
	}
	// 跨天事件按 DTEND 排他端点展开：1/1 1/2 1/3 + 单日 1/15
	if result.Imported != 4 {
		t.Errorf("期望Imported=4，实际=%d", result.Imported)
	}

	days, _ := closureRepo.ListByMonth(context.Background(), "2026-01")
	if len(days) != 4 {
		t.Fatalf("期望 4 个休业日，实际=%d", len(days))
	}
	byDate := make(map[string]string)
	for _, d := range days {
		byDate[d.ClosureDate] = d.Name
	}
	for _, date := range []string{"2026-01-01", "2026-01-02", "2026-01-03"} {
		if byDate[date] != "年末年始休業" {
			t.Errorf("日期 %s 期望名称=年末年始休業，实际=%s", date, byDate[date])
		}
	}
	if byDate["2026-01-15"] != "設備点検日" {
		t.Errorf("期望 2026-01-15 为設備点検日，实际=%s", byDate["2026-01-15"])
	}
	if _, ok := byDate["2026-01-04"]; ok {
		t.Error("DTEND 为排他端点，2026-01-04 不应入库")
	}
}

func TestCalendarService_ImportICS_ReimportSkips(t *testing.T) {
	svc, _ := setupTestCalendarService()

	ctx := context.Background()
	if _, err := svc.ImportICS(ctx, strings.NewReader(sampleICS), "admin-001"); err != nil {
		t.Fatalf("首次导入应成功: %v", err)
	}
	result, err := svc.ImportICS(ctx, strings.NewReader(sampleICS), "admin-001")
	if err != nil {
		t.Fatalf("重复导入应成功: %v", err)
	}
	if result.Imported != 0 || result.Skipped != 4 {
		t.Errorf("重复导入期望 Imported=0 Skipped=4，实际 Imported=%d Skipped=%d",
			result.Imported, result.Skipped)
	}
}

func TestCalendarService_ImportICS_InvalidContent(t *testing.T) {
	svc, _ := setupTestCalendarService()

	_, err := svc.ImportICS(context.Background(), strings.NewReader("not an ics file"), "admin-001")
	if err == nil {
		t.Error("非法 ICS 内容应返回错误")
	}
}
