package service

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"care-station/backend/config"
	"care-station/backend/internal/repository"
	"care-station/backend/pkg/jwt"
	"care-station/backend/pkg/redis"
)

// ── 跨模块共享业务错误 ──

var (
	ErrInvalidTime     = errors.New("时刻格式无效，应为 HH:MM")
	ErrInvalidDate     = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrUnknownCategory = errors.New("未知的服务类别")
)

// Service 业务层聚合
type Service struct {
	Auth       AuthService
	User       UserService
	Attendance AttendanceService
	Break      BreakService
	Report     ReportService
	Annotation AnnotationService
	Export     ExportService
	Calendar   CalendarService
}

// NewService 创建业务层聚合实例
// rdb 可为 nil：Redis 降级运行时黑名单与编辑锁不可用，
// 但打卡/休息/日报/批注的正确性不受影响（版本号兜底）
func NewService(cfg *config.Config, repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *Service {
	keys := newKeyedMutex()

	var locker EditLocker
	var blacklist TokenBlacklist
	if rdb != nil {
		locker = rdb
		blacklist = rdb
	}

	breakSvc := NewBreakService(repo, keys, logger)

	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, blacklist, &cfg.Auth, logger),
		User:       NewUserService(repo, logger),
		Attendance: NewAttendanceService(repo, breakSvc, keys, logger),
		Break:      breakSvc,
		Report:     NewReportService(repo, keys, logger),
		Annotation: NewAnnotationService(repo, locker, keys, logger),
		Export:     NewExportService(repo, logger),
		Calendar:   NewCalendarService(repo, logger),
	}
}

// ── 共享辅助函数 ──

// facilityLocation 设施所在时区，日期与时刻串均以此为准
var facilityLocation = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.FixedZone("JST", 9*3600)
	}
	return loc
}()

// subjectKey 进程内串行化键：同一利用者同一工作日的写操作互斥
func subjectKey(subjectID, date string) string {
	return subjectID + "|" + date
}

// validateDate 校验 "YYYY-MM-DD" 日期串
func validateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrInvalidDate
	}
	return nil
}
