package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"care-station/backend/internal/model"
	pkgerrors "care-station/backend/pkg/errors"
	"care-station/backend/pkg/redis"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.LoginID
	}
	for _, u := range m.users {
		if u.LoginID == user.LoginID {
			return gorm.ErrDuplicatedKey
		}
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByLoginID(_ context.Context, loginID string) (*model.User, error) {
	for _, u := range m.users {
		if u.LoginID == loginID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		result = append(result, *u)
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]*model.AttendanceRecord // key: subjectID|date
	seq     int
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[string]*model.AttendanceRecord)}
}

func (m *mockAttendanceRepo) Create(_ context.Context, record *model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := record.SubjectID + "|" + record.WorkDate
	if _, ok := m.records[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.seq++
	record.AttendanceID = fmt.Sprintf("att-%03d", m.seq)
	record.Version = 1
	cp := *record
	m.records[key] = &cp
	return nil
}

func (m *mockAttendanceRepo) GetByID(_ context.Context, id string) (*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.AttendanceID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) GetBySubjectAndDate(_ context.Context, subjectID, date string) (*model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[subjectID+"|"+date]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRepo) ListBySubjectAndMonth(_ context.Context, subjectID, month string) ([]model.AttendanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.AttendanceRecord
	for _, r := range m.records {
		if r.SubjectID == subjectID && len(r.WorkDate) >= 7 && r.WorkDate[:7] == month {
			result = append(result, *r)
		}
	}
	return result, nil
}

// Update 模拟乐观锁：版本不匹配时返回 ErrOptimisticLock
func (m *mockAttendanceRepo) Update(_ context.Context, record *model.AttendanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := record.SubjectID + "|" + record.WorkDate
	stored, ok := m.records[key]
	if !ok || stored.Version != record.Version {
		return pkgerrors.ErrOptimisticLock
	}
	record.Version++
	cp := *record
	m.records[key] = &cp
	return nil
}

// ── Mock BreakRepository ──

type mockBreakRepo struct {
	mu      sync.Mutex
	records map[string]*model.BreakRecord // key: subjectID|date
	seq     int
}

func newMockBreakRepo() *mockBreakRepo {
	return &mockBreakRepo{records: make(map[string]*model.BreakRecord)}
}

func (m *mockBreakRepo) Create(_ context.Context, record *model.BreakRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := record.SubjectID + "|" + record.WorkDate
	if _, ok := m.records[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.seq++
	record.BreakID = fmt.Sprintf("brk-%03d", m.seq)
	record.Version = 1
	cp := *record
	m.records[key] = &cp
	return nil
}

func (m *mockBreakRepo) GetBySubjectAndDate(_ context.Context, subjectID, date string) (*model.BreakRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.records[subjectID+"|"+date]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBreakRepo) ListBySubjectAndMonth(_ context.Context, subjectID, month string) ([]model.BreakRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.BreakRecord
	for _, r := range m.records {
		if r.SubjectID == subjectID && len(r.WorkDate) >= 7 && r.WorkDate[:7] == month {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockBreakRepo) ListOpen(_ context.Context) ([]model.BreakRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.BreakRecord
	for _, r := range m.records {
		if r.EndTime == nil {
			result = append(result, *r)
		}
	}
	return result, nil
}

// Update 模拟乐观锁：版本不匹配时返回 ErrOptimisticLock
func (m *mockBreakRepo) Update(_ context.Context, record *model.BreakRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := record.SubjectID + "|" + record.WorkDate
	stored, ok := m.records[key]
	if !ok || stored.Version != record.Version {
		return pkgerrors.ErrOptimisticLock
	}
	record.Version++
	cp := *record
	m.records[key] = &cp
	return nil
}

// ── Mock ReportRepository ──

type mockReportRepo struct {
	mu      sync.Mutex
	reports map[string]*model.DailyReport // key: reportID
	seq     int
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{reports: make(map[string]*model.DailyReport)}
}

func (m *mockReportRepo) Create(_ context.Context, report *model.DailyReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.SubjectID == report.SubjectID && r.ReportDate == report.ReportDate {
			return gorm.ErrDuplicatedKey
		}
	}
	m.seq++
	report.ReportID = fmt.Sprintf("rep-%03d", m.seq)
	report.Version = 1
	cp := *report
	m.reports[report.ReportID] = &cp
	return nil
}

func (m *mockReportRepo) GetByID(_ context.Context, id string) (*model.DailyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reports[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReportRepo) GetBySubjectAndDate(_ context.Context, subjectID, date string) (*model.DailyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.SubjectID == subjectID && r.ReportDate == date {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReportRepo) ListByMonth(_ context.Context, subjectID, month string) ([]model.DailyReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.DailyReport
	for _, r := range m.reports {
		if len(r.ReportDate) >= 7 && r.ReportDate[:7] != month {
			continue
		}
		if subjectID != "" && r.SubjectID != subjectID {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

// Update 模拟乐观锁：版本不匹配时返回 ErrOptimisticLock
func (m *mockReportRepo) Update(_ context.Context, report *model.DailyReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reports[report.ReportID]
	if !ok || stored.Version != report.Version {
		return pkgerrors.ErrOptimisticLock
	}
	report.Version++
	cp := *report
	m.reports[report.ReportID] = &cp
	return nil
}

// setAnnotated 测试辅助：给日报挂上批注关联
func (m *mockReportRepo) setAnnotated(reportID string, annotation *model.Annotation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reports[reportID]; ok {
		r.Annotation = annotation
	}
}

// ── Mock AnnotationRepository ──

type mockAnnotationRepo struct {
	mu          sync.Mutex
	annotations map[string]*model.Annotation // key: reportID
	seq         int
}

func newMockAnnotationRepo() *mockAnnotationRepo {
	return &mockAnnotationRepo{annotations: make(map[string]*model.Annotation)}
}

func (m *mockAnnotationRepo) Create(_ context.Context, annotation *model.Annotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.annotations[annotation.ReportID]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.seq++
	annotation.AnnotationID = fmt.Sprintf("ann-%03d", m.seq)
	annotation.Version = 1
	cp := *annotation
	m.annotations[annotation.ReportID] = &cp
	return nil
}

func (m *mockAnnotationRepo) GetByReportID(_ context.Context, reportID string) (*model.Annotation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.annotations[reportID]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// Update 模拟乐观锁：版本不匹配时返回 ErrOptimisticLock
func (m *mockAnnotationRepo) Update(_ context.Context, annotation *model.Annotation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.annotations[annotation.ReportID]
	if !ok || stored.Version != annotation.Version {
		return pkgerrors.ErrOptimisticLock
	}
	annotation.Version++
	cp := *annotation
	m.annotations[annotation.ReportID] = &cp
	return nil
}

// ── Mock ClosureRepository ──

type mockClosureRepo struct {
	days map[string]*model.ClosureDay // key: date
}

func newMockClosureRepo() *mockClosureRepo {
	return &mockClosureRepo{days: make(map[string]*model.ClosureDay)}
}

func (m *mockClosureRepo) Upsert(_ context.Context, day *model.ClosureDay) (bool, error) {
	_, existed := m.days[day.ClosureDate]
	m.days[day.ClosureDate] = day
	return !existed, nil
}

func (m *mockClosureRepo) ListByMonth(_ context.Context, month string) ([]model.ClosureDay, error) {
	var result []model.ClosureDay
	for _, d := range m.days {
		if len(d.ClosureDate) >= 7 && d.ClosureDate[:7] == month {
			result = append(result, *d)
		}
	}
	return result, nil
}

// ── Mock EditLocker ──

type mockEditLocker struct {
	mu    sync.Mutex
	locks map[string]redis.EditLockInfo
}

func newMockEditLocker() *mockEditLocker {
	return &mockEditLocker{locks: make(map[string]redis.EditLockInfo)}
}

func (m *mockEditLocker) AcquireEditLock(_ context.Context, key string, info redis.EditLockInfo, _ time.Duration) (*redis.EditLockInfo, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if holder, ok := m.locks[key]; ok && holder.HolderID != info.HolderID {
		cp := holder
		return &cp, false, nil
	}
	m.locks[key] = info
	return nil, true, nil
}

func (m *mockEditLocker) GetEditLock(_ context.Context, key string) (*redis.EditLockInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if holder, ok := m.locks[key]; ok {
		cp := holder
		return &cp, nil
	}
	return nil, nil
}

func (m *mockEditLocker) ReleaseEditLock(_ context.Context, key string, holderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if holder, ok := m.locks[key]; ok && holder.HolderID == holderID {
		delete(m.locks, key)
	}
	return nil
}
