package repository

import (
	"context"

	"gorm.io/gorm"

	"care-station/backend/internal/model"
	pkgerrors "care-station/backend/pkg/errors"
)

// AttendanceRepository 考勤记录数据访问接口
type AttendanceRepository interface {
	Create(ctx context.Context, record *model.AttendanceRecord) error
	GetByID(ctx context.Context, id string) (*model.AttendanceRecord, error)
	GetBySubjectAndDate(ctx context.Context, subjectID, date string) (*model.AttendanceRecord, error)
	ListBySubjectAndMonth(ctx context.Context, subjectID, month string) ([]model.AttendanceRecord, error)
	Update(ctx context.Context, record *model.AttendanceRecord) error
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("attendance_id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepo) GetBySubjectAndDate(ctx context.Context, subjectID, date string) (*model.AttendanceRecord, error) {
	var record model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND work_date = ?", subjectID, date).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *attendanceRepo) ListBySubjectAndMonth(ctx context.Context, subjectID, month string) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("subject_id = ? AND work_date LIKE ?", subjectID, month+"%").
		Order("work_date ASC").
		Find(&records).Error
	return records, err
}

// Update 乐观锁更新：版本不匹配时返回 ErrOptimisticLock
func (r *attendanceRepo) Update(ctx context.Context, record *model.AttendanceRecord) error {
	oldVersion := record.Version
	result := r.db.WithContext(ctx).
		Model(record).
		Where("attendance_id = ? AND version = ?", record.AttendanceID, oldVersion).
		Updates(map[string]interface{}{
			"clock_in":   record.ClockIn,
			"clock_out":  record.ClockOut,
			"status":     record.Status,
			"updated_by": record.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	record.Version = oldVersion + 1
	return nil
}
