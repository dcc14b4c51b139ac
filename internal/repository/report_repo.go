package repository

import (
	"context"

	"gorm.io/gorm"

	"care-station/backend/internal/model"
	pkgerrors "care-station/backend/pkg/errors"
)

// ReportRepository 日报数据访问接口
type ReportRepository interface {
	Create(ctx context.Context, report *model.DailyReport) error
	GetByID(ctx context.Context, id string) (*model.DailyReport, error)
	GetBySubjectAndDate(ctx context.Context, subjectID, date string) (*model.DailyReport, error)
	ListByMonth(ctx context.Context, subjectID, month string) ([]model.DailyReport, error)
	Update(ctx context.Context, report *model.DailyReport) error
}

// reportRepo ReportRepository 的 GORM 实现
type reportRepo struct {
	db *gorm.DB
}

// NewReportRepo 创建 ReportRepository 实例
func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Create(ctx context.Context, report *model.DailyReport) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (*model.DailyReport, error) {
	var report model.DailyReport
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Annotation").
		Preload("Annotation.Author").
		Where("report_id = ?", id).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) GetBySubjectAndDate(ctx context.Context, subjectID, date string) (*model.DailyReport, error) {
	var report model.DailyReport
	err := r.db.WithContext(ctx).
		Preload("Annotation").
		Where("subject_id = ? AND report_date = ?", subjectID, date).
		First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) ListByMonth(ctx context.Context, subjectID, month string) ([]model.DailyReport, error) {
	var reports []model.DailyReport
	db := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Annotation").
		Where("report_date LIKE ?", month+"%")
	if subjectID != "" {
		db = db.Where("subject_id = ?", subjectID)
	}
	err := db.Order("report_date ASC").Find(&reports).Error
	return reports, err
}

// Update 乐观锁更新：版本不匹配时返回 ErrOptimisticLock
func (r *reportRepo) Update(ctx context.Context, report *model.DailyReport) error {
	oldVersion := report.Version
	result := r.db.WithContext(ctx).
		Model(report).
		Where("report_id = ? AND version = ?", report.ReportID, oldVersion).
		Updates(map[string]interface{}{
			"condition":  report.Condition,
			"body":       report.Body,
			"updated_by": report.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	report.Version = oldVersion + 1
	return nil
}
