package repository

import (
	"context"

	"gorm.io/gorm"

	"care-station/backend/internal/model"
	pkgerrors "care-station/backend/pkg/errors"
)

// AnnotationRepository 职员批注数据访问接口
type AnnotationRepository interface {
	Create(ctx context.Context, annotation *model.Annotation) error
	GetByReportID(ctx context.Context, reportID string) (*model.Annotation, error)
	Update(ctx context.Context, annotation *model.Annotation) error
}

// annotationRepo AnnotationRepository 的 GORM 实现
type annotationRepo struct {
	db *gorm.DB
}

// NewAnnotationRepo 创建 AnnotationRepository 实例
func NewAnnotationRepo(db *gorm.DB) AnnotationRepository {
	return &annotationRepo{db: db}
}

func (r *annotationRepo) Create(ctx context.Context, annotation *model.Annotation) error {
	return r.db.WithContext(ctx).Create(annotation).Error
}

func (r *annotationRepo) GetByReportID(ctx context.Context, reportID string) (*model.Annotation, error) {
	var annotation model.Annotation
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("report_id = ?", reportID).
		First(&annotation).Error
	if err != nil {
		return nil, err
	}
	return &annotation, nil
}

// Update 乐观锁更新：版本不匹配时返回 ErrOptimisticLock
// 这是陈旧写入检测的最终防线——版本比对与写入在同一条 SQL 中原子完成，
// 两个并发保存只有一个能命中 WHERE version = 旧值
func (r *annotationRepo) Update(ctx context.Context, annotation *model.Annotation) error {
	oldVersion := annotation.Version
	result := r.db.WithContext(ctx).
		Model(annotation).
		Where("annotation_id = ? AND version = ?", annotation.AnnotationID, oldVersion).
		Updates(map[string]interface{}{
			"author_id":  annotation.AuthorID,
			"content":    annotation.Content,
			"updated_by": annotation.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	annotation.Version = oldVersion + 1
	return nil
}
