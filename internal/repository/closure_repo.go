package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"care-station/backend/internal/model"
)

// ClosureRepository 设施休业日数据访问接口
type ClosureRepository interface {
	Upsert(ctx context.Context, day *model.ClosureDay) (created bool, err error)
	ListByMonth(ctx context.Context, month string) ([]model.ClosureDay, error)
}

// closureRepo ClosureRepository 的 GORM 实现
type closureRepo struct {
	db *gorm.DB
}

// NewClosureRepo 创建 ClosureRepository 实例
func NewClosureRepo(db *gorm.DB) ClosureRepository {
	return &closureRepo{db: db}
}

// Upsert 按日期插入或更新休业日；返回是否为新插入
func (r *closureRepo) Upsert(ctx context.Context, day *model.ClosureDay) (bool, error) {
	var existing model.ClosureDay
	err := r.db.WithContext(ctx).
		Where("closure_date = ?", day.ClosureDate).
		First(&existing).Error
	if err == nil {
		existing.Name = day.Name
		existing.UpdatedBy = day.UpdatedBy
		return false, r.db.WithContext(ctx).Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return false, err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "closure_date"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_by"}),
		}).
		Create(day).Error
	return err == nil, err
}

func (r *closureRepo) ListByMonth(ctx context.Context, month string) ([]model.ClosureDay, error) {
	var days []model.ClosureDay
	err := r.db.WithContext(ctx).
		Where("closure_date LIKE ?", month+"%").
		Order("closure_date ASC").
		Find(&days).Error
	return days, err
}
