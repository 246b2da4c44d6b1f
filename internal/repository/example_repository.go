package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashwinyue/next-label/internal/model"
)

// ExampleRepository Example 及确认状态仓库
type ExampleRepository struct {
	db *gorm.DB
}

// NewExampleRepository 创建 Example 仓库
func NewExampleRepository(db *gorm.DB) *ExampleRepository {
	return &ExampleRepository{db: db}
}

// Create 创建 Example
func (r *ExampleRepository) Create(ctx context.Context, example *model.Example) error {
	return r.db.WithContext(ctx).Create(example).Error
}

// GetByID 获取项目内的 Example
func (r *ExampleRepository) GetByID(ctx context.Context, projectID, id int64) (*model.Example, error) {
	var example model.Example
	err := r.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, id).First(&example).Error
	if err != nil {
		return nil, translate(err, "example %d", id)
	}
	return &example, nil
}

// ExampleFilter 列表过滤条件；Confirmed 非空时按 UserID 的确认状态过滤
type ExampleFilter struct {
	Query     string
	Confirmed *bool
	UserID    int64
}

// List 分页查询 Example
func (r *ExampleRepository) List(ctx context.Context, projectID int64, filter ExampleFilter, page, pageSize int) ([]*model.Example, int64, error) {
	var examples []*model.Example
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Example{}).Where("project_id = ?", projectID)
	if filter.Query != "" {
		query = query.Where("text LIKE ?", "%"+filter.Query+"%")
	}
	if filter.Confirmed != nil {
		confirmed := r.db.Model(&model.ExampleState{}).Select("example_id").Where("confirmed_by = ?", filter.UserID)
		if *filter.Confirmed {
			query = query.Where("id IN (?)", confirmed)
		} else {
			query = query.Where("id NOT IN (?)", confirmed)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count examples: %w", err)
	}

	if page > 0 && pageSize > 0 {
		query = query.Offset((page - 1) * pageSize).Limit(pageSize)
	}

	err := query.Order("id ASC").Find(&examples).Error
	return examples, total, err
}

// Count 项目的 Example 数量
func (r *ExampleRepository) Count(ctx context.Context, projectID int64) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Example{}).Where("project_id = ?", projectID).Count(&total).Error
	return total, err
}

// ListIDs 项目内全部 Example 的 ID
func (r *ExampleRepository) ListIDs(ctx context.Context, projectID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&model.Example{}).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// Delete 删除 Example 及其标注与确认状态
func (r *ExampleRepository) Delete(ctx context.Context, projectID, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("project_id = ? AND id = ?", projectID, id).Delete(&model.Example{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "example %d", id)
		}
		if err := tx.Where("example_id = ?", id).Delete(&model.AnnotationRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete annotations: %w", err)
		}
		if err := tx.Where("example_id = ?", id).Delete(&model.ExampleState{}).Error; err != nil {
			return fmt.Errorf("failed to delete states: %w", err)
		}
		return nil
	})
}

// Confirm 记录确认；重复确认不报错
func (r *ExampleRepository) Confirm(ctx context.Context, state *model.ExampleState) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(state).Error
}

// Unconfirm 撤销确认；未确认时不报错
func (r *ExampleRepository) Unconfirm(ctx context.Context, exampleID, userID int64) error {
	return r.db.WithContext(ctx).
		Where("example_id = ? AND confirmed_by = ?", exampleID, userID).
		Delete(&model.ExampleState{}).Error
}

// IsConfirmed 用户是否已确认该 Example
func (r *ExampleRepository) IsConfirmed(ctx context.Context, exampleID, userID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ExampleState{}).
		Where("example_id = ? AND confirmed_by = ?", exampleID, userID).
		Count(&n).Error
	return n > 0, err
}

// ListStates 列出项目的全部确认状态
func (r *ExampleRepository) ListStates(ctx context.Context, projectID int64) ([]*model.ExampleState, error) {
	var states []*model.ExampleState
	err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("id ASC").Find(&states).Error
	return states, err
}
