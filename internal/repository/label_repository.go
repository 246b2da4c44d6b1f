package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashwinyue/next-label/internal/model"
)

// LabelRepository 标签仓库
type LabelRepository struct {
	db *gorm.DB
}

// NewLabelRepository 创建标签仓库
func NewLabelRepository(db *gorm.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// Create 创建标签
func (r *LabelRepository) Create(ctx context.Context, label *model.Label) error {
	return translate(r.db.WithContext(ctx).Create(label).Error, "label %q", label.Text)
}

// Update 更新标签
func (r *LabelRepository) Update(ctx context.Context, label *model.Label) error {
	return translate(r.db.WithContext(ctx).Save(label).Error, "label %q", label.Text)
}

// GetByID 获取项目内的标签
func (r *LabelRepository) GetByID(ctx context.Context, projectID, id int64) (*model.Label, error) {
	var label model.Label
	err := r.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, id).First(&label).Error
	if err != nil {
		return nil, translate(err, "label %d", id)
	}
	return &label, nil
}

// GetByText 根据名称获取同类型标签
func (r *LabelRepository) GetByText(ctx context.Context, projectID int64, labelType, text string) (*model.Label, error) {
	var label model.Label
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND type = ? AND text = ?", projectID, labelType, text).
		First(&label).Error
	if err != nil {
		return nil, translate(err, "label %q", text)
	}
	return &label, nil
}

// GetByShortcut 根据快捷键获取标签；prefix 为空表示只有 suffix
func (r *LabelRepository) GetByShortcut(ctx context.Context, projectID int64, prefix *string, suffix string) (*model.Label, error) {
	var label model.Label
	query := r.db.WithContext(ctx).Where("project_id = ? AND suffix_key = ?", projectID, suffix)
	if prefix == nil {
		query = query.Where("prefix_key IS NULL")
	} else {
		query = query.Where("prefix_key = ?", *prefix)
	}
	if err := query.First(&label).Error; err != nil {
		return nil, translate(err, "shortcut %q", suffix)
	}
	return &label, nil
}

// List 列出项目标签，labelType 为空时返回全部类型
func (r *LabelRepository) List(ctx context.Context, projectID int64, labelType string) ([]*model.Label, error) {
	var labels []*model.Label
	query := r.db.WithContext(ctx).Where("project_id = ?", projectID)
	if labelType != "" {
		query = query.Where("type = ?", labelType)
	}
	err := query.Order("id ASC").Find(&labels).Error
	return labels, err
}

// Delete 删除标签
func (r *LabelRepository) Delete(ctx context.Context, projectID, id int64) error {
	res := r.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, id).Delete(&model.Label{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "label %d", id)
	}
	return nil
}
