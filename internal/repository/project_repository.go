package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ashwinyue/next-label/internal/model"
)

// ProjectRepository 项目仓库
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建项目仓库
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// CreateWithAdmin 创建项目，并把创建者登记为 project_admin
func (r *ProjectRepository) CreateWithAdmin(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(project).Error; err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		member := &model.Member{ProjectID: project.ID, UserID: project.CreatedBy, Role: model.RoleProjectAdmin}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("failed to add project admin: %w", err)
		}
		return nil
	})
}

// GetByID 根据 ID 获取项目
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, translate(err, "project %d", id)
	}
	return &project, nil
}

// ListByUser 列出用户参与的项目
func (r *ProjectRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.WithContext(ctx).
		Joins("JOIN members ON members.project_id = projects.id").
		Where("members.user_id = ?", userID).
		Order("projects.id ASC").
		Find(&projects).Error
	return projects, err
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete 删除项目及其下全部数据
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&model.AnnotationRecord{}, &model.ExampleState{}, &model.Example{}, &model.Label{}, &model.Member{}} {
			if err := tx.Where("project_id = ?", id).Delete(m).Error; err != nil {
				return fmt.Errorf("failed to delete %T: %w", m, err)
			}
		}
		res := tx.Delete(&model.Project{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "project %d", id)
		}
		return nil
	})
}
