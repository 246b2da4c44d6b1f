package project

import (
	"context"
	"fmt"

	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/repository"
)

// StatsInvalidator 写操作后使项目统计缓存失效
type StatsInvalidator interface {
	Invalidate(ctx context.Context, projectID int64)
}

// Service 项目服务
type Service struct {
	repo  *repository.Repositories
	stats StatsInvalidator
}

// NewService 创建项目服务
func NewService(repo *repository.Repositories, stats StatsInvalidator) *Service {
	return &Service{repo: repo, stats: stats}
}

// CreateProjectRequest 创建项目请求
type CreateProjectRequest struct {
	Name             string `json:"name" binding:"required"`
	Description      string `json:"description"`
	ProjectType      string `json:"project_type" binding:"required"`
	SingleLabel      bool   `json:"single_label"`
	SharedAnnotation bool   `json:"shared_annotation"`
	AllowOverlapping bool   `json:"allow_overlapping"`
	UseRelation      bool   `json:"use_relation"`
}

// UpdateProjectRequest 更新项目请求；项目类型创建后不可修改
type UpdateProjectRequest struct {
	Name             *string `json:"name"`
	Description      *string `json:"description"`
	SingleLabel      *bool   `json:"single_label"`
	SharedAnnotation *bool   `json:"shared_annotation"`
	AllowOverlapping *bool   `json:"allow_overlapping"`
	UseRelation      *bool   `json:"use_relation"`
}

func validType(projectType string) bool {
	for _, t := range model.ProjectTypes {
		if t == projectType {
			return true
		}
	}
	return false
}

// CreateProject 创建项目，创建者成为管理员
func (s *Service) CreateProject(ctx context.Context, userID int64, req *CreateProjectRequest) (*model.Project, error) {
	if !validType(req.ProjectType) {
		return nil, errs.InvalidArgument("unknown project type %q", req.ProjectType)
	}
	if req.UseRelation && req.ProjectType != model.ProjectSequenceLabeling {
		return nil, errs.InvalidArgument("relations are only available for %s projects", model.ProjectSequenceLabeling)
	}

	p := &model.Project{
		Name:             req.Name,
		Description:      req.Description,
		ProjectType:      req.ProjectType,
		SingleLabel:      req.SingleLabel,
		SharedAnnotation: req.SharedAnnotation,
		AllowOverlapping: req.AllowOverlapping,
		UseRelation:      req.UseRelation,
		CreatedBy:        userID,
	}
	if err := s.repo.Project.CreateWithAdmin(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return p, nil
}

// GetProject 获取项目
func (s *Service) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	return s.repo.Project.GetByID(ctx, id)
}

// ListProjects 列出用户参与的项目
func (s *Service) ListProjects(ctx context.Context, userID int64) ([]*model.Project, error) {
	projects, err := s.repo.Project.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// UpdateProject 更新项目配置
func (s *Service) UpdateProject(ctx context.Context, id int64, req *UpdateProjectRequest) (*model.Project, error) {
	p, err := s.repo.Project.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, errs.InvalidArgument("project name must not be empty")
		}
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.SingleLabel != nil {
		p.SingleLabel = *req.SingleLabel
	}
	if req.SharedAnnotation != nil {
		p.SharedAnnotation = *req.SharedAnnotation
	}
	if req.AllowOverlapping != nil {
		p.AllowOverlapping = *req.AllowOverlapping
	}
	if req.UseRelation != nil {
		if *req.UseRelation && p.ProjectType != model.ProjectSequenceLabeling {
			return nil, errs.InvalidArgument("relations are only available for %s projects", model.ProjectSequenceLabeling)
		}
		p.UseRelation = *req.UseRelation
	}

	if err := s.repo.Project.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	// shared 标志写入快照
	s.invalidate(ctx, id)
	return p, nil
}

// DeleteProject 删除项目及其下全部数据
func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	if err := s.repo.Project.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, projectID int64) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, projectID)
	}
}
