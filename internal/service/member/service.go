package member

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/repository"
)

// StatsInvalidator 写操作后使项目统计缓存失效
type StatsInvalidator interface {
	Invalidate(ctx context.Context, projectID int64)
}

// Service 成员服务
type Service struct {
	repo  *repository.Repositories
	stats StatsInvalidator
}

// NewService 创建成员服务
func NewService(repo *repository.Repositories, stats StatsInvalidator) *Service {
	return &Service{repo: repo, stats: stats}
}

// AddMemberRequest 添加成员请求
type AddMemberRequest struct {
	UserID int64  `json:"user" binding:"required"`
	Role   string `json:"rolename" binding:"required"`
}

// UpdateMemberRequest 修改角色请求
type UpdateMemberRequest struct {
	Role string `json:"rolename" binding:"required"`
}

// Authorize 返回会话用户的成员身份；非成员返回 ErrForbidden
func (s *Service) Authorize(ctx context.Context, projectID, userID int64) (*model.Member, error) {
	if _, err := s.repo.Project.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	m, err := s.repo.Member.GetByUser(ctx, projectID, userID)
	if errors.Is(err, errs.ErrNotFound) {
		return nil, errs.Forbidden("user %d is not a member of project %d", userID, projectID)
	}
	return m, err
}

// AddMember 添加成员
func (s *Service) AddMember(ctx context.Context, projectID int64, req *AddMemberRequest) (*model.Member, error) {
	if !model.IsValidRole(req.Role) {
		return nil, errs.InvalidArgument("unknown role %q", req.Role)
	}
	user, err := s.repo.User.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	m := &model.Member{ProjectID: projectID, UserID: user.ID, Role: req.Role}
	if err := s.repo.Member.Create(ctx, m); err != nil {
		if errors.Is(err, errs.ErrConflict) {
			return nil, errs.Conflict("user %q is already a member", user.Username)
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	m.Username = user.Username
	s.invalidate(ctx, projectID)
	return m, nil
}

// UpdateMember 修改角色；项目须至少保留一名管理员
func (s *Service) UpdateMember(ctx context.Context, projectID, id int64, req *UpdateMemberRequest) (*model.Member, error) {
	if !model.IsValidRole(req.Role) {
		return nil, errs.InvalidArgument("unknown role %q", req.Role)
	}
	m, err := s.repo.Member.GetByID(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if m.Role == model.RoleProjectAdmin && req.Role != model.RoleProjectAdmin {
		if err := s.keepAdmin(ctx, projectID, m.ID); err != nil {
			return nil, err
		}
	}

	m.Role = req.Role
	if err := s.repo.Member.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	s.invalidate(ctx, projectID)
	return m, nil
}

// GetMember 获取成员
func (s *Service) GetMember(ctx context.Context, projectID, id int64) (*model.Member, error) {
	return s.repo.Member.GetByID(ctx, projectID, id)
}

// ListMembers 列出成员
func (s *Service) ListMembers(ctx context.Context, projectID int64) ([]*model.Member, error) {
	members, err := s.repo.Member.List(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// RemoveMember 移除成员
func (s *Service) RemoveMember(ctx context.Context, projectID, id int64) error {
	m, err := s.repo.Member.GetByID(ctx, projectID, id)
	if err != nil {
		return err
	}
	if m.Role == model.RoleProjectAdmin {
		if err := s.keepAdmin(ctx, projectID, m.ID); err != nil {
			return err
		}
	}
	if err := s.repo.Member.Delete(ctx, projectID, id); err != nil {
		return err
	}
	s.invalidate(ctx, projectID)
	return nil
}

// keepAdmin 排除 memberID 后项目仍需有管理员
func (s *Service) keepAdmin(ctx context.Context, projectID, memberID int64) error {
	members, err := s.repo.Member.List(ctx, projectID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}
	for _, other := range members {
		if other.ID != memberID && other.Role == model.RoleProjectAdmin {
			return nil
		}
	}
	return errs.InvalidArgument("project %d needs at least one %s", projectID, model.RoleProjectAdmin)
}

func (s *Service) invalidate(ctx context.Context, projectID int64) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, projectID)
	}
}
