package example

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/repository"
)

// StatsInvalidator 写操作后使项目统计缓存失效
type StatsInvalidator interface {
	Invalidate(ctx context.Context, projectID int64)
}

// Service Example 与确认状态服务
type Service struct {
	repo  *repository.Repositories
	stats StatsInvalidator
}

// NewService 创建 Example 服务
func NewService(repo *repository.Repositories, stats StatsInvalidator) *Service {
	return &Service{repo: repo, stats: stats}
}

// CreateExampleRequest 创建 Example 请求
type CreateExampleRequest struct {
	Text     string         `json:"text"`
	Filename string         `json:"filename"`
	Meta     map[string]any `json:"meta"`
}

// ListExamplesRequest 列表请求
type ListExamplesRequest struct {
	Query     string `form:"q"`
	Confirmed *bool  `form:"confirmed"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
}

// ExampleView 带会话用户确认状态的 Example
type ExampleView struct {
	*model.Example
	IsConfirmed bool `json:"is_confirmed"`
}

// ListExamplesResponse Example 列表响应
type ListExamplesResponse struct {
	Examples []ExampleView `json:"examples"`
	Total    int64         `json:"total"`
}

// CreateExample 创建 Example
func (s *Service) CreateExample(ctx context.Context, projectID int64, req *CreateExampleRequest) (*model.Example, error) {
	if _, err := s.repo.Project.GetByID(ctx, projectID); err != nil {
		return nil, err
	}
	meta := datatypes.JSON("{}")
	if len(req.Meta) > 0 {
		data, err := json.Marshal(req.Meta)
		if err != nil {
			return nil, fmt.Errorf("failed to encode meta: %w", err)
		}
		meta = datatypes.JSON(data)
	}

	example := &model.Example{
		ProjectID: projectID,
		Text:      req.Text,
		Filename:  req.Filename,
		Meta:      meta,
	}
	if err := s.repo.Example.Create(ctx, example); err != nil {
		return nil, fmt.Errorf("failed to create example: %w", err)
	}
	s.invalidate(ctx, projectID)
	return example, nil
}

// GetExample 获取 Example
func (s *Service) GetExample(ctx context.Context, projectID, id, userID int64) (*ExampleView, error) {
	example, err := s.repo.Example.GetByID(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	confirmed, err := s.repo.Example.IsConfirmed(ctx, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get example state: %w", err)
	}
	return &ExampleView{Example: example, IsConfirmed: confirmed}, nil
}

// ListExamples 分页列出 Example
func (s *Service) ListExamples(ctx context.Context, projectID, userID int64, req *ListExamplesRequest) (*ListExamplesResponse, error) {
	page, pageSize := req.Page, req.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	filter := repository.ExampleFilter{Query: req.Query, Confirmed: req.Confirmed, UserID: userID}
	examples, total, err := s.repo.Example.List(ctx, projectID, filter, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list examples: %w", err)
	}
	states, err := s.repo.Example.ListStates(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list example states: %w", err)
	}
	confirmed := make(map[int64]bool)
	for _, st := range states {
		if st.ConfirmedBy == userID {
			confirmed[st.ExampleID] = true
		}
	}

	views := make([]ExampleView, len(examples))
	for i, e := range examples {
		views[i] = ExampleView{Example: e, IsConfirmed: confirmed[e.ID]}
	}
	return &ListExamplesResponse{Examples: views, Total: total}, nil
}

// DeleteExample 删除 Example
func (s *Service) DeleteExample(ctx context.Context, projectID, id int64) error {
	if err := s.repo.Example.Delete(ctx, projectID, id); err != nil {
		return err
	}
	s.invalidate(ctx, projectID)
	return nil
}

// Confirm 会话用户确认 Example 已完成
func (s *Service) Confirm(ctx context.Context, projectID, exampleID, userID int64) error {
	if _, err := s.repo.Example.GetByID(ctx, projectID, exampleID); err != nil {
		return err
	}
	state := &model.ExampleState{ProjectID: projectID, ExampleID: exampleID, ConfirmedBy: userID}
	if err := s.repo.Example.Confirm(ctx, state); err != nil {
		return fmt.Errorf("failed to confirm example: %w", err)
	}
	s.invalidate(ctx, projectID)
	return nil
}

// Unconfirm 撤销确认
func (s *Service) Unconfirm(ctx context.Context, projectID, exampleID, userID int64) error {
	if _, err := s.repo.Example.GetByID(ctx, projectID, exampleID); err != nil {
		return err
	}
	if err := s.repo.Example.Unconfirm(ctx, exampleID, userID); err != nil {
		return fmt.Errorf("failed to unconfirm example: %w", err)
	}
	s.invalidate(ctx, projectID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, projectID int64) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, projectID)
	}
}
