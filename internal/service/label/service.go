package label

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	core "github.com/ashwinyue/next-label/internal/annotation"
	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/repository"
)

// 默认颜色
const (
	DefaultBackgroundColor = "#209cee"
	DefaultTextColor       = "#ffffff"
)

var (
	colorPattern  = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	suffixPattern = regexp.MustCompile(`^[0-9a-z]$`)
	prefixKeys    = map[string]bool{"ctrl": true, "shift": true, "ctrl shift": true}
)

// usedBy 引用各类标签的标注形态
var usedBy = map[string][]string{
	model.LabelTypeCategory: {string(core.KindCategory), string(core.KindBoundingBox), string(core.KindSegmentation)},
	model.LabelTypeSpan:     {string(core.KindSpan)},
	model.LabelTypeRelation: {string(core.KindRelation)},
}

// optionalLabel 可选引用分类标签的标注形态
var optionalLabel = []string{string(core.KindText), string(core.KindSeq2seq)}

// StatsInvalidator 写操作后使项目统计缓存失效
type StatsInvalidator interface {
	Invalidate(ctx context.Context, projectID int64)
}

// Service 标签服务
type Service struct {
	repo  *repository.Repositories
	stats StatsInvalidator
}

// NewService 创建标签服务
func NewService(repo *repository.Repositories, stats StatsInvalidator) *Service {
	return &Service{repo: repo, stats: stats}
}

// CreateLabelRequest 创建标签请求
type CreateLabelRequest struct {
	Type            string  `json:"type" binding:"required"`
	Text            string  `json:"text" binding:"required"`
	PrefixKey       *string `json:"prefix_key"`
	SuffixKey       *string `json:"suffix_key"`
	BackgroundColor string  `json:"background_color"`
	TextColor       string  `json:"text_color"`
}

// UpdateLabelRequest 更新标签请求，nil 字段保持不变
type UpdateLabelRequest struct {
	Text            *string `json:"text"`
	PrefixKey       *string `json:"prefix_key"`
	SuffixKey       *string `json:"suffix_key"`
	BackgroundColor *string `json:"background_color"`
	TextColor       *string `json:"text_color"`
}

// CreateLabel 创建标签
func (s *Service) CreateLabel(ctx context.Context, projectID int64, req *CreateLabelRequest) (*model.Label, error) {
	if _, ok := usedBy[req.Type]; !ok {
		return nil, errs.InvalidArgument("unknown label type %q", req.Type)
	}
	label := &model.Label{
		ProjectID:       projectID,
		Type:            req.Type,
		Text:            req.Text,
		PrefixKey:       emptyToNil(req.PrefixKey),
		SuffixKey:       emptyToNil(req.SuffixKey),
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
	}
	if label.BackgroundColor == "" {
		label.BackgroundColor = DefaultBackgroundColor
	}
	if label.TextColor == "" {
		label.TextColor = DefaultTextColor
	}
	if err := s.check(ctx, label); err != nil {
		return nil, err
	}

	if err := s.repo.Label.Create(ctx, label); err != nil {
		return nil, fmt.Errorf("failed to create label: %w", err)
	}
	s.invalidate(ctx, projectID)
	return label, nil
}

// UpdateLabel 更新标签
func (s *Service) UpdateLabel(ctx context.Context, projectID, id int64, req *UpdateLabelRequest) (*model.Label, error) {
	label, err := s.repo.Label.GetByID(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	if req.Text != nil {
		label.Text = *req.Text
	}
	// 快捷键整体替换，空串表示清除
	if req.PrefixKey != nil || req.SuffixKey != nil {
		label.PrefixKey = emptyToNil(req.PrefixKey)
		label.SuffixKey = emptyToNil(req.SuffixKey)
	}
	if req.BackgroundColor != nil {
		label.BackgroundColor = *req.BackgroundColor
	}
	if req.TextColor != nil {
		label.TextColor = *req.TextColor
	}
	if err := s.check(ctx, label); err != nil {
		return nil, err
	}

	if err := s.repo.Label.Update(ctx, label); err != nil {
		return nil, fmt.Errorf("failed to update label: %w", err)
	}
	s.invalidate(ctx, projectID)
	return label, nil
}

// check 校验格式与项目内唯一性
func (s *Service) check(ctx context.Context, label *model.Label) error {
	if label.Text == "" {
		return errs.InvalidArgument("label text is required")
	}
	if !colorPattern.MatchString(label.BackgroundColor) || !colorPattern.MatchString(label.TextColor) {
		return errs.InvalidArgument("colors must be #rrggbb, got %q and %q", label.BackgroundColor, label.TextColor)
	}
	if label.PrefixKey != nil && label.SuffixKey == nil {
		return errs.InvalidArgument("prefix key %q needs a suffix key", *label.PrefixKey)
	}
	if label.PrefixKey != nil && !prefixKeys[*label.PrefixKey] {
		return errs.InvalidArgument("unknown prefix key %q", *label.PrefixKey)
	}
	if label.SuffixKey != nil && !suffixPattern.MatchString(*label.SuffixKey) {
		return errs.InvalidArgument("suffix key must be one of 0-9 or a-z, got %q", *label.SuffixKey)
	}

	existing, err := s.repo.Label.GetByText(ctx, label.ProjectID, label.Type, label.Text)
	if err == nil && existing.ID != label.ID {
		return errs.Conflict("%s label %q already exists", label.Type, label.Text)
	}
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return err
	}

	if label.SuffixKey == nil {
		return nil
	}
	existing, err = s.repo.Label.GetByShortcut(ctx, label.ProjectID, label.PrefixKey, *label.SuffixKey)
	if err == nil && existing.ID != label.ID {
		return errs.Conflict("shortcut is already used by label %q", existing.Text)
	}
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return err
	}
	return nil
}

// GetLabel 获取标签
func (s *Service) GetLabel(ctx context.Context, projectID, id int64) (*model.Label, error) {
	return s.repo.Label.GetByID(ctx, projectID, id)
}

// ListLabels 列出标签，labelType 为空时返回全部
func (s *Service) ListLabels(ctx context.Context, projectID int64, labelType string) ([]*model.Label, error) {
	if labelType != "" {
		if _, ok := usedBy[labelType]; !ok {
			return nil, errs.InvalidArgument("unknown label type %q", labelType)
		}
	}
	labels, err := s.repo.Label.List(ctx, projectID, labelType)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

// DeleteLabel 删除标签及引用它的标注；Span 被删时一并删除相连的关系，文本与 seq2seq 只摘除标签
func (s *Service) DeleteLabel(ctx context.Context, projectID, id int64) error {
	label, err := s.repo.Label.GetByID(ctx, projectID, id)
	if err != nil {
		return err
	}
	err = s.repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		annotations := repository.NewAnnotationRepository(tx)
		switch label.Type {
		case model.LabelTypeSpan:
			if err := deleteRelationsOfSpans(ctx, annotations, projectID, id); err != nil {
				return err
			}
		case model.LabelTypeCategory:
			if err := detachOptionalLabel(ctx, annotations, projectID, id); err != nil {
				return err
			}
		}
		if _, err := annotations.DeleteByLabel(ctx, projectID, usedBy[label.Type], id); err != nil {
			return fmt.Errorf("failed to delete annotations: %w", err)
		}
		return repository.NewLabelRepository(tx).Delete(ctx, projectID, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, projectID)
	return nil
}

// deleteRelationsOfSpans 删除以该标签的 Span 为端点的关系
func deleteRelationsOfSpans(ctx context.Context, annotations *repository.AnnotationRepository, projectID, labelID int64) error {
	spans, err := annotations.ListByLabel(ctx, projectID, []string{string(core.KindSpan)}, labelID)
	if err != nil {
		return fmt.Errorf("failed to list spans: %w", err)
	}
	byExample := make(map[int64][]int64)
	for _, row := range spans {
		byExample[row.ExampleID] = append(byExample[row.ExampleID], row.ID)
	}
	for exampleID, ids := range byExample {
		if _, err := annotations.DeleteRelationsTouching(ctx, exampleID, string(core.KindRelation), ids); err != nil {
			return fmt.Errorf("failed to delete relations: %w", err)
		}
	}
	return nil
}

// detachOptionalLabel 文本与 seq2seq 的标签可选，标签删除后保留标注本身
func detachOptionalLabel(ctx context.Context, annotations *repository.AnnotationRepository, projectID, labelID int64) error {
	rows, err := annotations.ListByLabel(ctx, projectID, optionalLabel, labelID)
	if err != nil {
		return fmt.Errorf("failed to list annotations: %w", err)
	}
	for _, row := range rows {
		rec, err := core.DecodeRecord(row.Payload)
		if err != nil {
			return err
		}
		delete(rec, "label")
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode annotation %d: %w", row.ID, err)
		}
		row.Payload = datatypes.JSON(payload)
		row.LabelID = 0
		if err := annotations.Save(ctx, row); err != nil {
			return fmt.Errorf("failed to detach label from annotation %d: %w", row.ID, err)
		}
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, projectID int64) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, projectID)
	}
}

func emptyToNil(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
