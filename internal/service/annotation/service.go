// Package annotation 服务端标注服务：校验、归属与单标签模式
package annotation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	core "github.com/ashwinyue/next-label/internal/annotation"
	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/repository"
	"github.com/ashwinyue/next-label/internal/telemetry"
)

// StatsInvalidator 写操作后使项目统计缓存失效
type StatsInvalidator interface {
	Invalidate(ctx context.Context, projectID int64)
}

// Service 标注服务
type Service struct {
	repo    *repository.Repositories
	stats   StatsInvalidator
	metrics *telemetry.Metrics
	log     *slog.Logger
}

// NewService 创建标注服务
func NewService(repo *repository.Repositories, stats StatsInvalidator, metrics *telemetry.Metrics, log *slog.Logger) *Service {
	return &Service{repo: repo, stats: stats, metrics: metrics, log: log}
}

// Target 一次请求定位的集合：项目、Example、形态与会话用户
type Target struct {
	ProjectID int64
	ExampleID int64
	UserID    int64
	Codec     core.Codec
}

// allowedKinds 每种项目类型可用的标注形态
var allowedKinds = map[string][]core.Kind{
	model.ProjectDocumentClassification: {core.KindCategory},
	model.ProjectSequenceLabeling:       {core.KindSpan, core.KindRelation},
	model.ProjectSeq2seq:                {core.KindSeq2seq},
	model.ProjectIntentDetectionAndSlot: {core.KindCategory, core.KindSpan},
	model.ProjectImageClassification:    {core.KindCategory},
	model.ProjectBoundingBox:            {core.KindBoundingBox},
	model.ProjectSegmentation:           {core.KindSegmentation},
	model.ProjectImageCaptioning:        {core.KindText},
	model.ProjectSpeech2text:            {core.KindText},
}

// AllowedKinds 返回项目类型可用的形态
func AllowedKinds(projectType string) []core.Kind {
	return allowedKinds[projectType]
}

// labelTypeFor 形态引用的标签类型，空串表示不引用标签
func labelTypeFor(kind core.Kind) string {
	switch kind {
	case core.KindCategory, core.KindBoundingBox, core.KindSegmentation:
		return model.LabelTypeCategory
	case core.KindSpan:
		return model.LabelTypeSpan
	case core.KindRelation:
		return model.LabelTypeRelation
	default:
		return ""
	}
}

type scopeCtx struct {
	project *model.Project
	example *model.Example
}

func (s *Service) resolve(ctx context.Context, t Target) (*scopeCtx, error) {
	project, err := s.repo.Project.GetByID(ctx, t.ProjectID)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, k := range allowedKinds[project.ProjectType] {
		if k == t.Codec.Kind {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, errs.InvalidArgument("project type %s does not use %s annotations", project.ProjectType, t.Codec.Kind)
	}
	example, err := s.repo.Example.GetByID(ctx, t.ProjectID, t.ExampleID)
	if err != nil {
		return nil, err
	}
	return &scopeCtx{project: project, example: example}, nil
}

func (t Target) scope(userID int64) repository.Scope {
	return repository.Scope{ExampleID: t.ExampleID, Kind: string(t.Codec.Kind), UserID: userID}
}

// List 列出集合；共享标注模式下返回所有用户的标注
func (s *Service) List(ctx context.Context, t Target) ([]core.Record, error) {
	sc, err := s.resolve(ctx, t)
	if err != nil {
		return nil, err
	}
	user := t.UserID
	if sc.project.SharedAnnotation {
		user = 0
	}
	recs, err := s.repo.Annotation.List(ctx, t.scope(user))
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}

	out := make([]core.Record, 0, len(recs))
	for _, rec := range recs {
		wire, err := toWire(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, wire)
	}
	return out, nil
}

// Create 创建标注，归属于会话用户
func (s *Service) Create(ctx context.Context, t Target, body core.Record) (rec core.Record, err error) {
	defer func() { s.metrics.AnnotationWrite(t.Codec.Fragment, "create", err) }()

	sc, err := s.resolve(ctx, t)
	if err != nil {
		return nil, err
	}
	body = body.Clone()
	if id, ok := body["id"]; ok && id != nil && fmt.Sprint(id) != "0" {
		return nil, errs.InvalidArgument("id must be 0 on create, got %v", id)
	}
	delete(body, "id")
	delete(body, "user")

	a, err := t.Codec.Decode(body)
	if err != nil {
		return nil, err
	}
	a.Meta().Owner = t.UserID
	if err := s.validate(ctx, t, sc, a); err != nil {
		return nil, err
	}

	row, err := newRow(t, a)
	if err != nil {
		return nil, err
	}
	if t.Codec.Kind == core.KindCategory && sc.project.SingleLabel {
		err = s.repo.Annotation.Replace(ctx, t.scope(t.UserID), row)
	} else {
		err = s.repo.Annotation.Create(ctx, row)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create annotation: %w", err)
	}

	s.invalidate(ctx, t.ProjectID)
	return toWire(row)
}

// Update 部分更新会话用户自己的标注
func (s *Service) Update(ctx context.Context, t Target, id int64, patch core.Patch) (rec core.Record, err error) {
	defer func() { s.metrics.AnnotationWrite(t.Codec.Fragment, "update", err) }()

	sc, err := s.resolve(ctx, t)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.Annotation.Get(ctx, t.scope(t.UserID), id)
	if err != nil {
		return nil, err
	}
	current, err := toWire(row)
	if err != nil {
		return nil, err
	}
	a, err := t.Codec.Merge(current, patch)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, t, sc, a); err != nil {
		return nil, err
	}

	updated, err := newRow(t, a)
	if err != nil {
		return nil, err
	}
	updated.ID = row.ID
	updated.UserID = row.UserID
	updated.CreatedAt = row.CreatedAt
	if err := s.repo.Annotation.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update annotation: %w", err)
	}

	s.invalidate(ctx, t.ProjectID)
	return toWire(updated)
}

// Delete 删除单条标注；不存在时返回 ErrNotFound
func (s *Service) Delete(ctx context.Context, t Target, id int64) (err error) {
	defer func() { s.metrics.AnnotationWrite(t.Codec.Fragment, "delete", err) }()

	if _, err := s.resolve(ctx, t); err != nil {
		return err
	}
	n, err := s.deleteIDs(ctx, t, []int64{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.NotFound("%s %d", t.Codec.Kind, id)
	}
	return nil
}

// BulkDelete 批量删除；已不存在的 ID 忽略
func (s *Service) BulkDelete(ctx context.Context, t Target, ids []int64) (err error) {
	defer func() { s.metrics.AnnotationWrite(t.Codec.Fragment, "bulk_delete", err) }()

	if _, err := s.resolve(ctx, t); err != nil {
		return err
	}
	_, err = s.deleteIDs(ctx, t, ids)
	return err
}

// Clear 删除会话用户在该集合中的全部标注
func (s *Service) Clear(ctx context.Context, t Target) (err error) {
	defer func() { s.metrics.AnnotationWrite(t.Codec.Fragment, "clear", err) }()

	if _, err := s.resolve(ctx, t); err != nil {
		return err
	}
	rows, err := s.repo.Annotation.List(ctx, t.scope(t.UserID))
	if err != nil {
		return fmt.Errorf("failed to list annotations: %w", err)
	}
	ids := make([]int64, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	_, err = s.deleteIDs(ctx, t, ids)
	return err
}

// deleteIDs 删除会话用户的标注；删除 Span 时级联删除引用它的关系
func (s *Service) deleteIDs(ctx context.Context, t Target, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := s.repo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := repository.NewAnnotationRepository(tx)
		var err error
		n, err = repo.Delete(ctx, t.scope(t.UserID), ids)
		if err != nil {
			return fmt.Errorf("failed to delete annotations: %w", err)
		}
		if t.Codec.Kind == core.KindSpan && n > 0 {
			if _, err := repo.DeleteRelationsTouching(ctx, t.ExampleID, string(core.KindRelation), ids); err != nil {
				return fmt.Errorf("failed to delete dependent relations: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidate(ctx, t.ProjectID)
	}
	return n, nil
}

func (s *Service) invalidate(ctx context.Context, projectID int64) {
	if s.stats != nil {
		s.stats.Invalidate(ctx, projectID)
	}
}

// newRow 把标注编码为存储行；Payload 不含 id 与 user
func newRow(t Target, a core.Annotation) (*model.AnnotationRecord, error) {
	wire := t.Codec.Encode(a)
	delete(wire, "id")
	delete(wire, "user")
	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", t.Codec.Kind, err)
	}

	row := &model.AnnotationRecord{
		ProjectID: t.ProjectID,
		ExampleID: t.ExampleID,
		Kind:      string(t.Codec.Kind),
		UserID:    a.Meta().Owner,
		LabelID:   a.Meta().Label,
		Payload:   datatypes.JSON(payload),
	}
	if r, ok := a.(*core.Relation); ok {
		row.LabelID = r.Type
		row.SourceID = r.FromID
		row.TargetID = r.ToID
	}
	return row, nil
}

// toWire 存储行还原为线上记录
func toWire(row *model.AnnotationRecord) (core.Record, error) {
	rec, err := core.DecodeRecord(row.Payload)
	if err != nil {
		return nil, fmt.Errorf("stored %s %d is corrupt: %w", row.Kind, row.ID, err)
	}
	rec["id"] = row.ID
	rec["user"] = row.UserID
	return rec, nil
}
