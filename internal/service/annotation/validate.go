package annotation

import (
	"context"
	"errors"
	"math"
	"unicode/utf8"

	core "github.com/ashwinyue/next-label/internal/annotation"
	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/repository"
)

// validate 检查标注与项目数据的一致性
func (s *Service) validate(ctx context.Context, t Target, sc *scopeCtx, a core.Annotation) error {
	if t.Codec.Check != nil {
		if err := t.Codec.Check(a); err != nil {
			return err
		}
	}

	switch v := a.(type) {
	case *core.Span:
		if err := s.checkLabel(ctx, t, v.Label, true); err != nil {
			return err
		}
		return s.checkSpan(ctx, t, sc, v)
	case *core.Relation:
		if err := s.checkLabel(ctx, t, v.Type, true); err != nil {
			return err
		}
		return s.checkRelation(ctx, t, sc, v)
	case *core.BoundingBox:
		if err := s.checkLabel(ctx, t, v.Label, true); err != nil {
			return err
		}
		if !(v.Width > 0) || !(v.Height > 0) || !finite(v.X, v.Y, v.Width, v.Height) {
			return errs.InvalidArgument("bounding box needs positive finite size, got %gx%g", v.Width, v.Height)
		}
	case *core.Segmentation:
		if err := s.checkLabel(ctx, t, v.Label, true); err != nil {
			return err
		}
		for _, p := range v.Points {
			if !finite(p.X, p.Y) {
				return errs.InvalidArgument("segmentation point (%g, %g) is not finite", p.X, p.Y)
			}
		}
	case *core.Category:
		return s.checkLabel(ctx, t, v.Label, true)
	default:
		// TextLabel 与 Seq2seq 的标签可为空
		return s.checkLabel(ctx, t, a.Meta().Label, false)
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// checkLabel 标签必须属于同一项目且类型匹配
func (s *Service) checkLabel(ctx context.Context, t Target, labelID int64, required bool) error {
	if labelID == 0 {
		if required {
			return errs.InvalidArgument("%s requires a label", t.Codec.Kind)
		}
		return nil
	}
	label, err := s.repo.Label.GetByID(ctx, t.ProjectID, labelID)
	if errors.Is(err, errs.ErrNotFound) {
		return errs.InvalidArgument("label %d does not exist in project %d", labelID, t.ProjectID)
	}
	if err != nil {
		return err
	}
	want := labelTypeFor(t.Codec.Kind)
	if want == "" {
		want = model.LabelTypeCategory
	}
	if label.Type != want {
		return errs.InvalidArgument("label %d is a %s label, %s needs a %s label", labelID, label.Type, t.Codec.Kind, want)
	}
	return nil
}

// checkSpan 偏移量是 Example 文本的码点下标
func (s *Service) checkSpan(ctx context.Context, t Target, sc *scopeCtx, span *core.Span) error {
	length := int64(utf8.RuneCountInString(sc.example.Text))
	if span.EndOffset > length {
		return errs.InvalidArgument("span [%d, %d) exceeds text length %d", span.StartOffset, span.EndOffset, length)
	}
	if sc.project.AllowOverlapping {
		return nil
	}

	rows, err := s.repo.Annotation.List(ctx, t.scope(t.UserID))
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.ID == span.ID {
			continue
		}
		wire, err := toWire(row)
		if err != nil {
			return err
		}
		other, err := core.SpanFromWire(wire)
		if err != nil {
			return err
		}
		if span.StartOffset < other.EndOffset && other.StartOffset < span.EndOffset {
			return errs.InvalidArgument("span [%d, %d) overlaps span %d [%d, %d)",
				span.StartOffset, span.EndOffset, other.ID, other.StartOffset, other.EndOffset)
		}
	}
	return nil
}

// checkRelation 两端必须是同一 Example 中的不同 Span
func (s *Service) checkRelation(ctx context.Context, t Target, sc *scopeCtx, r *core.Relation) error {
	if !sc.project.UseRelation {
		return errs.InvalidArgument("project %d does not use relations", t.ProjectID)
	}
	if r.FromID == r.ToID {
		return errs.InvalidArgument("relation endpoints must differ, got %d twice", r.FromID)
	}
	owner := t.UserID
	if sc.project.SharedAnnotation {
		owner = 0
	}
	spanScope := repository.Scope{ExampleID: t.ExampleID, Kind: string(core.KindSpan), UserID: owner}
	rows, err := s.repo.Annotation.ListByIDs(ctx, spanScope, []int64{r.FromID, r.ToID})
	if err != nil {
		return err
	}
	if len(rows) != 2 {
		return errs.InvalidArgument("relation endpoints %d and %d must be spans of example %d", r.FromID, r.ToID, t.ExampleID)
	}
	return nil
}
