package annotation

import (
	"fmt"

	"github.com/ashwinyue/next-label/internal/errs"
)

const (
	examplePathFormat = "/projects/%d/examples/%d"
	seq2seqPathFormat = "/projects/%d/seq2seq/examples/%d"
)

// Shape 一种任务形态的编解码策略与端点片段
// 通用仓库只依赖这组函数，不依赖具体类型的继承关系。
type Shape[T Annotation] struct {
	Kind     Kind
	Fragment string // 端点片段，例如 spans
	Fields   []Field
	Encode   func(T) Record
	Decode   func(Record) (T, error)
	// Check 写入前的前置检查，可为 nil
	Check func(T) error

	pathFormat string
}

// Path 集合路径
func (s Shape[T]) Path(projectID, exampleID int64) string {
	return fmt.Sprintf(s.pathFormat, projectID, exampleID) + "/" + s.Fragment
}

// ItemPath 单条标注路径
func (s Shape[T]) ItemPath(projectID, exampleID, id int64) string {
	return fmt.Sprintf("%s/%d", s.Path(projectID, exampleID), id)
}

// Codec 类型擦除后的形态，供服务端按片段分派
func (s Shape[T]) Codec() Codec {
	return Codec{
		Kind:     s.Kind,
		Fragment: s.Fragment,
		Fields:   s.Fields,
		Encode: func(a Annotation) Record {
			return s.Encode(a.(T))
		},
		Decode: func(rec Record) (Annotation, error) {
			a, err := s.Decode(rec)
			if err != nil {
				return nil, err
			}
			return a, nil
		},
		Check: func(a Annotation) error {
			if s.Check == nil {
				return nil
			}
			return s.Check(a.(T))
		},
	}
}

// 七种任务形态
var (
	Categories = Shape[*Category]{
		Kind: KindCategory, Fragment: "categories", Fields: categoryFields,
		Encode: (*Category).ToWire, Decode: CategoryFromWire,
		pathFormat: examplePathFormat,
	}
	Texts = Shape[*TextLabel]{
		Kind: KindText, Fragment: "texts", Fields: textFields,
		Encode: (*TextLabel).ToWire, Decode: TextLabelFromWire,
		pathFormat: examplePathFormat,
	}
	Spans = Shape[*Span]{
		Kind: KindSpan, Fragment: "spans", Fields: spanFields,
		Encode: (*Span).ToWire, Decode: SpanFromWire,
		Check:      checkSpan,
		pathFormat: examplePathFormat,
	}
	Relations = Shape[*Relation]{
		Kind: KindRelation, Fragment: "relations", Fields: relationFields,
		Encode: (*Relation).ToWire, Decode: RelationFromWire,
		Check:      checkRelation,
		pathFormat: examplePathFormat,
	}
	BoundingBoxes = Shape[*BoundingBox]{
		Kind: KindBoundingBox, Fragment: "bboxes", Fields: boundingBoxFields,
		Encode: (*BoundingBox).ToWire, Decode: BoundingBoxFromWire,
		pathFormat: examplePathFormat,
	}
	Segmentations = Shape[*Segmentation]{
		Kind: KindSegmentation, Fragment: "segments", Fields: segmentationFields,
		Encode: (*Segmentation).ToWire, Decode: SegmentationFromWire,
		Check:      checkSegmentation,
		pathFormat: examplePathFormat,
	}
	Seq2seqs = Shape[*Seq2seq]{
		Kind: KindSeq2seq, Fragment: "texts", Fields: seq2seqFields,
		Encode: (*Seq2seq).ToWire, Decode: Seq2seqFromWire,
		pathFormat: seq2seqPathFormat,
	}
)

func checkSpan(s *Span) error {
	if s.StartOffset < 0 || s.StartOffset >= s.EndOffset {
		return errs.InvalidArgument("span offsets [%d, %d) are not a non-empty range", s.StartOffset, s.EndOffset)
	}
	return nil
}

// checkRelation 两端 Span 必须已有服务端 ID，且不能是同一个
func checkRelation(r *Relation) error {
	if r.FromID == 0 || r.ToID == 0 {
		return errs.InvalidArgument("relation endpoints must be persisted spans (from_id=%d, to_id=%d)", r.FromID, r.ToID)
	}
	if r.FromID == r.ToID {
		return errs.InvalidArgument("relation endpoints must be distinct spans (span %d)", r.FromID)
	}
	return nil
}

func checkSegmentation(s *Segmentation) error {
	if !s.Valid() {
		return errs.InvalidArgument("segmentation needs at least 3 points, got %d", len(s.Points))
	}
	return nil
}

// Codec 类型擦除的形态
type Codec struct {
	Kind     Kind
	Fragment string
	Fields   []Field
	Encode   func(Annotation) Record
	Decode   func(Record) (Annotation, error)
	Check    func(Annotation) error
}

// Field 按线上名查找字段
func (c Codec) Field(wire string) (Field, bool) {
	for _, f := range c.Fields {
		if f.Wire == wire {
			return f, true
		}
	}
	return Field{}, false
}

// Merge 将部分更新合并进已有记录
// 只允许修改 Mutable 字段；id、user、uuid 与未知字段一律拒绝。
func (c Codec) Merge(current Record, patch Patch) (Annotation, error) {
	if len(patch) == 0 {
		return nil, errs.InvalidArgument("empty patch")
	}
	merged := current.Clone()
	for k, v := range patch {
		f, ok := c.Field(k)
		if !ok {
			return nil, errs.InvalidArgument("%s has no field %q", c.Kind, k)
		}
		if !f.Mutable {
			return nil, errs.InvalidArgument("%s field %q is not editable", c.Kind, k)
		}
		merged[k] = v
	}
	return c.Decode(merged)
}

var codecs = []Codec{
	Categories.Codec(),
	Texts.Codec(),
	Spans.Codec(),
	Relations.Codec(),
	BoundingBoxes.Codec(),
	Segmentations.Codec(),
	Seq2seqs.Codec(),
}

// Codecs 返回全部形态
func Codecs() []Codec {
	return append([]Codec(nil), codecs...)
}

// CodecFor 按形态查找
func CodecFor(kind Kind) (Codec, bool) {
	for _, c := range codecs {
		if c.Kind == kind {
			return c, true
		}
	}
	return Codec{}, false
}

// CodecByFragment 按 Example 路径下的端点片段查找；Seq2seq 使用独立的基础路径，不在此列
func CodecByFragment(fragment string) (Codec, bool) {
	for _, c := range codecs {
		if c.Fragment == fragment && c.Kind != KindSeq2seq {
			return c, true
		}
	}
	return Codec{}, false
}

// Patch 部分更新（线上字段名）
type Patch Record

// LabelPatch 只修改标签
func LabelPatch(labelID int64) Patch { return Patch{"label": labelID} }

// TypePatch 只修改关系类型
func TypePatch(typeID int64) Patch { return Patch{"type": typeID} }

// TextPatch 只修改文本
func TextPatch(text string) Patch { return Patch{"text": text} }

// OffsetsPatch 修改片段偏移量
func OffsetsPatch(start, end int64) Patch {
	return Patch{"start_offset": start, "end_offset": end}
}

// RectPatch 修改矩形框
func RectPatch(x, y, width, height float64) Patch {
	return Patch{"x": x, "y": y, "width": width, "height": height}
}

// PointsPatch 修改多边形顶点
func PointsPatch(points []Point) Patch {
	flat := make([]float64, 0, 2*len(points))
	for _, p := range points {
		flat = append(flat, p.X, p.Y)
	}
	return Patch{"points": flat}
}

// With 合并另一个补丁，返回新补丁
func (p Patch) With(other Patch) Patch {
	out := make(Patch, len(p)+len(other))
	for k, v := range p {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
