package annotation

import (
	"github.com/google/uuid"

	"github.com/ashwinyue/next-label/internal/errs"
)

// Field 线上字段与模型字段的映射
type Field struct {
	Wire     string // snake_case 线上名
	Name     string // 模型字段名
	Required bool   // 解码时必须存在
	Mutable  bool   // 允许部分更新
}

var (
	idField    = Field{Wire: "id", Name: "ID"}
	ownerField = Field{Wire: "user", Name: "Owner"}
	labelField = Field{Wire: "label", Name: "Label", Required: true, Mutable: true}
	// TextLabel、Relation、Seq2seq 的 label 可选，缺省为 0
	optionalLabelField = Field{Wire: "label", Name: "Label", Mutable: true}
	uuidField          = Field{Wire: "uuid", Name: "UUID"}
)

// 各形态的映射表即线上契约
var (
	categoryFields = []Field{idField, ownerField, labelField}
	textFields     = []Field{idField, ownerField, optionalLabelField,
		{Wire: "text", Name: "Text", Required: true, Mutable: true}}
	spanFields = []Field{idField, ownerField, labelField,
		{Wire: "start_offset", Name: "StartOffset", Required: true, Mutable: true},
		{Wire: "end_offset", Name: "EndOffset", Required: true, Mutable: true}}
	relationFields = []Field{idField, ownerField, optionalLabelField,
		{Wire: "from_id", Name: "FromID", Required: true, Mutable: true},
		{Wire: "to_id", Name: "ToID", Required: true, Mutable: true},
		{Wire: "type", Name: "Type", Required: true, Mutable: true}}
	boundingBoxFields = []Field{idField, ownerField, labelField, uuidField,
		{Wire: "x", Name: "X", Required: true, Mutable: true},
		{Wire: "y", Name: "Y", Required: true, Mutable: true},
		{Wire: "width", Name: "Width", Required: true, Mutable: true},
		{Wire: "height", Name: "Height", Required: true, Mutable: true}}
	segmentationFields = []Field{idField, ownerField, labelField, uuidField,
		{Wire: "points", Name: "Points", Required: true, Mutable: true}}
	seq2seqFields = []Field{idField, ownerField, optionalLabelField,
		{Wire: "text", Name: "Text", Required: true, Mutable: true}}
)

func baseWire(b *Base, labelRequired bool) Record {
	rec := Record{"id": b.ID, "user": b.Owner}
	if labelRequired || b.Label != 0 {
		rec["label"] = b.Label
	}
	return rec
}

func decodeBase(fr fieldReader, labelRequired bool) (Base, error) {
	var b Base
	var err error
	if b.ID, err = fr.int64("id", false); err != nil {
		return b, err
	}
	if b.Owner, err = fr.int64("user", false); err != nil {
		return b, err
	}
	if b.Label, err = fr.int64("label", labelRequired); err != nil {
		return b, err
	}
	return b, nil
}

// decodeUUID 字段缺失时在客户端生成，保证绘制中的图形在首次保存前有稳定身份；显式的空串原样保留
func decodeUUID(fr fieldReader) (string, error) {
	if _, ok, err := fr.lookup("uuid", false); err != nil {
		return "", err
	} else if !ok {
		return uuid.New().String(), nil
	}
	return fr.string("uuid", false)
}

// ToWire 编码为线上记录
func (c *Category) ToWire() Record {
	return baseWire(&c.Base, true)
}

// CategoryFromWire 从线上记录解码
func CategoryFromWire(rec Record) (*Category, error) {
	fr := fieldReader{shape: string(KindCategory), rec: rec}
	b, err := decodeBase(fr, true)
	if err != nil {
		return nil, err
	}
	return &Category{Base: b}, nil
}

// ToWire 编码为线上记录
func (t *TextLabel) ToWire() Record {
	rec := baseWire(&t.Base, false)
	rec["text"] = t.Text
	return rec
}

// TextLabelFromWire 从线上记录解码
func TextLabelFromWire(rec Record) (*TextLabel, error) {
	fr := fieldReader{shape: string(KindText), rec: rec}
	b, err := decodeBase(fr, false)
	if err != nil {
		return nil, err
	}
	text, err := fr.string("text", true)
	if err != nil {
		return nil, err
	}
	return &TextLabel{Base: b, Text: text}, nil
}

// ToWire 编码为线上记录
func (s *Span) ToWire() Record {
	rec := baseWire(&s.Base, true)
	rec["start_offset"] = s.StartOffset
	rec["end_offset"] = s.EndOffset
	return rec
}

// SpanFromWire 从线上记录解码
func SpanFromWire(rec Record) (*Span, error) {
	fr := fieldReader{shape: string(KindSpan), rec: rec}
	b, err := decodeBase(fr, true)
	if err != nil {
		return nil, err
	}
	start, err := fr.int64("start_offset", true)
	if err != nil {
		return nil, err
	}
	end, err := fr.int64("end_offset", true)
	if err != nil {
		return nil, err
	}
	return &Span{Base: b, StartOffset: start, EndOffset: end}, nil
}

// ToWire 编码为线上记录
func (r *Relation) ToWire() Record {
	rec := baseWire(&r.Base, false)
	rec["from_id"] = r.FromID
	rec["to_id"] = r.ToID
	rec["type"] = r.Type
	return rec
}

// RelationFromWire 从线上记录解码
func RelationFromWire(rec Record) (*Relation, error) {
	fr := fieldReader{shape: string(KindRelation), rec: rec}
	b, err := decodeBase(fr, false)
	if err != nil {
		return nil, err
	}
	r := &Relation{Base: b}
	if r.FromID, err = fr.int64("from_id", true); err != nil {
		return nil, err
	}
	if r.ToID, err = fr.int64("to_id", true); err != nil {
		return nil, err
	}
	if r.Type, err = fr.int64("type", true); err != nil {
		return nil, err
	}
	return r, nil
}

// ToWire 编码为线上记录，uuid 总是输出，空串也不例外
func (b *BoundingBox) ToWire() Record {
	rec := baseWire(&b.Base, true)
	rec["uuid"] = b.UUID
	rec["x"] = b.X
	rec["y"] = b.Y
	rec["width"] = b.Width
	rec["height"] = b.Height
	return rec
}

// BoundingBoxFromWire 从线上记录解码
func BoundingBoxFromWire(rec Record) (*BoundingBox, error) {
	fr := fieldReader{shape: string(KindBoundingBox), rec: rec}
	base, err := decodeBase(fr, true)
	if err != nil {
		return nil, err
	}
	b := &BoundingBox{Base: base}
	if b.UUID, err = decodeUUID(fr); err != nil {
		return nil, err
	}
	if b.X, err = fr.float64("x", true); err != nil {
		return nil, err
	}
	if b.Y, err = fr.float64("y", true); err != nil {
		return nil, err
	}
	if b.Width, err = fr.float64("width", true); err != nil {
		return nil, err
	}
	if b.Height, err = fr.float64("height", true); err != nil {
		return nil, err
	}
	return b, nil
}

// ToWire 编码为线上记录，顶点展开为 [x1, y1, x2, y2, ...]
func (s *Segmentation) ToWire() Record {
	rec := baseWire(&s.Base, true)
	rec["uuid"] = s.UUID
	flat := make([]float64, 0, 2*len(s.Points))
	for _, p := range s.Points {
		flat = append(flat, p.X, p.Y)
	}
	rec["points"] = flat
	return rec
}

// SegmentationFromWire 从线上记录解码
func SegmentationFromWire(rec Record) (*Segmentation, error) {
	fr := fieldReader{shape: string(KindSegmentation), rec: rec}
	base, err := decodeBase(fr, true)
	if err != nil {
		return nil, err
	}
	s := &Segmentation{Base: base}
	if s.UUID, err = decodeUUID(fr); err != nil {
		return nil, err
	}
	flat, err := fr.floats("points", true)
	if err != nil {
		return nil, err
	}
	if len(flat)%2 != 0 {
		return nil, errs.Decode(string(KindSegmentation), "points", "must hold x,y pairs")
	}
	s.Points = make([]Point, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		s.Points = append(s.Points, Point{X: flat[i], Y: flat[i+1]})
	}
	return s, nil
}

// ToWire 编码为线上记录
func (s *Seq2seq) ToWire() Record {
	rec := baseWire(&s.Base, false)
	rec["text"] = s.Text
	return rec
}

// Seq2seqFromWire 从线上记录解码
func Seq2seqFromWire(rec Record) (*Seq2seq, error) {
	fr := fieldReader{shape: string(KindSeq2seq), rec: rec}
	b, err := decodeBase(fr, false)
	if err != nil {
		return nil, err
	}
	text, err := fr.string("text", true)
	if err != nil {
		return nil, err
	}
	return &Seq2seq{Base: b, Text: text}, nil
}

// NewBoundingBox 创建未持久化的矩形框并分配 UUID
func NewBoundingBox(label int64, x, y, width, height float64) *BoundingBox {
	return &BoundingBox{
		Base:   Base{Label: label},
		UUID:   uuid.New().String(),
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// NewSegmentation 创建未持久化的多边形并分配 UUID
func NewSegmentation(label int64, points []Point) *Segmentation {
	return &Segmentation{
		Base:   Base{Label: label},
		UUID:   uuid.New().String(),
		Points: append(make([]Point, 0, len(points)), points...),
	}
}
