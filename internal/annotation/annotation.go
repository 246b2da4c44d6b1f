// Package annotation 提供多任务标注的数据模型、线上编解码与通用 CRUD 仓库
//
// 七种任务形态（Category、TextLabel、Span、Relation、BoundingBox、Segmentation、Seq2seq）
// 共享 Base 中的身份与生命周期规则。标注值不是并发安全的：
// 同一个 Example 的标注集合由调用方保证单写者。
package annotation

import (
	"fmt"

	"github.com/ashwinyue/next-label/internal/errs"
)

// Kind 任务形态
type Kind string

const (
	KindCategory     Kind = "category"     // 分类
	KindText         Kind = "text"         // 自由文本标签
	KindSpan         Kind = "span"         // 文本片段
	KindRelation     Kind = "relation"     // 片段之间的有向关系
	KindBoundingBox  Kind = "bbox"         // 矩形框
	KindSegmentation Kind = "segmentation" // 多边形分割
	KindSeq2seq      Kind = "seq2seq"      // 序列到序列目标文本
)

// ErrPendingWrite 写请求尚未确认时修改标注内容
var ErrPendingWrite = fmt.Errorf("%w: annotation has a pending write", errs.ErrInvalidArgument)

// Annotation 所有任务形态的公共接口
type Annotation interface {
	Kind() Kind
	Meta() *Base
}

// Base 标识与生命周期
// ID 为 0 表示尚未持久化；服务端在创建时分配 ID，此后不可变。
// Owner 来自当前会话，创建后不可由用户修改。
type Base struct {
	ID    int64
	Label int64
	Owner int64

	pending bool
	dirty   bool
}

// Meta 返回自身，供嵌入类型满足 Annotation 接口
func (b *Base) Meta() *Base { return b }

// IsNew 是否尚未持久化
func (b *Base) IsNew() bool { return b.ID == 0 }

// Pending 是否有未确认的写请求
func (b *Base) Pending() bool { return b.pending }

// Dirty 内容自上次同步后是否被修改
func (b *Base) Dirty() bool { return b.dirty }

// BeginWrite 标记写请求开始，同一标注不允许重叠写
func (b *Base) BeginWrite() error {
	if b.pending {
		return ErrPendingWrite
	}
	b.pending = true
	return nil
}

// EndWrite 标记写请求结束；成功时清除 dirty
func (b *Base) EndWrite(ok bool) {
	b.pending = false
	if ok {
		b.dirty = false
	}
}

// ChangeLabel 修改标签
func (b *Base) ChangeLabel(labelID int64) error {
	if err := b.mutate(); err != nil {
		return err
	}
	b.Label = labelID
	return nil
}

func (b *Base) mutate() error {
	if b.pending {
		return ErrPendingWrite
	}
	b.dirty = true
	return nil
}

// Point 多边形顶点
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Category 分类标注
type Category struct {
	Base
}

// Kind 返回任务形态
func (*Category) Kind() Kind { return KindCategory }

// TextLabel 自由文本标签
type TextLabel struct {
	Base
	Text string
}

// Kind 返回任务形态
func (*TextLabel) Kind() Kind { return KindText }

// UpdateText 修改文本
func (t *TextLabel) UpdateText(text string) error {
	if err := t.mutate(); err != nil {
		return err
	}
	t.Text = text
	return nil
}

// Span 文本片段，偏移量为 Example 文本的码点下标，半开区间 [StartOffset, EndOffset)
type Span struct {
	Base
	StartOffset int64
	EndOffset   int64
}

// Kind 返回任务形态
func (*Span) Kind() Kind { return KindSpan }

// Len 片段长度（码点）
func (s *Span) Len() int64 { return s.EndOffset - s.StartOffset }

// SetOffsets 修改偏移量
func (s *Span) SetOffsets(start, end int64) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.StartOffset, s.EndOffset = start, end
	return nil
}

// Relation 两个 Span 之间的有向边，Type 为关系标签 ID
type Relation struct {
	Base
	FromID int64
	ToID   int64
	Type   int64
}

// Kind 返回任务形态
func (*Relation) Kind() Kind { return KindRelation }

// ChangeType 修改关系类型
func (r *Relation) ChangeType(typeID int64) error {
	if err := r.mutate(); err != nil {
		return err
	}
	r.Type = typeID
	return nil
}

// BoundingBox 矩形框；UUID 在多次同步之间标识同一个框
type BoundingBox struct {
	Base
	UUID   string
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Kind 返回任务形态
func (*BoundingBox) Kind() Kind { return KindBoundingBox }

// SetRect 修改位置与尺寸
func (b *BoundingBox) SetRect(x, y, width, height float64) error {
	if err := b.mutate(); err != nil {
		return err
	}
	b.X, b.Y, b.Width, b.Height = x, y, width, height
	return nil
}

// Segmentation 多边形分割，至少 3 个顶点才有效
type Segmentation struct {
	Base
	UUID   string
	Points []Point
}

// Kind 返回任务形态
func (*Segmentation) Kind() Kind { return KindSegmentation }

// SetPoints 修改顶点
func (s *Segmentation) SetPoints(points []Point) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.Points = append([]Point(nil), points...)
	return nil
}

// Valid 顶点数是否足以构成多边形
func (s *Segmentation) Valid() bool { return len(s.Points) >= 3 }

// Seq2seq 生成或编辑的目标文本
type Seq2seq struct {
	Base
	Text string
}

// Kind 返回任务形态
func (*Seq2seq) Kind() Kind { return KindSeq2seq }

// UpdateText 修改文本
func (s *Seq2seq) UpdateText(text string) error {
	if err := s.mutate(); err != nil {
		return err
	}
	s.Text = text
	return nil
}
