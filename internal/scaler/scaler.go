// Package scaler 提供图像坐标在规范空间与显示/归一化空间之间的可逆线性映射
package scaler

import (
	"math"

	"github.com/ashwinyue/next-label/internal/annotation"
	"github.com/ashwinyue/next-label/internal/errs"
)

// Scaler 线性缩放器：Transform(v) = (v - offset) / scale，Inverse(v) = v*scale + offset
// 零值未拟合时为恒等映射。
type Scaler struct {
	offset float64
	scale  float64
}

// New 创建恒等缩放器
func New() *Scaler {
	return &Scaler{scale: 1}
}

// Fit 设置参数；scale 必须为非零有限数
func (s *Scaler) Fit(offset, scale float64) error {
	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return errs.InvalidArgument("scale must be a non-zero finite number, got %v", scale)
	}
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return errs.InvalidArgument("offset must be finite, got %v", offset)
	}
	s.offset, s.scale = offset, scale
	return nil
}

// FitRange 使 [lo, hi] 映射到 [0, 1]
func (s *Scaler) FitRange(lo, hi float64) error {
	return s.Fit(lo, hi-lo)
}

// Offset 当前偏移
func (s *Scaler) Offset() float64 { return s.offset }

// Scale 当前缩放系数，未拟合时为 1
func (s *Scaler) Scale() float64 {
	if s.scale == 0 {
		return 1
	}
	return s.scale
}

// Transform 规范空间 → 目标空间
func (s *Scaler) Transform(v float64) float64 {
	return (v - s.offset) / s.Scale()
}

// Inverse 目标空间 → 规范空间
func (s *Scaler) Inverse(v float64) float64 {
	return v*s.Scale() + s.offset
}

// TransformLength 长度只缩放不平移
func (s *Scaler) TransformLength(l float64) float64 {
	return l / s.Scale()
}

// InverseLength 长度的逆映射
func (s *Scaler) InverseLength(l float64) float64 {
	return l * s.Scale()
}

// Scaler2D 分别缩放 x、y 轴
type Scaler2D struct {
	X *Scaler
	Y *Scaler
}

// New2D 创建恒等二维缩放器
func New2D() *Scaler2D {
	return &Scaler2D{X: New(), Y: New()}
}

// FitImage 以图像原始尺寸归一化到 [0, 1]
func (s *Scaler2D) FitImage(width, height float64) error {
	if err := s.X.Fit(0, width); err != nil {
		return err
	}
	return s.Y.Fit(0, height)
}

// TransformBox 返回映射后的矩形框副本，身份字段保持不变
func (s *Scaler2D) TransformBox(b *annotation.BoundingBox) *annotation.BoundingBox {
	out := *b
	out.X = s.X.Transform(b.X)
	out.Y = s.Y.Transform(b.Y)
	out.Width = s.X.TransformLength(b.Width)
	out.Height = s.Y.TransformLength(b.Height)
	return &out
}

// InverseBox TransformBox 的逆
func (s *Scaler2D) InverseBox(b *annotation.BoundingBox) *annotation.BoundingBox {
	out := *b
	out.X = s.X.Inverse(b.X)
	out.Y = s.Y.Inverse(b.Y)
	out.Width = s.X.InverseLength(b.Width)
	out.Height = s.Y.InverseLength(b.Height)
	return &out
}

// TransformPoints 映射多边形顶点
func (s *Scaler2D) TransformPoints(points []annotation.Point) []annotation.Point {
	out := make([]annotation.Point, len(points))
	for i, p := range points {
		out[i] = annotation.Point{X: s.X.Transform(p.X), Y: s.Y.Transform(p.Y)}
	}
	return out
}

// InversePoints TransformPoints 的逆
func (s *Scaler2D) InversePoints(points []annotation.Point) []annotation.Point {
	out := make([]annotation.Point, len(points))
	for i, p := range points {
		out[i] = annotation.Point{X: s.X.Inverse(p.X), Y: s.Y.Inverse(p.Y)}
	}
	return out
}
