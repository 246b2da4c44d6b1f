package model

import (
	"time"

	"gorm.io/datatypes"
)

// AnnotationRecord 各形态标注共用的存储行
// Payload 保存线上编码（不含 id 与 user）；LabelID 对 Relation 为关系类型，
// SourceID/TargetID 仅 Relation 使用，便于删除 Span 时级联。
type AnnotationRecord struct {
	ID        int64          `gorm:"primaryKey"`
	ProjectID int64          `gorm:"index;not null"`
	ExampleID int64          `gorm:"index:idx_annotation_example_kind;not null"`
	Kind      string         `gorm:"size:20;index:idx_annotation_example_kind;not null"`
	UserID    int64          `gorm:"index;not null"`
	LabelID   int64          `gorm:"index"`
	SourceID  int64          `gorm:"index"`
	TargetID  int64          `gorm:"index"`
	Payload   datatypes.JSON `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (AnnotationRecord) TableName() string {
	return "annotations"
}
