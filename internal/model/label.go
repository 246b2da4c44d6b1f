package model

import "time"

// 标签类型
const (
	LabelTypeCategory = "category"
	LabelTypeSpan     = "span"
	LabelTypeRelation = "relation"
)

// Label 标签；PrefixKey 与 SuffixKey 组成快捷键，可分别为空
type Label struct {
	ID              int64     `gorm:"primaryKey" json:"id"`
	ProjectID       int64     `gorm:"index:idx_label_project_type;not null" json:"project_id"`
	Type            string    `gorm:"size:20;index:idx_label_project_type;not null" json:"type"`
	Text            string    `gorm:"size:100;not null" json:"text"`
	PrefixKey       *string   `gorm:"size:10" json:"prefix_key"`
	SuffixKey       *string   `gorm:"size:1" json:"suffix_key"`
	BackgroundColor string    `gorm:"size:7" json:"background_color"`
	TextColor       string    `gorm:"size:7" json:"text_color"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Label) TableName() string {
	return "labels"
}
