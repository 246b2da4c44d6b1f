package model

import (
	"time"

	"gorm.io/datatypes"
)

// Example 标注单元（文档、图片或音频）
type Example struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	ProjectID int64          `gorm:"index;not null" json:"project_id"`
	Text      string         `gorm:"type:text" json:"text"`
	Filename  string         `gorm:"size:500" json:"filename"`
	Meta      datatypes.JSON `json:"meta"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Example) TableName() string {
	return "examples"
}

// ExampleState 用户对 Example 的确认状态，每个 (example, user) 至多一条
type ExampleState struct {
	ID          int64     `gorm:"primaryKey" json:"id"`
	ProjectID   int64     `gorm:"index;not null" json:"project_id"`
	ExampleID   int64     `gorm:"uniqueIndex:idx_state_example_user;not null" json:"example"`
	ConfirmedBy int64     `gorm:"uniqueIndex:idx_state_example_user;not null" json:"confirmed_by"`
	ConfirmedAt time.Time `gorm:"autoCreateTime" json:"confirmed_at"`
}

// TableName 指定表名
func (ExampleState) TableName() string {
	return "example_states"
}
