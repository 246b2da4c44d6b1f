package model

import "time"

// 项目类型
const (
	ProjectDocumentClassification = "DocumentClassification"
	ProjectSequenceLabeling       = "SequenceLabeling"
	ProjectSeq2seq                = "Seq2seq"
	ProjectIntentDetectionAndSlot = "IntentDetectionAndSlotFilling"
	ProjectImageClassification    = "ImageClassification"
	ProjectBoundingBox            = "BoundingBox"
	ProjectSegmentation           = "Segmentation"
	ProjectImageCaptioning        = "ImageCaptioning"
	ProjectSpeech2text            = "Speech2text"
)

// ProjectTypes 合法的项目类型
var ProjectTypes = []string{
	ProjectDocumentClassification,
	ProjectSequenceLabeling,
	ProjectSeq2seq,
	ProjectIntentDetectionAndSlot,
	ProjectImageClassification,
	ProjectBoundingBox,
	ProjectSegmentation,
	ProjectImageCaptioning,
	ProjectSpeech2text,
}

// Project 标注项目
// SingleLabel 为真时新建分类会替换该用户在同一 Example 上已有的分类；
// SharedAnnotation 为真时所有成员可见彼此的标注，完成状态仍按用户分别记录。
type Project struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:200;not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	ProjectType      string    `gorm:"size:50;not null" json:"project_type"`
	SingleLabel      bool      `gorm:"default:false" json:"single_label"`
	SharedAnnotation bool      `gorm:"default:false" json:"shared_annotation"`
	AllowOverlapping bool      `gorm:"default:false" json:"allow_overlapping"`
	UseRelation      bool      `gorm:"default:false" json:"use_relation"`
	CreatedBy        int64     `gorm:"index" json:"created_by"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}
