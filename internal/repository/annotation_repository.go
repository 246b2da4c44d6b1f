package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashwinyue/next-label/internal/model"
)

// AnnotationRepository 标注存储，所有形态共用一张表
type AnnotationRepository struct {
	db *gorm.DB
}

// NewAnnotationRepository 创建标注仓库
func NewAnnotationRepository(db *gorm.DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

// Scope 定位 Example 下某一形态的集合；UserID 为 0 表示不按用户过滤
type Scope struct {
	ExampleID int64
	Kind      string
	UserID    int64
}

func (r *AnnotationRepository) scoped(ctx context.Context, s Scope) *gorm.DB {
	query := r.db.WithContext(ctx).Where("example_id = ? AND kind = ?", s.ExampleID, s.Kind)
	if s.UserID != 0 {
		query = query.Where("user_id = ?", s.UserID)
	}
	return query
}

// Create 创建标注
func (r *AnnotationRepository) Create(ctx context.Context, rec *model.AnnotationRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// Replace 在一个事务中删除 Scope 内已有标注并创建新标注，用于单标签模式
func (r *AnnotationRepository) Replace(ctx context.Context, s Scope, rec *model.AnnotationRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := &AnnotationRepository{db: tx}
		if _, err := repo.DeleteScope(ctx, s); err != nil {
			return err
		}
		return tx.Create(rec).Error
	})
}

// Save 保存标注
func (r *AnnotationRepository) Save(ctx context.Context, rec *model.AnnotationRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// Get 获取集合中的单条标注
func (r *AnnotationRepository) Get(ctx context.Context, s Scope, id int64) (*model.AnnotationRecord, error) {
	var rec model.AnnotationRecord
	if err := r.scoped(ctx, s).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err, "%s %d", s.Kind, id)
	}
	return &rec, nil
}

// List 列出集合中的标注
func (r *AnnotationRepository) List(ctx context.Context, s Scope) ([]*model.AnnotationRecord, error) {
	var recs []*model.AnnotationRecord
	err := r.scoped(ctx, s).Order("id ASC").Find(&recs).Error
	return recs, err
}

// ListByIDs 列出集合中指定 ID 的标注
func (r *AnnotationRepository) ListByIDs(ctx context.Context, s Scope, ids []int64) ([]*model.AnnotationRecord, error) {
	var recs []*model.AnnotationRecord
	if len(ids) == 0 {
		return recs, nil
	}
	err := r.scoped(ctx, s).Where("id IN ?", ids).Order("id ASC").Find(&recs).Error
	return recs, err
}

// Delete 删除集合中的指定标注，返回删除行数
func (r *AnnotationRepository) Delete(ctx context.Context, s Scope, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.scoped(ctx, s).Where("id IN ?", ids).Delete(&model.AnnotationRecord{})
	return res.RowsAffected, res.Error
}

// DeleteScope 删除集合中的全部标注
func (r *AnnotationRepository) DeleteScope(ctx context.Context, s Scope) (int64, error) {
	res := r.scoped(ctx, s).Delete(&model.AnnotationRecord{})
	return res.RowsAffected, res.Error
}

// DeleteRelationsTouching 删除以给定 Span 为端点的关系
func (r *AnnotationRepository) DeleteRelationsTouching(ctx context.Context, exampleID int64, kind string, spanIDs []int64) (int64, error) {
	if len(spanIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("example_id = ? AND kind = ?", exampleID, kind).
		Where("source_id IN ? OR target_id IN ?", spanIDs, spanIDs).
		Delete(&model.AnnotationRecord{})
	return res.RowsAffected, res.Error
}

// ListByLabel 列出引用指定标签的标注，按 ID 升序
func (r *AnnotationRepository) ListByLabel(ctx context.Context, projectID int64, kinds []string, labelID int64) ([]*model.AnnotationRecord, error) {
	var recs []*model.AnnotationRecord
	err := r.db.WithContext(ctx).
		Where("project_id = ? AND kind IN ? AND label_id = ?", projectID, kinds, labelID).
		Order("id").
		Find(&recs).Error
	return recs, err
}

// DeleteByLabel 删除引用指定标签的标注
func (r *AnnotationRepository) DeleteByLabel(ctx context.Context, projectID int64, kinds []string, labelID int64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("project_id = ? AND kind IN ? AND label_id = ?", projectID, kinds, labelID).
		Delete(&model.AnnotationRecord{})
	return res.RowsAffected, res.Error
}

// Tally 统计用的精简行，不读取 Payload
type Tally struct {
	ExampleID int64
	Kind      string
	UserID    int64
	LabelID   int64
}

// ListTallies 列出项目内指定形态的标注
func (r *AnnotationRepository) ListTallies(ctx context.Context, projectID int64, kinds []string) ([]Tally, error) {
	var rows []Tally
	query := r.db.WithContext(ctx).Model(&model.AnnotationRecord{}).
		Select("example_id, kind, user_id, label_id").
		Where("project_id = ?", projectID)
	if len(kinds) > 0 {
		query = query.Where("kind IN ?", kinds)
	}
	err := query.Order("id ASC").Scan(&rows).Error
	return rows, err
}
