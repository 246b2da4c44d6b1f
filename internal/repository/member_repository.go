package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ashwinyue/next-label/internal/model"
)

// MemberRepository 成员仓库
type MemberRepository struct {
	db *gorm.DB
}

// NewMemberRepository 创建成员仓库
func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) withUsername(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Member{}).
		Select("members.*, users.username AS username").
		Joins("LEFT JOIN users ON users.id = members.user_id")
}

// Create 添加成员
func (r *MemberRepository) Create(ctx context.Context, member *model.Member) error {
	return translate(r.db.WithContext(ctx).Create(member).Error, "member %d", member.UserID)
}

// Update 更新成员角色
func (r *MemberRepository) Update(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Model(member).Update("role", member.Role).Error
}

// GetByID 获取项目内的成员
func (r *MemberRepository) GetByID(ctx context.Context, projectID, id int64) (*model.Member, error) {
	var member model.Member
	err := r.withUsername(ctx).Where("members.project_id = ? AND members.id = ?", projectID, id).First(&member).Error
	if err != nil {
		return nil, translate(err, "member %d", id)
	}
	return &member, nil
}

// GetByUser 获取用户在项目中的成员身份
func (r *MemberRepository) GetByUser(ctx context.Context, projectID, userID int64) (*model.Member, error) {
	var member model.Member
	err := r.withUsername(ctx).Where("members.project_id = ? AND members.user_id = ?", projectID, userID).First(&member).Error
	if err != nil {
		return nil, translate(err, "member for user %d", userID)
	}
	return &member, nil
}

// List 列出项目成员
func (r *MemberRepository) List(ctx context.Context, projectID int64) ([]*model.Member, error) {
	var members []*model.Member
	err := r.withUsername(ctx).Where("members.project_id = ?", projectID).Order("members.id ASC").Find(&members).Error
	return members, err
}

// Delete 删除成员
func (r *MemberRepository) Delete(ctx context.Context, projectID, id int64) error {
	res := r.db.WithContext(ctx).Where("project_id = ? AND id = ?", projectID, id).Delete(&model.Member{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "member %d", id)
	}
	return nil
}
