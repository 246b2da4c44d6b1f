package model

import "time"

// 成员角色
const (
	RoleProjectAdmin       = "project_admin"
	RoleAnnotator          = "annotator"
	RoleAnnotationApprover = "annotation_approver"
)

// Roles 合法的成员角色
var Roles = []string{RoleProjectAdmin, RoleAnnotator, RoleAnnotationApprover}

// IsValidRole 判断角色是否合法
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Member 项目成员，每个 (project, user) 至多一条
type Member struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ProjectID int64     `gorm:"uniqueIndex:idx_member_project_user;not null" json:"project_id"`
	UserID    int64     `gorm:"uniqueIndex:idx_member_project_user;not null" json:"user"`
	Role      string    `gorm:"size:30;not null" json:"rolename"`
	Username  string    `gorm:"->;-:migration" json:"username"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Member) TableName() string {
	return "members"
}
