// Package testutil 提供测试辅助工具
package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ashwinyue/next-label/internal/config"
	"github.com/ashwinyue/next-label/internal/database"
	"github.com/ashwinyue/next-label/internal/logger"
	"github.com/ashwinyue/next-label/internal/model"
)

// NewTestDB 创建已迁移的 sqlite 内存库
// 内存库按连接隔离，所以连接池限制为 1。
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(sqlite.Open(":memory:"), &config.DatabaseConfig{MaxOpenConns: 1}, logger.Discard())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

// Fixtures 直接写库的测试数据构造器
type Fixtures struct {
	t  *testing.T
	db *gorm.DB
}

// NewFixtures 创建构造器
func NewFixtures(t *testing.T, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) create(v any) {
	f.t.Helper()
	if err := f.db.Create(v).Error; err != nil {
		f.t.Fatalf("failed to create %T: %v", v, err)
	}
}

// User 创建用户
func (f *Fixtures) User(username string) *model.User {
	f.t.Helper()
	u := &model.User{Username: username, PasswordHash: "-", IsActive: true}
	f.create(u)
	return u
}

// Project 创建项目，owner 作为 project_admin 加入
func (f *Fixtures) Project(owner *model.User, projectType string, opts ...func(*model.Project)) *model.Project {
	f.t.Helper()
	p := &model.Project{Name: "project", ProjectType: projectType, CreatedBy: owner.ID}
	for _, opt := range opts {
		opt(p)
	}
	f.create(p)
	f.Member(p, owner, model.RoleProjectAdmin)
	return p
}

// Member 把用户加入项目
func (f *Fixtures) Member(p *model.Project, u *model.User, role string) *model.Member {
	f.t.Helper()
	m := &model.Member{ProjectID: p.ID, UserID: u.ID, Role: role}
	f.create(m)
	m.Username = u.Username
	return m
}

// Label 创建标签
func (f *Fixtures) Label(p *model.Project, labelType, text string) *model.Label {
	f.t.Helper()
	l := &model.Label{ProjectID: p.ID, Type: labelType, Text: text}
	f.create(l)
	return l
}

// Example 创建 Example
func (f *Fixtures) Example(p *model.Project, text string) *model.Example {
	f.t.Helper()
	e := &model.Example{ProjectID: p.ID, Text: text}
	f.create(e)
	return e
}

// Confirm 记录确认状态
func (f *Fixtures) Confirm(e *model.Example, u *model.User) {
	f.t.Helper()
	f.create(&model.ExampleState{ProjectID: e.ProjectID, ExampleID: e.ID, ConfirmedBy: u.ID})
}
