package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ashwinyue/next-label/internal/errs"
)

// Repositories 仓库集合，用于统一管理所有仓库
type Repositories struct {
	DB         *gorm.DB // 直接访问数据库
	User       *UserRepository
	Project    *ProjectRepository
	Label      *LabelRepository
	Example    *ExampleRepository
	Member     *MemberRepository
	Annotation *AnnotationRepository
}

// NewRepositories 创建所有仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:         db,
		User:       NewUserRepository(db),
		Project:    NewProjectRepository(db),
		Label:      NewLabelRepository(db),
		Example:    NewExampleRepository(db),
		Member:     NewMemberRepository(db),
		Annotation: NewAnnotationRepository(db),
	}
}

// translate 把 GORM 错误映射为领域错误
func translate(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.NotFound(format, args...)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.Conflict(format+" already exists", args...)
	default:
		return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
	}
}
