package handler

import (
	"github.com/ashwinyue/next-label/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth       *AuthHandler
	Project    *ProjectHandler
	Label      *LabelHandler
	Member     *MemberHandler
	Example    *ExampleHandler
	Annotation *AnnotationHandler
	Metrics    *MetricsHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth, svc.Users),
		Project:    NewProjectHandler(svc.Project),
		Label:      NewLabelHandler(svc.Label),
		Member:     NewMemberHandler(svc.Member),
		Example:    NewExampleHandler(svc.Example),
		Annotation: NewAnnotationHandler(svc.Annotation),
		Metrics:    NewMetricsHandler(svc.Metrics),
	}
}
