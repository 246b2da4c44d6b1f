package handler

import (
	"github.com/gin-gonic/gin"

	projectsvc "github.com/ashwinyue/next-label/internal/service/project"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	svc *projectsvc.Service
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(svc *projectsvc.Service) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// CreateProject 创建项目
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req projectsvc.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.svc.CreateProject(c.Request.Context(), getUserID(c), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	created(c, p)
}

// ListProjects 列出会话用户参与的项目
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context(), getUserID(c))
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, projects)
}

// GetProject 获取项目
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	p, err := h.svc.GetProject(c.Request.Context(), id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, p)
}

// UpdateProject 更新项目
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	id, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	var req projectsvc.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	p, err := h.svc.UpdateProject(c.Request.Context(), id, &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, p)
}

// DeleteProject 删除项目
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProject(c.Request.Context(), id); err != nil {
		errorResponse(c, err)
		return
	}
	noContent(c)
}
