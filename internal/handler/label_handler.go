package handler

import (
	"github.com/gin-gonic/gin"

	labelsvc "github.com/ashwinyue/next-label/internal/service/label"
)

// LabelHandler 标签处理器
type LabelHandler struct {
	svc *labelsvc.Service
}

// NewLabelHandler 创建标签处理器
func NewLabelHandler(svc *labelsvc.Service) *LabelHandler {
	return &LabelHandler{svc: svc}
}

// CreateLabel 创建标签
func (h *LabelHandler) CreateLabel(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	var req labelsvc.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	label, err := h.svc.CreateLabel(c.Request.Context(), projectID, &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	created(c, label)
}

// ListLabels 列出标签，可按 ?type= 过滤
func (h *LabelHandler) ListLabels(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	labels, err := h.svc.ListLabels(c.Request.Context(), projectID, c.Query("type"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, labels)
}

// GetLabel 获取标签
func (h *LabelHandler) GetLabel(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	id, ok := paramID(c, "label_id")
	if !ok {
		return
	}
	label, err := h.svc.GetLabel(c.Request.Context(), projectID, id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, label)
}

// UpdateLabel 更新标签
func (h *LabelHandler) UpdateLabel(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	id, ok := paramID(c, "label_id")
	if !ok {
		return
	}
	var req labelsvc.UpdateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	label, err := h.svc.UpdateLabel(c.Request.Context(), projectID, id, &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, label)
}

// DeleteLabel 删除标签
func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	id, ok := paramID(c, "label_id")
	if !ok {
		return
	}
	if err := h.svc.DeleteLabel(c.Request.Context(), projectID, id); err != nil {
		errorResponse(c, err)
		return
	}
	noContent(c)
}
