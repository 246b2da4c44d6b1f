package handler

import (
	"github.com/gin-gonic/gin"

	examplesvc "github.com/ashwinyue/next-label/internal/service/example"
)

// ExampleHandler Example 处理器
type ExampleHandler struct {
	svc *examplesvc.Service
}

// NewExampleHandler 创建 Example 处理器
func NewExampleHandler(svc *examplesvc.Service) *ExampleHandler {
	return &ExampleHandler{svc: svc}
}

// CreateExample 创建 Example
func (h *ExampleHandler) CreateExample(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	var req examplesvc.CreateExampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	e, err := h.svc.CreateExample(c.Request.Context(), projectID, &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	created(c, e)
}

// ListExamples 分页列出 Example，支持 ?q=&confirmed=&page=&page_size=
func (h *ExampleHandler) ListExamples(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	var req examplesvc.ListExamplesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.ListExamples(c.Request.Context(), projectID, getUserID(c), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, resp)
}

// GetExample 获取 Example
func (h *ExampleHandler) GetExample(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	id, ok := paramID(c, "example_id")
	if !ok {
		return
	}
	e, err := h.svc.GetExample(c.Request.Context(), projectID, id, getUserID(c))
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, e)
}

// DeleteExample 删除 Example
func (h *ExampleHandler) DeleteExample(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	id, ok := paramID(c, "example_id")
	if !ok {
		return
	}
	if err := h.svc.DeleteExample(c.Request.Context(), projectID, id); err != nil {
		errorResponse(c, err)
		return
	}
	noContent(c)
}

// Confirm 会话用户确认 Example
func (h *ExampleHandler) Confirm(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	id, ok := paramID(c, "example_id")
	if !ok {
		return
	}
	if err := h.svc.Confirm(c.Request.Context(), projectID, id, getUserID(c)); err != nil {
		errorResponse(c, err)
		return
	}
	noContent(c)
}

// Unconfirm 撤销确认
func (h *ExampleHandler) Unconfirm(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	id, ok := paramID(c, "example_id")
	if !ok {
		return
	}
	if err := h.svc.Unconfirm(c.Request.Context(), projectID, id, getUserID(c)); err != nil {
		errorResponse(c, err)
		return
	}
	noContent(c)
}
