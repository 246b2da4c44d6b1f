package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	core "github.com/ashwinyue/next-label/internal/annotation"
	"github.com/ashwinyue/next-label/internal/errs"
	annsvc "github.com/ashwinyue/next-label/internal/service/annotation"
)

// AnnotationHandler 七种形态共用的标注处理器，按 Codec 分派
type AnnotationHandler struct {
	svc *annsvc.Service
}

// NewAnnotationHandler 创建标注处理器
func NewAnnotationHandler(svc *annsvc.Service) *AnnotationHandler {
	return &AnnotationHandler{svc: svc}
}

// BulkDeleteRequest 批量删除请求；ids 缺省时清空集合
type BulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

func (h *AnnotationHandler) target(c *gin.Context, codec core.Codec) (annsvc.Target, bool) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return annsvc.Target{}, false
	}
	exampleID, ok := paramID(c, "example_id")
	if !ok {
		return annsvc.Target{}, false
	}
	return annsvc.Target{ProjectID: projectID, ExampleID: exampleID, UserID: getUserID(c), Codec: codec}, true
}

// readRecord 以 json.Number 保留整数精度读取请求体
func readRecord(c *gin.Context) (core.Record, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, errs.InvalidArgument("failed to read body: %v", err)
	}
	return core.DecodeRecord(raw)
}

// List 列出标注
func (h *AnnotationHandler) List(codec core.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.target(c, codec)
		if !ok {
			return
		}
		recs, err := h.svc.List(c.Request.Context(), t)
		if err != nil {
			errorResponse(c, err)
			return
		}
		success(c, recs)
	}
}

// Create 创建标注
func (h *AnnotationHandler) Create(codec core.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.target(c, codec)
		if !ok {
			return
		}
		body, err := readRecord(c)
		if err != nil {
			errorResponse(c, err)
			return
		}
		rec, err := h.svc.Create(c.Request.Context(), t, body)
		if err != nil {
			errorResponse(c, err)
			return
		}
		created(c, rec)
	}
}

// Update 部分更新标注
func (h *AnnotationHandler) Update(codec core.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.target(c, codec)
		if !ok {
			return
		}
		id, ok := paramID(c, "annotation_id")
		if !ok {
			return
		}
		body, err := readRecord(c)
		if err != nil {
			errorResponse(c, err)
			return
		}
		rec, err := h.svc.Update(c.Request.Context(), t, id, core.Patch(body))
		if err != nil {
			errorResponse(c, err)
			return
		}
		success(c, rec)
	}
}

// Delete 删除单条标注
func (h *AnnotationHandler) Delete(codec core.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.target(c, codec)
		if !ok {
			return
		}
		id, ok := paramID(c, "annotation_id")
		if !ok {
			return
		}
		if err := h.svc.Delete(c.Request.Context(), t, id); err != nil {
			errorResponse(c, err)
			return
		}
		noContent(c)
	}
}

// DeleteMany 按 ids 批量删除，无请求体时清空会话用户的集合
func (h *AnnotationHandler) DeleteMany(codec core.Codec) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, ok := h.target(c, codec)
		if !ok {
			return
		}
		raw, err := c.GetRawData()
		if err != nil {
			badRequest(c, err)
			return
		}
		var req BulkDeleteRequest
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &req); err != nil {
				badRequest(c, err)
				return
			}
		}

		if req.IDs == nil {
			err = h.svc.Clear(c.Request.Context(), t)
		} else {
			err = h.svc.BulkDelete(c.Request.Context(), t, req.IDs)
		}
		if err != nil {
			errorResponse(c, err)
			return
		}
		noContent(c)
	}
}
