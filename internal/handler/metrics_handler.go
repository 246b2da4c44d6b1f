package handler

import (
	"github.com/gin-gonic/gin"

	metricssvc "github.com/ashwinyue/next-label/internal/service/metrics"
)

// MetricsHandler 项目统计处理器
type MetricsHandler struct {
	svc *metricssvc.Service
}

// NewMetricsHandler 创建统计处理器
func NewMetricsHandler(svc *metricssvc.Service) *MetricsHandler {
	return &MetricsHandler{svc: svc}
}

// Distribution 指定形态的标签分布
func (h *MetricsHandler) Distribution(shape string) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := paramID(c, "project_id")
		if !ok {
			return
		}
		d, err := h.svc.Distribution(c.Request.Context(), projectID, shape)
		if err != nil {
			errorResponse(c, err)
			return
		}
		success(c, d)
	}
}

// MemberProgress 成员进度
func (h *MetricsHandler) MemberProgress(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	report, err := h.svc.MemberProgress(c.Request.Context(), projectID)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, report)
}

// MyProgress 会话用户的进度
func (h *MetricsHandler) MyProgress(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	p, err := h.svc.MyProgress(c.Request.Context(), projectID, getUserID(c))
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, p)
}
