package handler

import (
	"github.com/gin-gonic/gin"

	membersvc "github.com/ashwinyue/next-label/internal/service/member"
)

// MemberHandler 成员处理器
type MemberHandler struct {
	svc *membersvc.Service
}

// NewMemberHandler 创建成员处理器
func NewMemberHandler(svc *membersvc.Service) *MemberHandler {
	return &MemberHandler{svc: svc}
}

// AddMember 添加成员
func (h *MemberHandler) AddMember(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	var req membersvc.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m, err := h.svc.AddMember(c.Request.Context(), projectID, &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	created(c, m)
}

// ListMembers 列出成员
func (h *MemberHandler) ListMembers(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	members, err := h.svc.ListMembers(c.Request.Context(), projectID)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, members)
}

// GetMember 获取成员
func (h *MemberHandler) GetMember(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	id, ok := paramID(c, "member_id")
	if !ok {
		return
	}
	m, err := h.svc.GetMember(c.Request.Context(), projectID, id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, m)
}

// UpdateMember 修改成员角色
func (h *MemberHandler) UpdateMember(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	id, ok := paramID(c, "member_id")
	if !ok {
		return
	}
	var req membersvc.UpdateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	m, err := h.svc.UpdateMember(c.Request.Context(), projectID, id, &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, m)
}

// RemoveMember 移除成员
func (h *MemberHandler) RemoveMember(c *gin.Context) {
	projectID, ok := paramID(c, "project_id")
	if !ok {
		return
	}
	id, ok := paramID(c, "member_id")
	if !ok {
		return
	}
	if err := h.svc.RemoveMember(c.Request.Context(), projectID, id); err != nil {
		errorResponse(c, err)
		return
	}
	noContent(c)
}
