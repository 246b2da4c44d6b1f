package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/next-label/internal/repository"
	authsvc "github.com/ashwinyue/next-label/internal/service/auth"
)

// AuthHandler 认证处理器
type AuthHandler struct {
	svc   *authsvc.Service
	users *repository.UserRepository
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *authsvc.Service, users *repository.UserRepository) *AuthHandler {
	return &AuthHandler{svc: svc, users: users}
}

// Register 注册
func (h *AuthHandler) Register(c *gin.Context) {
	var req authsvc.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	created(c, user)
}

// Login 登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req authsvc.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, resp)
}

// Me 当前用户
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), getUserID(c))
	if err != nil {
		errorResponse(c, err)
		return
	}
	success(c, user)
}
