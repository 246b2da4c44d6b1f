package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ashwinyue/next-label/internal/model"
)

// Authenticator 由令牌解析会话用户
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// MemberAuthorizer 查询会话用户在项目中的成员身份
type MemberAuthorizer interface {
	Authorize(ctx context.Context, projectID, userID int64) (*model.Member, error)
}

// ErrorWriter 把错误写成统一响应
type ErrorWriter func(c *gin.Context, err error)

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    -1,
		"message": msg,
	})
}

// RequireAuth 要求有效的 Bearer Token，否则返回 401
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "Missing Authorization header")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		// Token 有效，设置用户到上下文
		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Next()
	}
}

// RequireMember 要求会话用户是 :project_id 的成员，非成员返回 403
func RequireMember(members MemberAuthorizer, writeError ErrorWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseInt(c.Param("project_id"), 10, 64)
		if err != nil || projectID <= 0 {
			abort(c, http.StatusBadRequest, "invalid project_id: "+c.Param("project_id"))
			return
		}
		m, err := members.Authorize(c.Request.Context(), projectID, GetUserID(c))
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}
		c.Set("member", m)
		c.Next()
	}
}

// RequireRole 要求成员角色属于 roles 之一，须在 RequireMember 之后使用
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, ok := GetMember(c)
		if !ok {
			abort(c, http.StatusForbidden, "membership required")
			return
		}
		for _, r := range roles {
			if m.Role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "role "+m.Role+" may not perform this action")
	}
}

// GetCurrentUser 从上下文获取当前用户
func GetCurrentUser(c *gin.Context) (*model.User, bool) {
	user, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}

// GetUserID 从上下文获取当前用户 ID，未认证时为 0
func GetUserID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}

// GetMember 从上下文获取成员身份
func GetMember(c *gin.Context) (*model.Member, bool) {
	v, exists := c.Get("member")
	if !exists {
		return nil, false
	}
	m, ok := v.(*model.Member)
	return m, ok
}
