package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	jwtauth "github.com/ashwinyue/next-label/internal/auth"
	"github.com/ashwinyue/next-label/internal/errs"
	authsvc "github.com/ashwinyue/next-label/internal/service/auth"
)

// Response 统一响应
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// success 成功响应
func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// created 创建成功响应
func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "created", Data: data})
}

// noContent 无内容响应
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// badRequest 请求参数错误
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{Code: -1, Message: "invalid request: " + err.Error()})
}

// StatusOf 错误类别对应的 HTTP 状态码
func StatusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidArgument), errors.Is(err, errs.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, jwtauth.ErrInvalidToken),
		errors.Is(err, authsvc.ErrInvalidCredentials),
		errors.Is(err, authsvc.ErrInactive):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse 错误响应；5xx 记录日志且不暴露细节
func errorResponse(c *gin.Context, err error) {
	status := StatusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)
		msg = "internal server error"
	}
	c.JSON(status, Response{Code: -1, Message: msg})
}

// WriteError 供中间件复用错误响应
func WriteError(c *gin.Context, err error) {
	errorResponse(c, err)
}

// paramID 解析路径中的正整数 ID；失败时已写入 400
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, Response{Code: -1, Message: "invalid " + name + ": " + c.Param(name)})
		return 0, false
	}
	return id, true
}

// getUserID 会话用户 ID，由认证中间件写入
func getUserID(c *gin.Context) int64 {
	return c.GetInt64("user_id")
}
