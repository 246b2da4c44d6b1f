package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	jwtauth "github.com/ashwinyue/next-label/internal/auth"
	"github.com/ashwinyue/next-label/internal/errs"
	authsvc "github.com/ashwinyue/next-label/internal/service/auth"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", errs.NotFound("example %d", 1), http.StatusNotFound},
		{"invalid", errs.InvalidArgument("bad"), http.StatusBadRequest},
		{"decode", fmt.Errorf("%w: spans[0]", errs.ErrDecode), http.StatusBadRequest},
		{"conflict", errs.Conflict("dup"), http.StatusConflict},
		{"forbidden", errs.Forbidden("no"), http.StatusForbidden},
		{"token", jwtauth.ErrInvalidToken, http.StatusUnauthorized},
		{"credentials", authsvc.ErrInvalidCredentials, http.StatusUnauthorized},
		{"inactive", authsvc.ErrInactive, http.StatusUnauthorized},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestErrorResponse_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	errorResponse(c, errors.New("password=hunter2"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	errorResponse(c, errs.NotFound("label %d", 9))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "label 9")
}

func TestParamID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, raw := range []string{"abc", "0", "-3"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "label_id", Value: raw}}
		_, ok := paramID(c, "label_id")
		assert.False(t, ok, raw)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Params = gin.Params{{Key: "label_id", Value: "12"}}
	id, ok := paramID(c, "label_id")
	assert.True(t, ok)
	assert.Equal(t, int64(12), id)
}
