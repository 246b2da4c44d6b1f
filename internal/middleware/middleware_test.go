package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashwinyue/next-label/internal/errs"
	"github.com/ashwinyue/next-label/internal/logger"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/telemetry"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth map[string]*model.User

func (s stubAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, errs.InvalidArgument("bad token")
}

type stubMembers map[int64]*model.Member

func (s stubMembers) Authorize(_ context.Context, projectID, userID int64) (*model.Member, error) {
	m, ok := s[userID]
	if !ok || m.ProjectID != projectID {
		return nil, errs.Forbidden("user %d is not a member of project %d", userID, projectID)
	}
	return m, nil
}

func writeForbidden(c *gin.Context, err error) {
	c.JSON(http.StatusForbidden, gin.H{"code": -1, "message": err.Error()})
}

func newEngine() *gin.Engine {
	auth := stubAuth{"t-admin": {ID: 1}, "t-anno": {ID: 2}, "t-out": {ID: 3}}
	members := stubMembers{
		1: {ProjectID: 7, UserID: 1, Role: model.RoleProjectAdmin},
		2: {ProjectID: 7, UserID: 2, Role: model.RoleAnnotator},
	}
	r := gin.New()
	g := r.Group("/projects/:project_id", RequireAuth(auth), RequireMember(members, writeForbidden))
	g.GET("/labels", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	g.POST("/labels", RequireRole(model.RoleProjectAdmin), func(c *gin.Context) {
		u, _ := GetCurrentUser(c)
		c.JSON(http.StatusCreated, gin.H{"user": u.ID})
	})
	return r
}

func send(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthorizationChain(t *testing.T) {
	r := newEngine()
	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"missing token", http.MethodGet, "/projects/7/labels", "", http.StatusUnauthorized},
		{"unknown token", http.MethodGet, "/projects/7/labels", "nope", http.StatusUnauthorized},
		{"non-member", http.MethodGet, "/projects/7/labels", "t-out", http.StatusForbidden},
		{"bad project id", http.MethodGet, "/projects/x/labels", "t-admin", http.StatusBadRequest},
		{"annotator reads", http.MethodGet, "/projects/7/labels", "t-anno", http.StatusOK},
		{"annotator writes", http.MethodPost, "/projects/7/labels", "t-anno", http.StatusForbidden},
		{"admin writes", http.MethodPost, "/projects/7/labels", "t-admin", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, send(r, tt.method, tt.path, tt.token).Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/projects/7/labels", nil)
	req.Header.Set("Authorization", "Token t-admin")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "only the Bearer scheme is accepted")
}

func TestWriteLimiter(t *testing.T) {
	l := NewWriteLimiter(0.001, 2)
	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1), "burst exhausted")
	assert.True(t, l.Allow(2), "quota is per user")

	unlimited := NewWriteLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, unlimited.Allow(1))
	}
}

func TestWriteLimiter_Middleware(t *testing.T) {
	l := NewWriteLimiter(0.001, 1)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", int64(5)); c.Next() })
	r.Use(l.Middleware())
	r.Any("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, send(r, http.MethodPost, "/x", "").Code)
	w := send(r, http.MethodPatch, "/x", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, send(r, http.MethodGet, "/x", "").Code)
}

func TestLoggingAndRecovery(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := telemetry.New(reg)
	require.NoError(t, err)

	r := gin.New()
	r.Use(LoggingMiddleware(logger.Discard(), metrics), RecoveryMiddleware(logger.Discard()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusInternalServerError, send(r, http.MethodGet, "/boom", "").Code)
	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "/ok", "").Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodGet, "/missing", "").Code)

	count, err := testutil.GatherAndCount(reg, "next_label_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
