package router

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	core "github.com/ashwinyue/next-label/internal/annotation"
	"github.com/ashwinyue/next-label/internal/handler"
	"github.com/ashwinyue/next-label/internal/middleware"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/service"
	metricssvc "github.com/ashwinyue/next-label/internal/service/metrics"
	"github.com/ashwinyue/next-label/internal/telemetry"
)

// Options 路由选项
type Options struct {
	WriteRate  float64
	WriteBurst int
	// Gatherer /metrics 的数据源，为 nil 时使用默认注册表
	Gatherer prometheus.Gatherer
}

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers, svc *service.Services, tel *telemetry.Metrics, log *slog.Logger, opts Options) *gin.Engine {
	r := gin.New()

	// 中间件
	// 日志在外层，panic 恢复后的 500 也会被记录
	r.Use(middleware.LoggingMiddleware(log, tel))
	r.Use(middleware.RecoveryMiddleware(log))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")

	// Auth 认证
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/me", middleware.RequireAuth(svc.Auth), h.Auth.Me)
	}

	limiter := middleware.NewWriteLimiter(opts.WriteRate, opts.WriteBurst)
	api := v1.Group("", middleware.RequireAuth(svc.Auth), limiter.Middleware())

	admin := middleware.RequireRole(model.RoleProjectAdmin)

	// Project 项目
	api.POST("/projects", h.Project.CreateProject)
	api.GET("/projects", h.Project.ListProjects)

	project := api.Group("/projects/:project_id", middleware.RequireMember(svc.Member, handler.WriteError))
	{
		project.GET("", h.Project.GetProject)
		project.PATCH("", admin, h.Project.UpdateProject)
		project.DELETE("", admin, h.Project.DeleteProject)
	}

	// Label 标签
	labels := project.Group("/labels")
	{
		labels.GET("", h.Label.ListLabels)
		labels.POST("", admin, h.Label.CreateLabel)
		labels.GET("/:label_id", h.Label.GetLabel)
		labels.PATCH("/:label_id", admin, h.Label.UpdateLabel)
		labels.DELETE("/:label_id", admin, h.Label.DeleteLabel)
	}

	// Member 成员
	members := project.Group("/members")
	{
		members.GET("", h.Member.ListMembers)
		members.POST("", admin, h.Member.AddMember)
		members.GET("/:member_id", h.Member.GetMember)
		members.PATCH("/:member_id", admin, h.Member.UpdateMember)
		members.DELETE("/:member_id", admin, h.Member.RemoveMember)
	}

	// Example 与确认状态
	examples := project.Group("/examples")
	{
		examples.GET("", h.Example.ListExamples)
		examples.POST("", admin, h.Example.CreateExample)
		examples.GET("/:example_id", h.Example.GetExample)
		examples.DELETE("/:example_id", admin, h.Example.DeleteExample)
		examples.POST("/:example_id/states", h.Example.Confirm)
		examples.DELETE("/:example_id/states", h.Example.Unconfirm)
	}

	// Annotation 每种形态一组静态路由，Seq2seq 位于独立前缀下
	seq2seq := project.Group("/seq2seq/examples")
	for _, codec := range core.Codecs() {
		group := examples.Group("/:example_id/" + codec.Fragment)
		if codec.Kind == core.KindSeq2seq {
			group = seq2seq.Group("/:example_id/" + codec.Fragment)
		}
		registerAnnotations(group, h.Annotation, codec)
	}

	// Metrics 统计
	stats := project.Group("/metrics")
	{
		stats.GET("/category-distribution", h.Metrics.Distribution(metricssvc.ShapeCategory))
		stats.GET("/span-distribution", h.Metrics.Distribution(metricssvc.ShapeSpan))
		stats.GET("/relation-distribution", h.Metrics.Distribution(metricssvc.ShapeRelation))
		stats.GET("/member-progress", h.Metrics.MemberProgress)
		stats.GET("/my-progress", h.Metrics.MyProgress)
	}

	return r
}

func registerAnnotations(g *gin.RouterGroup, h *handler.AnnotationHandler, codec core.Codec) {
	g.GET("", h.List(codec))
	g.POST("", h.Create(codec))
	g.DELETE("", h.DeleteMany(codec))
	g.PATCH("/:annotation_id", h.Update(codec))
	g.DELETE("/:annotation_id", h.Delete(codec))
}
