package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sps-logbook/config"
	"sps-logbook/internal/api/handler"
	"sps-logbook/internal/api/middleware"
	"sps-logbook/internal/session"
	"sps-logbook/pkg/jwt"
	"sps-logbook/pkg/metrics"
)

// Pinger 健康检查依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps 路由层依赖
// Blacklist / Limiter 为 nil 时对应功能降级关闭
type Deps struct {
	Config    *config.Config
	Handler   *handler.Handler
	JWT       *jwt.Manager
	Blacklist middleware.TokenChecker
	Limiter   middleware.Limiter
	DB        Pinger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	cfg, h, logger := d.Config, d.Handler, d.Logger
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := d.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	authLimit := middleware.RateLimit(d.Limiter, cfg.RateLimit.AuthPerMinute, time.Minute, logger)
	unlockLimit := middleware.RateLimit(d.Limiter, cfg.RateLimit.UnlockPerMinute, time.Minute, logger)
	jwtAuth := middleware.JWTAuth(d.JWT, d.Blacklist, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authLimit, h.Auth.Login)
			auth.POST("/register", authLimit, middleware.OptionalJWTAuth(d.JWT, d.Blacklist, logger), h.Auth.Register)
			auth.POST("/reset-password", authLimit, h.Auth.ResetPassword)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(jwtAuth)
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			authorized.GET("/session", h.Session.Get)
			authorized.PUT("/session/page", h.Session.SwitchPage)
			authorized.GET("/catalog", h.Entry.Catalog)

			// 日志录入（录入页）
			entries := authorized.Group("/entries")
			entries.Use(middleware.PageAuth(session.PageEntry))
			{
				entries.POST("", h.Entry.Submit)
				entries.POST("/unlock", unlockLimit, h.Entry.Unlock)
				entries.GET("/recent", h.Entry.Recent)
				entries.GET("/pending", h.Entry.Pending)
				entries.GET("/:date/:station", h.Entry.Get)
				entries.DELETE("/:date/:station", h.Entry.Delete)
			}

			// 分析报表（报表页）
			reports := authorized.Group("/reports")
			reports.Use(middleware.PageAuth(session.PageReport))
			{
				reports.GET("/summary", h.Report.Summary)
				reports.POST("/compare", h.Report.Compare)
				reports.POST("/compare/export", h.Report.ExportComparison)
				reports.GET("/critical", h.Report.Critical)
				reports.GET("/export", h.Report.Export)
			}

			// 用户目录（仅管理员）
			users := authorized.Group("/users")
			users.Use(middleware.AdminOnly())
			{
				users.GET("", h.User.ListUsers)
				users.GET("/export", h.User.ExportUsers)
			}
		}
	}

	return r
}
