package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"sps-logbook/config"
	"sps-logbook/internal/api/handler"
	"sps-logbook/internal/api/middleware"
	"sps-logbook/internal/api/router"
	"sps-logbook/internal/repository"
	"sps-logbook/internal/service"
	"sps-logbook/internal/session"
	"sps-logbook/pkg/authz"
	"sps-logbook/pkg/database"
	"sps-logbook/pkg/jwt"
	applogger "sps-logbook/pkg/logger"
	"sps-logbook/pkg/metrics"
	"sps-logbook/pkg/redis"
)

// 内存会话存储容量（Redis 不可用时）
const memorySessionSize = 10000

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("report_timezone", cfg.Report.Timezone),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级为进程内会话存储，黑名单与限流关闭）
	var (
		sessions  session.Store
		blacklist service.TokenBlacklist
		checker   middleware.TokenChecker
		limiter   middleware.Limiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，会话状态改用内存存储，Token 黑名单与限流不可用", zap.Error(err))
		rdb = nil
		sessions = session.NewMemoryStore(memorySessionSize, cfg.Auth.SessionTTL)
	} else {
		sessions = session.NewRedisStore(rdb, cfg.Auth.SessionTTL)
		blacklist, checker, limiter = rdb, rdb, rdb
	}

	// 5. 初始化 JWT 管理器、授权策略与指标
	jwtMgr := jwt.NewManager(&cfg.Auth)
	policy := authz.NewStaticPolicy(&cfg.Authz)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(service.Deps{
		Config:    cfg,
		Repo:      repo,
		JWT:       jwtMgr,
		Sessions:  sessions,
		Blacklist: blacklist,
		Policy:    policy,
		Metrics:   appMetrics,
		Logger:    logger,
	})
	h := handler.NewHandler(svc)

	// 6.1 确保内置管理员存在
	initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.Auth.EnsureAdmin(initCtx); err != nil {
		initCancel()
		logger.Fatal("初始化管理员账号失败", zap.Error(err))
	}
	initCancel()

	// 7. 初始化路由
	engine := router.Setup(router.Deps{
		Config:    cfg,
		Handler:   h,
		JWT:       jwtMgr,
		Blacklist: checker,
		Limiter:   limiter,
		DB:        repo,
		Registry:  registry,
		Metrics:   appMetrics,
		Logger:    logger,
	})

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if sqlDB != nil {
		sqlDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
