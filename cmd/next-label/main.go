package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/ashwinyue/next-label/internal/cache"
	"github.com/ashwinyue/next-label/internal/config"
	"github.com/ashwinyue/next-label/internal/database"
	"github.com/ashwinyue/next-label/internal/handler"
	"github.com/ashwinyue/next-label/internal/logger"
	"github.com/ashwinyue/next-label/internal/repository"
	"github.com/ashwinyue/next-label/internal/router"
	"github.com/ashwinyue/next-label/internal/service"
	"github.com/ashwinyue/next-label/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.Log)

	// 设置 Gin 模式
	gin.SetMode(cfg.Server.Mode)

	// 初始化数据库
	db, err := database.New(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("database connected", "driver", cfg.Database.Driver)

	// 统计缓存：启用 Redis 时跨实例共享，否则使用进程内缓存
	var statsCache cache.Cache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.GetAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := redisClient.Ping(ctx).Err()
		cancel()
		if err != nil {
			return err
		}
		statsCache = cache.NewRedis(redisClient, cfg.App.Name+":")
	} else {
		statsCache = cache.NewMemory(cfg.Metrics.TTL(), time.Minute)
	}

	tel, err := telemetry.New(prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	// 初始化各层
	repos := repository.NewRepositories(db.DB)
	services, err := service.NewServices(repos, cfg, statsCache, tel, log)
	if err != nil {
		return err
	}
	handlers := handler.NewHandlers(services)

	// 初始化路由
	r := router.SetupRouter(handlers, services, tel, log, router.Options{
		WriteRate:  cfg.Server.WriteRate,
		WriteBurst: cfg.Server.WriteBurst,
		Gatherer:   prometheus.DefaultGatherer,
	})

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	log.Info("shutting down server")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("server exited")
	return nil
}
