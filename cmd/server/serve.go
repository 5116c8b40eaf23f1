package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"campus-desk/backend/internal/api/handler"
	"campus-desk/backend/internal/api/router"
	"campus-desk/backend/internal/api/validator"
	"campus-desk/backend/internal/repository"
	"campus-desk/backend/internal/service"
	"campus-desk/backend/pkg/database"
	"campus-desk/backend/pkg/jwt"
	"campus-desk/backend/pkg/localcache"
	"campus-desk/backend/pkg/redis"
	"campus-desk/backend/pkg/storage"
)

// localBlacklistSize Redis 不可用时本地吊销列表的容量
const localBlacklistSize = 100_000

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务（默认命令）",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(*configPath)
		},
	}
}

func runServe(configPath string) error {
	// 1. 配置、日志、数据库
	a, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, logger := a.cfg, a.logger

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 2. 执行数据库迁移
	sqlDB, err := a.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		return err
	}

	// 3. 连接 Redis（失败时吊销列表退回进程内缓存，登录限流关闭）
	var blacklist jwt.Blacklist
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，使用本地吊销列表（仅单实例有效）", zap.Error(err))
		rdb = nil
		local, err := localcache.NewBlacklist(localBlacklistSize)
		if err != nil {
			return fmt.Errorf("初始化本地吊销列表失败: %w", err)
		}
		defer local.Close()
		blacklist = local
	} else {
		defer rdb.Close()
		blacklist = rdb
	}

	// 4. 附件存储
	store, err := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.URLPrefix)
	if err != nil {
		return fmt.Errorf("初始化附件目录失败: %w", err)
	}

	// 5. 自定义校验规则
	if err := validator.Register(); err != nil {
		return fmt.Errorf("注册校验规则失败: %w", err)
	}

	// 6. 依赖注入: Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth, blacklist)
	repo := repository.NewRepository(a.db)
	svc := service.NewService(cfg, repo, jwtMgr, store, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	gin.SetMode(gin.ReleaseMode)
	engine := router.Setup(cfg, h, jwtMgr, svc.Auth, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("HTTP 服务器异常: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	logger.Info("服务器已关闭")
	return nil
}
