package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sysauth/pkg/config"
	"github.com/sysauth/pkg/database"
	"github.com/sysauth/pkg/lifecycle"
	"github.com/sysauth/pkg/logger"
	"github.com/sysauth/services/system/internal/server"
	"github.com/sysauth/services/system/internal/store"
	"go.uber.org/zap"
)

const serviceName = "system-service"

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 加载配置,签名密钥缺失时直接退出
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// 初始化数据库
	db, err := database.Open(&cfg.Database)
	if err != nil {
		logger.Fatal("初始化数据库失败", zap.Error(err))
	}
	if err := store.Migrate(db); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}
	if _, err := store.Bootstrap(context.Background(), db,
		cfg.Auth.Bootstrap.Username, cfg.Auth.Bootstrap.Password, cfg.Auth.SuperRoleID); err != nil {
		logger.Fatal("初始化管理员失败", zap.Error(err))
	}

	// 初始化Redis,用于登录限流
	rdb, err := database.OpenRedis(&cfg.Redis)
	if err != nil {
		logger.Fatal("初始化Redis失败", zap.Error(err))
	}

	app, err := server.New(cfg, db, rdb.Client)
	if err != nil {
		logger.Fatal("创建HTTP服务失败", zap.Error(err))
	}

	err = lifecycle.New(serviceName).
		Addr(cfg.Server.HTTP.Addr()).
		App(app).
		OnReady(func() error {
			logger.Info("系统服务就绪",
				zap.String("addr", cfg.Server.HTTP.Addr()),
				zap.String("grantBackend", cfg.Auth.GrantBackend),
			)
			return nil
		}).
		OnStop(func() error { return database.Close(db) }).
		OnStop(rdb.Close).
		Run()
	if err != nil {
		logger.Fatal("服务运行失败", zap.Error(err))
	}
}
