package main

import (
	"os"
	"path/filepath"

	"github.com/SAK-124/attendance-backend-go/internal/api"
	"github.com/SAK-124/attendance-backend-go/internal/config"
	"github.com/SAK-124/attendance-backend-go/internal/database"
	"github.com/SAK-124/attendance-backend-go/internal/logger"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	if err := logger.Init(cfg.LogMode); err != nil {
		logger.L().Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logger.L().Fatalf("Failed to create database directory: %v", err)
	}
	dbConfig := database.Config{
		Path: cfg.DBPath,
	}
	if err := database.Init(dbConfig); err != nil {
		logger.L().Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// 数据库迁移
	migrations := database.NewMigrationManager(database.GetDB(), cfg.MigrationsPath)
	if err := migrations.RunMigrations(); err != nil {
		logger.L().Fatalf("Failed to run migrations: %v", err)
	}

	// 初始化路由
	router, err := api.SetupRouter(cfg)
	if err != nil {
		logger.L().Fatalf("Failed to set up router: %v", err)
	}

	// 启动服务器
	logger.L().Infof("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.L().Fatalf("Failed to start server: %v", err)
	}
}
