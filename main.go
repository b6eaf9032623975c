// @title 课程进度服务 API
// @version 1.0
// @description 课程顺序解锁与学习进度服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"coder_edu_progress/internal/app"
	"coder_edu_progress/internal/config"
	"coder_edu_progress/pkg/configwatcher"
	"coder_edu_progress/pkg/logger"
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	configDir := flag.String("config", "configs", "配置文件目录")
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	importFile := flag.String("import", "", "导入课程文档（YAML 或 JSON）后退出")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly

	application := app.NewApp(cfg)
	defer application.Close()

	// 迁移完成后直接退出
	if *migrateOnly {
		logger.Log.Info("数据库迁移完成，退出程序")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *importFile != "" {
		course, err := application.ImportFile(ctx, *importFile)
		if err != nil {
			logger.Log.Error("Course import failed", zap.String("file", *importFile), zap.Error(err))
			application.Close()
			os.Exit(1)
		}
		logger.Log.Info("Course imported",
			zap.String("courseId", course.ID),
			zap.String("slug", course.Slug),
			zap.Int("revision", course.Revision),
		)
		return
	}

	go func() {
		configFile := filepath.Join(*configDir, "config.yaml")
		if err := configwatcher.WatchConfig(ctx, configFile, application.ApplyConfig); err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()

	if err := application.Run(ctx); err != nil {
		logger.Log.Error("Server stopped with error", zap.Error(err))
	}
}
