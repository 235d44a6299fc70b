package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"siwes-logbook/config"
	"siwes-logbook/internal/repository"
	"siwes-logbook/internal/service"
	"siwes-logbook/pkg/database"
	applogger "siwes-logbook/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("SIWES_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	defer sqlDB.Close()

	cli := commandLine{
		out:      os.Stdout,
		users:    service.NewUserService(repository.NewRepository(db), logger),
		migrate:  func() error { return database.RunMigrations(sqlDB, logger) },
		rollback: func() error { return database.RollbackMigration(sqlDB, logger) },
		errOut:   os.Stderr,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		sqlDB.Close()
		os.Exit(1)
	}
}
