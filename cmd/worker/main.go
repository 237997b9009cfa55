package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "go.uber.org/automaxprocs"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/database"
	"github.com/qs3c/fitness_go_server/internal/pkg/cron"
	"github.com/qs3c/fitness_go_server/internal/pkg/email"
	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/queue"
	"github.com/qs3c/fitness_go_server/internal/repository"
	"github.com/qs3c/fitness_go_server/internal/service"
	"github.com/qs3c/fitness_go_server/internal/worker"
)

func main() {
	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&cfg.Log); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// 初始化数据库
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logger.Error("connect database failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database connected", "driver", cfg.Database.Driver)

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		logger.Error("connect redis failed", "error", err)
		os.Exit(1)
	}
	logger.Info("redis connected")

	// 订阅过期定时任务
	subscriptionService := service.NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewUserRepository(db),
		nil,
		cfg,
	)
	scheduler := cron.NewService(subscriptionService)
	if err := scheduler.ScheduleExpiry(cfg.Cron.ExpireSubscriptions); err != nil {
		logger.Error("schedule subscription expiry failed", "error", err)
		os.Exit(1)
	}
	scheduler.Start()

	// 履约失败告警
	var alerter worker.Alerter
	if cfg.Email.SMTPHost != "" {
		alerter = email.NewService(&cfg.Email)
	}
	processor := worker.NewProcessor(queue.NewQueue(rdb, cfg.Queue.FulfillmentFailureQueue), alerter)

	// 创建 context 用于优雅关闭
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workers := cfg.Queue.MaxWorkers
	if workers <= 0 {
		workers = 1
	}
	logger.Info("worker started", "max_workers", workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			processor.Run(ctx, workerID)
		}(i)
	}

	// 等待 context 取消
	<-ctx.Done()
	logger.Info("received shutdown signal")

	scheduler.Stop()
	wg.Wait()
	if err := rdb.Close(); err != nil {
		logger.Warn("close redis failed", "error", err)
	}
	logger.Info("worker shutdown complete")
}
