package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/api"
	"github.com/qs3c/fitness_go_server/internal/api/handler"
	"github.com/qs3c/fitness_go_server/internal/database"
	"github.com/qs3c/fitness_go_server/internal/pkg/cart"
	"github.com/qs3c/fitness_go_server/internal/pkg/email"
	"github.com/qs3c/fitness_go_server/internal/pkg/logger"
	"github.com/qs3c/fitness_go_server/internal/pkg/markdown"
	"github.com/qs3c/fitness_go_server/internal/pkg/oauth"
	"github.com/qs3c/fitness_go_server/internal/pkg/oss"
	"github.com/qs3c/fitness_go_server/internal/pkg/payment"
	"github.com/qs3c/fitness_go_server/internal/pkg/pubsub"
	"github.com/qs3c/fitness_go_server/internal/pkg/queue"
	"github.com/qs3c/fitness_go_server/internal/pkg/ws"
	"github.com/qs3c/fitness_go_server/internal/repository"
	"github.com/qs3c/fitness_go_server/internal/service"
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

	// 初始化 OSS（可选），未配置时上传接口返回错误
	var storage service.ImageStorage
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			logger.Warn("init oss client failed", "error", err)
		} else {
			storage = ossClient
			logger.Info("oss client initialized", "bucket", cfg.OSS.BucketName)
		}
	}

	// 邮件（可选）
	var mailer service.Mailer
	if cfg.Email.SMTPHost != "" {
		mailer = email.NewService(&cfg.Email)
	}

	// 基础组件
	gateway := payment.NewStripeGateway(cfg.Payment.SecretKey, cfg.Payment.WebhookSecret, nil)
	cartStore := cart.NewRedisStore(rdb, cfg.Cart.TTL)
	failureQueue := queue.NewQueue(rdb, cfg.Queue.FulfillmentFailureQueue)
	publisher := pubsub.NewPublisher(rdb)
	renderer := markdown.NewRenderer()
	githubOAuth := oauth.NewGithubOAuth(cfg.OAuth.Github.ClientID, cfg.OAuth.Github.ClientSecret, cfg.OAuth.Github.RedirectURI)
	stateStore := oauth.NewStateStore(rdb)

	// 初始化 WebSocket Hub
	wsHub := ws.NewHub()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	// 初始化 Service
	authService := service.NewAuthService(userRepo, githubOAuth, stateStore, cfg)
	profileService := service.NewProfileService(userRepo, profileRepo, subRepo, orderRepo, storage, cfg)
	postService := service.NewPostService(postRepo, commentRepo, likeRepo, renderer, storage, publisher, cfg)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, renderer, publisher)
	catalogService := service.NewCatalogService(productRepo, orderRepo)
	cartService := service.NewCartService(cartStore, productRepo)
	checkoutService := service.NewCheckoutService(cartStore, productRepo, userRepo, gateway, cfg)
	orderService := service.NewOrderService(orderRepo, cartStore)
	subscriptionService := service.NewSubscriptionService(subRepo, userRepo, gateway, cfg)
	fulfillmentService := service.NewFulfillmentService(db, gateway, database.NewRedsync(rdb), cartStore, publisher, mailer, failureQueue, cfg)

	// 初始化 Handler
	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewProfileHandler(profileService),
		handler.NewPostHandler(postService),
		handler.NewCommentHandler(commentService),
		handler.NewUploadHandler(profileService, postService, cfg),
		handler.NewStoreHandler(catalogService, cartService, checkoutService, orderService),
		handler.NewSubscriptionHandler(subscriptionService),
		handler.NewWebhookHandler(fulfillmentService),
		handler.NewWebSocketHandler(wsHub, cfg.CORS),
		cfg,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 转发跨进程通知到本机 WebSocket 连接
	go func() {
		err := wsHub.Forward(ctx, pubsub.NewSubscriber(rdb))
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("notification subscriber stopped", "error", err)
		}
	}()

	// 启动服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	if err := rdb.Close(); err != nil {
		logger.Warn("close redis failed", "error", err)
	}
	logger.Info("server stopped")
}
