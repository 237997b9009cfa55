package api

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/fitness_go_server/config"
	"github.com/qs3c/fitness_go_server/internal/api/handler"
	"github.com/qs3c/fitness_go_server/internal/api/middleware"
)

type Router struct {
	authHandler         *handler.AuthHandler
	profileHandler      *handler.ProfileHandler
	postHandler         *handler.PostHandler
	commentHandler      *handler.CommentHandler
	uploadHandler       *handler.UploadHandler
	storeHandler        *handler.StoreHandler
	subscriptionHandler *handler.SubscriptionHandler
	webhookHandler      *handler.WebhookHandler
	websocketHandler    *handler.WebSocketHandler
	cfg                 *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	postHandler *handler.PostHandler,
	commentHandler *handler.CommentHandler,
	uploadHandler *handler.UploadHandler,
	storeHandler *handler.StoreHandler,
	subscriptionHandler *handler.SubscriptionHandler,
	webhookHandler *handler.WebhookHandler,
	websocketHandler *handler.WebSocketHandler,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:         authHandler,
		profileHandler:      profileHandler,
		postHandler:         postHandler,
		commentHandler:      commentHandler,
		uploadHandler:       uploadHandler,
		storeHandler:        storeHandler,
		subscriptionHandler: subscriptionHandler,
		webhookHandler:      webhookHandler,
		websocketHandler:    websocketHandler,
		cfg:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestLogger())
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(r.cfg.CORS))

	secret := r.cfg.JWT.Secret

	api := engine.Group("/api/v1")
	{
		// 支付回调，无需登录，依靠签名校验
		api.POST("/payments/webhook", r.webhookHandler.Payment)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
			auth.GET("/github", r.authHandler.GithubAuth)
			auth.GET("/github/callback", r.authHandler.GithubCallback)
		}

		// 公开接口（可选认证）
		public := api.Group("")
		public.Use(middleware.OptionalAuth(secret))
		{
			public.GET("/home", r.postHandler.Home)
			public.GET("/posts", r.postHandler.List)
			public.GET("/posts/:id", r.postHandler.Get)

			public.GET("/store/categories", r.storeHandler.Categories)
			public.GET("/store/products", r.storeHandler.Products)
			public.GET("/store/products/:id/:slug", r.storeHandler.Product)

			public.GET("/subscriptions/plans", r.subscriptionHandler.Plans)
			public.GET("/subscriptions/success", r.subscriptionHandler.Success)
			public.GET("/subscriptions/cancel", r.subscriptionHandler.Cancel)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(secret))
		{
			// WebSocket，token 走查询参数
			authenticated.GET("/ws", r.websocketHandler.Handle)

			// 档案
			authenticated.GET("/profile", r.profileHandler.GetProfile)
			authenticated.PUT("/profile", r.profileHandler.UpdateProfile)
			authenticated.POST("/profile/picture", r.uploadHandler.ProfilePicture)

			// 动态
			posts := authenticated.Group("/posts")
			{
				posts.POST("", r.postHandler.Create)
				posts.POST("/image", r.uploadHandler.PostImage)
				posts.PUT("/:id", r.postHandler.Update)
				posts.DELETE("/:id", r.postHandler.Delete)
				posts.POST("/:id/like", r.postHandler.Like)
				posts.POST("/:id/comments", r.commentHandler.Create)
			}
			authenticated.DELETE("/comments/:id", r.commentHandler.Delete)

			// 商城
			store := authenticated.Group("/store")
			{
				store.POST("/products/:id/reviews", r.storeHandler.CreateReview)
				store.GET("/cart", r.storeHandler.Cart)
				store.POST("/cart/:product_id", r.storeHandler.AddToCart)
				store.DELETE("/cart/:product_id", r.storeHandler.RemoveFromCart)
				store.POST("/checkout", r.storeHandler.Checkout)
				store.GET("/orders", r.storeHandler.Orders)
				store.GET("/orders/success", r.storeHandler.OrderSuccess)
				store.GET("/orders/cancel", r.storeHandler.OrderCancel)
				store.GET("/orders/:id", r.storeHandler.Order)
			}

			// 订阅
			authenticated.GET("/subscriptions", r.subscriptionHandler.Mine)
			authenticated.POST("/subscriptions/plans/:id/subscribe", r.subscriptionHandler.Subscribe)
		}
	}

	return engine
}
