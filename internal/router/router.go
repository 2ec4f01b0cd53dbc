package router

import (
	"time"

	"raspadinha/config"
	"raspadinha/internal/handler"
	"raspadinha/internal/middleware"
	"raspadinha/internal/repository"
	"raspadinha/internal/service"
	"raspadinha/pkg/cache"
	"raspadinha/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, store *cache.Cache, cloud cloudinary.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	cardRepo := repository.NewCardRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	ledgerSvc := service.NewLedgerService(ledgerRepo)
	catalogSvc := service.NewCatalogService(cardRepo)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, catalogSvc, ledgerSvc, userRepo, nil)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, userRepo)
	walletHandler := handler.NewWalletHandler(ledgerSvc, ledgerRepo, store)
	txHandler := handler.NewTransactionHandler(ledgerRepo)
	cardHandler := handler.NewCardHandler(catalogSvc, store)
	purchaseHandler := handler.NewPurchaseHandler(purchaseSvc)
	adminHandler := handler.NewAdminHandler(ledgerSvc, ledgerRepo, userRepo, purchaseRepo, purchaseSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	activeMw := middleware.ActiveUserRequired(userRepo)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.GET("/me", authMw, authHandler.Me)
		}

		api.GET("/cards", cardHandler.ListAvailable)
		api.GET("/cards/:id", cardHandler.Get)

		wallet := api.Group("/wallet")
		wallet.Use(authMw, activeMw)
		{
			wallet.GET("/balance", walletHandler.GetBalance)
			wallet.POST("/deposit", walletHandler.Deposit)
			wallet.POST("/withdraw", walletHandler.Withdraw)
			wallet.POST("/transfer", walletHandler.Transfer)
			wallet.GET("/transactions", walletHandler.History)
			wallet.GET("/stats", walletHandler.Stats)
		}

		transactions := api.Group("/transactions")
		transactions.Use(authMw, activeMw)
		{
			transactions.GET("/:id", txHandler.Get)
			transactions.GET("/export", txHandler.ExportCSV)
			transactions.GET("/summary", txHandler.MonthlySummary)
		}

		purchases := api.Group("/purchases")
		purchases.Use(authMw, activeMw)
		{
			purchases.POST("", purchaseHandler.Purchase)
			purchases.GET("", purchaseHandler.ListMine)
			purchases.GET("/:id", purchaseHandler.Get)
			purchases.POST("/:id/scratch", purchaseHandler.Scratch)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, middleware.AdminRequired())
		{
			admin.GET("/cards", cardHandler.List)
			admin.POST("/cards", cardHandler.Create)
			admin.PUT("/cards/:id", cardHandler.Update)
			admin.DELETE("/cards/:id", cardHandler.Delete)
			admin.GET("/transactions", adminHandler.ListTransactions)
			admin.POST("/deposits", adminHandler.DepositToUser)
			admin.POST("/transactions/:id/reverse", adminHandler.ReverseTransaction)
			admin.GET("/wallets", adminHandler.ListWallets)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id/active", adminHandler.SetUserActive)
			admin.GET("/purchases", adminHandler.ListPurchases)
			admin.POST("/purchases/:id/cancel", adminHandler.CancelPurchase)
			admin.GET("/stats", adminHandler.SystemStats)
			if cloud != nil {
				uploadHandler := handler.NewUploadHandler(cloud)
				admin.POST("/uploads", uploadHandler.UploadImage)
			}
		}
	}

	return r
}
