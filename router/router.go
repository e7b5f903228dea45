package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/bakery-app/config"
	"github.com/yeremiapane/bakery-app/controllers"
	"github.com/yeremiapane/bakery-app/kds"
	"github.com/yeremiapane/bakery-app/middlewares"
	"github.com/yeremiapane/bakery-app/models"
	"github.com/yeremiapane/bakery-app/services"
	"github.com/yeremiapane/bakery-app/utils"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, hub *kds.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	rateLimiter := middlewares.NewRateLimiter(cfg.RateLimit, cfg.RateBurst)

	r.Use(middlewares.SecurityHeaders(middlewares.SecurityPolicy{
		ContentSecurityPolicy: cfg.CSP,
		FrameOptions:          cfg.FrameOptions,
		HSTSMaxAge:            cfg.HSTSMaxAge,
	}))
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(rateLimiter.RateLimit())

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	// Engines
	policy := services.NewAvailabilityPolicy(cfg.Services())
	rewards := services.NewRewardLedger(db)
	recipes := services.NewRecipeCatalog(db)
	checkout := services.NewCheckoutService(db, policy, rewards, hub)
	orders := services.NewOrderService(db, hub)
	production := services.NewProductionService(db, recipes)

	// Inisialisasi controller
	productCtrl := controllers.NewProductController(services.NewProductCatalog(db, policy))
	cartCtrl := controllers.NewCartController(services.NewCartService(db, policy))
	orderCtrl := controllers.NewOrderController(checkout, orders)
	rewardCtrl := controllers.NewRewardController(rewards)
	recipeCtrl := controllers.NewRecipeController(recipes)
	productionCtrl := controllers.NewProductionController(production, hub)
	kdsCtrl := controllers.NewKDSController(hub, cfg.CORSOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	r.GET("/products", productCtrl.GetAllProducts)
	r.GET("/products/:id", productCtrl.GetProductByID)

	// ----------------------------------------------------------------
	//                      BUYER ROUTES (customer, cashier)
	// ----------------------------------------------------------------
	buyer := r.Group("/")
	buyer.Use(middlewares.AuthMiddleware(tokens))
	buyer.Use(middlewares.RequireRoles(models.RoleCustomer, models.RoleCashier))
	{
		buyer.GET("/cart", cartCtrl.GetCart)
		buyer.DELETE("/cart", cartCtrl.ClearCart)
		buyer.POST("/cart/items", cartCtrl.AddItem)
		buyer.PATCH("/cart/items/:id", cartCtrl.UpdateItem)
		buyer.DELETE("/cart/items/:id", cartCtrl.RemoveItem)

		buyer.POST("/orders", orderCtrl.CreateOrder)
	}

	customer := r.Group("/")
	customer.Use(middlewares.AuthMiddleware(tokens))
	customer.Use(middlewares.RequireRoles(models.RoleCustomer))
	{
		customer.GET("/orders/my-history", orderCtrl.GetMyHistory)
		customer.GET("/rewards/me", rewardCtrl.GetMyReward)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(tokens))
	admin.Use(middlewares.RequireRoles(models.RoleCashier, models.RoleAdmin))
	{
		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		admin.PUT("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)

		admin.POST("/inventory/produce", productionCtrl.Produce)
	}

	recipeGroup := admin.Group("/products")
	recipeGroup.Use(middlewares.RequireRoles(models.RoleAdmin))
	{
		recipeGroup.GET("/:id/recipe", recipeCtrl.GetRecipe)
		recipeGroup.POST("/:id/recipe", recipeCtrl.SetRecipe)
	}

	// WebSocket endpoint dengan middleware khusus
	wsGroup := r.Group("/admin/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware(tokens))
	{
		wsGroup.GET("", kdsCtrl.KDSHandler)
	}

	return r
}
