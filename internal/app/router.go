package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"taxi/internal/handler"
	"taxi/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler         *handler.AuthHandler
	OrderHandler        *handler.OrderHandler
	DriverHandler       *handler.DriverHandler
	NotificationHandler *handler.NotificationHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Identity.
		v1.POST("/auth", deps.AuthHandler.Auth)

		// Order routes.
		orders := v1.Group("/orders")
		{
			orders.POST("", deps.OrderHandler.Create)
			orders.GET("", deps.OrderHandler.List)
			orders.GET("/:id", deps.OrderHandler.Get)
			orders.POST("/:id/accept", deps.OrderHandler.Accept)
			orders.POST("/:id/arrive", deps.OrderHandler.Arrive)
			orders.POST("/:id/start", deps.OrderHandler.Start)
			orders.POST("/:id/complete", deps.OrderHandler.Complete)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.PUT("/:id/status", deps.DriverHandler.SetStatus)
		}

		// Notification routes.
		v1.GET("/notifications", deps.NotificationHandler.List)
	}

	return router
}
