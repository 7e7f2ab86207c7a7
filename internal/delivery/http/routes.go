package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/skinlens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP, logger))
	{
		v1.GET("/health", handler.HealthCheck)

		v1.GET("/products", handler.ListProducts)
		v1.GET("/products/:id", handler.GetProduct)
		v1.GET("/ingredients/:tag", handler.GetIngredient)

		scans := v1.Group("/scans")
		{
			scans.POST("", handler.SubmitScan)
			scans.POST("/analyze", handler.AnalyzeScan)
			scans.GET("", handler.ListScans)
			scans.GET("/latest", handler.LatestScan)
			scans.GET("/latest/levels", handler.LatestLevels)
			scans.DELETE("/:id", handler.DeleteScan)
			scans.DELETE("", handler.ClearScans)
		}
		v1.PUT("/reminder", handler.SetReminder)
		v1.GET("/export", handler.Export)

		routine := v1.Group("/routine")
		{
			routine.GET("", handler.GetRoutine)
			routine.POST("/:slot", handler.AddToRoutine)
			routine.DELETE("/:slot/:productId", handler.RemoveFromRoutine)
			routine.DELETE("", handler.ClearRoutine)
		}

		compare := v1.Group("/compare")
		{
			compare.GET("", handler.GetCompare)
			compare.POST("/:id", handler.AddCompare)
			compare.DELETE("/:id", handler.RemoveCompare)
			compare.DELETE("", handler.ClearCompare)
		}

		v1.GET("/favorites", handler.GetFavorites)
		v1.POST("/favorites/:id/toggle", handler.ToggleFavorite)
	}

	return router
}
