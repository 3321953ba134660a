package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loomhouse/storefront/config"
	"github.com/loomhouse/storefront/internal/metrics"
)

// maxUploadMemory bounds the in-memory part of a product form upload
const maxUploadMemory = 32 << 20

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = maxUploadMemory

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(metrics.Middleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	v1.Use(SessionMiddleware(cfg.IsProduction()))
	{
		v1.GET("/home", handler.GetHome)
		v1.GET("/categories", handler.ListCategories)

		products := v1.Group("/products")
		{
			products.GET("", handler.ListProducts)
			products.GET("/:id", handler.GetProduct)
		}

		search := v1.Group("/search")
		{
			search.GET("/suggestions", handler.GetSuggestions)
			search.GET("/recent", handler.ListRecentSearches)
			search.POST("/recent", handler.AddRecentSearch)
			search.DELETE("/recent", handler.ClearRecentSearches)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/handpick", handler.GetHandpickPanel)
			admin.POST("/handpick", handler.SaveHandpicked)
			admin.GET("/products", handler.ListAdminProducts)
			admin.POST("/products", handler.CreateProduct)
			admin.DELETE("/products/:id", handler.DeleteProduct)
			admin.PATCH("/products/:id/handpicked", handler.ToggleHandpicked)
		}
	}

	return router
}
