// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/wearella/marketpulse/internal/api/handlers"
	"github.com/wearella/marketpulse/internal/api/middleware"
	"github.com/wearella/marketpulse/internal/service"
)

type Services struct {
	UploadService     *service.UploadService
	ReportService     *service.ReportService
	ProjectionService *service.ProjectionService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.UploadService != nil {
			uploadHandler := handlers.NewUploadHandler(services.UploadService)
			uploadGroup := apiGroup.Group("/uploads")
			{
				uploadGroup.POST("", uploadHandler.Upload)
				uploadGroup.GET("", uploadHandler.List)
				uploadGroup.GET("/:id", uploadHandler.Get)
				uploadGroup.DELETE("/:id", uploadHandler.Delete)
			}
		}

		if services.ReportService != nil {
			reportHandler := handlers.NewReportHandler(services.ReportService)
			reportGroup := apiGroup.Group("/reports")
			{
				reportGroup.GET("/summary", reportHandler.GetSummary)
				reportGroup.GET("/top_skus", reportHandler.GetTopSkus)
				reportGroup.GET("/top_categories", reportHandler.GetTopCategories)
				reportGroup.GET("/parent_skus", reportHandler.GetParentSkus)
				reportGroup.GET("/platforms", reportHandler.GetPlatforms)
				reportGroup.GET("/warehouses", reportHandler.GetWarehouses)
				reportGroup.GET("/warehouses/:warehouse/skus", reportHandler.GetWarehouseSkus)
				reportGroup.GET("/skus/:sku/warehouses", reportHandler.GetSkuWarehouses)
			}
		}

		if services.ProjectionService != nil {
			projectionHandler := handlers.NewProjectionHandler(services.ProjectionService)
			apiGroup.GET("/projections", projectionHandler.GetProjection)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
