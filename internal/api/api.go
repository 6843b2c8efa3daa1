package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/invwatch/internal/api/handlers"
	"github.com/andresuchdata/invwatch/internal/api/middleware"
	"github.com/andresuchdata/invwatch/internal/service"
)

type Services struct {
	MetricsService  *service.MetricsService
	ForecastService *service.ForecastService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalized) > 0 {
			corsConfig.AllowOrigins = normalized
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil && services.MetricsService != nil {
		metricsHandler := handlers.NewMetricsHandler(services.MetricsService)
		inventoryGroup := apiGroup.Group("/inventory")
		{
			inventoryGroup.GET("/metrics", metricsHandler.GetMetrics)
			inventoryGroup.GET("/kpi", metricsHandler.GetKPI)
			inventoryGroup.GET("/actions", metricsHandler.GetActions)
			inventoryGroup.GET("/transactions", metricsHandler.GetTransactions)
			inventoryGroup.GET("/movement", metricsHandler.GetDailyMovement)
			inventoryGroup.GET("/filters", metricsHandler.GetFilterOptions)
			inventoryGroup.GET("/dates", metricsHandler.GetAvailableDates)
		}

		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService, services.MetricsService)
			inventoryGroup.GET("/forecast", forecastHandler.GetForecast)
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
		for _, part := range strings.Split(origin, ",") {
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
