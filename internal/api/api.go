// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/mpstock/internal/api/handlers"
	"github.com/andresuchdata/mpstock/internal/api/middleware"
	"github.com/andresuchdata/mpstock/internal/metrics"
	"github.com/andresuchdata/mpstock/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Services struct {
	MonitoringService *service.MonitoringService
	Metrics           metrics.Collector
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	collector := metrics.NewNoop()
	if services != nil && services.Metrics != nil {
		collector = services.Metrics
	}

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics(collector))
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
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

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.MonitoringService != nil {
		monitoringHandler := handlers.NewMonitoringHandler(services.MonitoringService)
		router.GET("/health", monitoringHandler.Health)

		monitoringGroup := apiGroup.Group("/monitoring")
		{
			monitoringGroup.GET("/view", monitoringHandler.GetView)
			monitoringGroup.GET("/records", monitoringHandler.GetRecords)
			monitoringGroup.GET("/clusters", monitoringHandler.GetClusters)
			monitoringGroup.GET("/clusters/resolve", monitoringHandler.ResolveCluster)
			monitoringGroup.GET("/alerts", monitoringHandler.GetAlerts)
			monitoringGroup.POST("/refresh", monitoringHandler.Refresh)
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
