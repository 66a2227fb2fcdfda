package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"feedbackhub/pkg/logger"
	"feedbackhub/pkg/metrics"
)

// Handlers - все обработчики API
type Handlers struct {
	Profile *ProfileFeedbackHandler
	App     *AppFeedbackHandler
	Jobs    *JobHandler
	Health  *HealthHandler
}

// SetupRoutes собирает маршруты. authMiddleware == nil отключает проверку токена
func SetupRoutes(h Handlers, authMiddleware *AuthMiddleware, corsOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("feedback-service"))

	corsConfig := cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "If-Match", "If-None-Match"},
		ExposeHeaders:    []string{"ETag", "Location", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300 * time.Second,
	}
	if len(corsOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", h.Health.Health)
	router.GET("/health/readiness", h.Health.Readiness)
	router.GET("/health/liveness", h.Health.Liveness)
	router.GET("/health/:path_echo", h.Health.Health)

	write := func(c *gin.Context) { c.Next() }
	if authMiddleware != nil {
		write = authMiddleware.Authenticate()
	}

	profile := router.Group("/feedback/profile")
	{
		profile.POST("", write, h.Profile.Create)
		profile.GET("", h.Profile.List)
		profile.GET("/stats", h.Profile.Stats)
		profile.GET("/:id", h.Profile.Get)
		profile.PATCH("/:id", write, h.Profile.Update)
		profile.DELETE("/:id", write, h.Profile.Delete)
	}

	app := router.Group("/feedback/app")
	{
		app.POST("", write, h.App.Create)
		app.GET("", h.App.List)
		app.GET("/stats", h.App.Stats)
		app.GET("/:id", h.App.Get)
		app.PATCH("/:id", write, h.App.Update)
		app.DELETE("/:id", write, h.App.Delete)
	}

	jobs := router.Group("/feedback/jobs")
	{
		jobs.POST("", write, h.Jobs.Create)
		jobs.GET("/:id", h.Jobs.Get)
	}

	return router
}
