package rest

import (
	"github.com/Dhoini/stripe-charge/internal/api/rest/handlers"
	"github.com/Dhoini/stripe-charge/internal/api/rest/middleware"
	"github.com/Dhoini/stripe-charge/internal/config"
	"github.com/Dhoini/stripe-charge/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(log *logger.Logger, registry *prometheus.Registry, cfg *config.Config, chargeHandler *handlers.ChargeHandler) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())

	// Endpoint для проверки работоспособности сервиса
	r.GET("/health", handlers.HealthCheck)

	// Prometheus метрики
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	if cfg.AuthEnabled() {
		auth := middleware.NewJWTMiddleware(log, middleware.NewHMACTokenValidator(cfg.Auth.JWTSecret))
		v1.Use(auth.RequireAuth())
	} else {
		log.Warnw("JWT secret is not configured, /api/v1 is served without authentication")
	}
	{
		charges := v1.Group("/charges")
		{
			charges.POST("", chargeHandler.CreateCharge)
			charges.GET("/:id", chargeHandler.GetCharge)
			charges.POST("/:id", chargeHandler.UpdateCharge)
		}

		legacy := v1.Group("/legacy")
		{
			legacy.POST("/charges", chargeHandler.CreateLegacyCharge)
		}
	}

	return r
}
