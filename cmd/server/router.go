package main

import (
	"net/http"
	"time"

	"story-branches/internal/config"
	"story-branches/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

// newRouter собирает gin.Engine: общие middleware, метрики, /health и маршруты API.
// Gin копирует цепочку middleware в маршрут при регистрации, поэтому всё
// подключается до вызова register.
func newRouter(cfg *config.Config, zapLogger *zap.Logger, register func(gin.IRouter)) *gin.Engine {
	router := gin.New()
	router.Use(middleware.GinZapLogger(zapLogger))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg, zapLogger)))

	p := ginprometheus.NewPrometheus("gin")
	// Шаблон маршрута вместо пути, иначе каждый storyID дает новую серию.
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		if route := c.FullPath(); route != "" {
			return route
		}
		return "unmatched"
	}
	p.Use(router)

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	register(router)
	return router
}

func corsConfig(cfg *config.Config, zapLogger *zap.Logger) cors.Config {
	corsCfg := cors.DefaultConfig()
	if origins := cfg.GetAllowedOrigins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
	} else {
		corsCfg.AllowOrigins = []string{"http://localhost:3000"}
		zapLogger.Info("CORS_ALLOWED_ORIGINS not set, allowing default", zap.String("origin", "http://localhost:3000"))
	}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsCfg.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsCfg.AllowCredentials = true
	corsCfg.MaxAge = 12 * time.Hour
	return corsCfg
}
