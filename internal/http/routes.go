package http

import (
	"path/filepath"
	"time"

	"memory_game/internal/config"
	"memory_game/internal/http/handlers"
	"memory_game/internal/http/middleware"
	"memory_game/internal/service"
	"memory_game/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the router needs from main.
type Deps struct {
	Config   *config.Config
	Sessions *service.SessionService
	Hub      *ws.Hub
	Checks   map[string]handlers.Check
	Version  string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config
	h := handlers.NewHandler(d.Sessions)
	healthHandler := handlers.NewHealthHandler(d.Version, d.Checks, d.Sessions.ActiveCount)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, cfg.SelectRatePerMinute)

	// WebSocket game channel
	r.GET("/ws", ws.HandleWS(d.Hub, cfg.AllowedOrigin))

	// Static letters document
	r.Static("/data", filepath.Join(cfg.StaticDir, "data"))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "not found"})
	})
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, selectPerMinute int) {
	api.GET("/game/info", h.GameInfo)

	api.POST("/sessions", h.StartSession)

	current := api.Group("/sessions/current")
	current.Use(middleware.JWT())
	{
		current.GET("", h.CurrentSession)
		current.POST("/select", middleware.SelectRateLimit(selectPerMinute, time.Minute), h.SelectCard)
		current.POST("/restart", h.RestartSession)
		current.DELETE("", h.EndSession)
	}
}
