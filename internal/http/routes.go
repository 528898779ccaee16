// Package http wires the gin engine for health, metrics and the read API.
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kingdom-hub/internal/http/handlers"
)

// RegisterRoutes mounts every route on r.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, health *handlers.HealthHandler) {
	r.GET("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/leaderboard", h.GetLeaderboard)
	api.GET("/transactions", h.GetTransactions)
	api.GET("/config", h.GetConfig)
	api.GET("/interactions", h.GetInteractions)
}

// NewEngine returns a gin engine with recovery and the routes registered.
func NewEngine(h *handlers.Handler, health *handlers.HealthHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, h, health)
	return r
}
