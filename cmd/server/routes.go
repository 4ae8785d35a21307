package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hikari-signage/hikari/internal/auth"
	"github.com/hikari-signage/hikari/internal/broadcast"
	"github.com/hikari-signage/hikari/internal/config"
	"github.com/hikari-signage/hikari/internal/db"
	adminapi "github.com/hikari-signage/hikari/internal/http/api/admin"
	displayapi "github.com/hikari-signage/hikari/internal/http/api/display"
	"github.com/hikari-signage/hikari/internal/metrics"
	"github.com/hikari-signage/hikari/internal/timeline"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, store db.Store, channel *broadcast.Channel, m *metrics.Metrics) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))

	timelineCfg := timeline.Config{
		CanvasMinutes:         cfg.TimelineCanvasMinutes,
		TrailingCutoffMinutes: cfg.TimelineTrailingCutoffMinutes,
		MinSlotMinutes:        cfg.TimelineMinSlotMinutes,
	}

	// register auth (public) routes first:
	admin := r.Group("/api/admin")
	adminapi.RegisterAuthRoutes(admin, cfg.JWTSecret, store)

	// apply JWTMiddleware for all the admin routes that follow
	admin.Use(auth.JWTMiddleware(cfg.JWTSecret))
	adminapi.RegisterGroupRoutes(admin, store)
	adminapi.RegisterScheduleRoutes(admin, store, timelineCfg)
	adminapi.RegisterBroadcastRoutes(admin, store, channel)

	// displays authenticate by code, not JWT; their connection is one-way
	display := r.Group("/api/display")
	displayapi.RegisterDisplayRoutes(display, channel)

	r.GET("/metrics", gin.WrapH(m.Handler()))
}
